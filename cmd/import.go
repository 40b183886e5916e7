package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/model"
)

var importCSVPath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import companies from CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		f, err := os.Open(importCSVPath)
		if err != nil {
			return eris.Wrap(err, "open csv")
		}
		defer f.Close()

		companies, err := parseCompaniesCSV(f)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		created := 0
		for _, c := range companies {
			if _, err := st.CreateCompany(ctx, c); err != nil {
				zap.L().Warn("company import failed",
					zap.String("name", c.Name),
					zap.Error(err),
				)
				continue
			}
			created++
		}

		zap.L().Info("import complete",
			zap.Int("created", created),
			zap.Int("rows", len(companies)),
			zap.String("csv", importCSVPath),
		)
		return nil
	},
}

// parseCompaniesCSV reads a header-led CSV of companies. Columns may appear
// in any order; only "name" is required.
func parseCompaniesCSV(r io.Reader) ([]model.Company, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "read csv header")
	}

	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, eris.New("csv is missing required column: name")
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var out []model.Company
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, eris.Wrapf(err, "read csv line %d", line)
		}

		name := field(record, "name")
		if name == "" {
			zap.L().Warn("skipping csv row without name", zap.Int("line", line))
			continue
		}

		c := model.Company{
			Name:         name,
			SiteURL:      field(record, "url_site"),
			LinkedInURL:  field(record, "url_linkedin"),
			InstagramURL: field(record, "url_instagram"),
			XURL:         field(record, "url_x"),
			Sector:       field(record, "sector"),
		}
		if raw := field(record, "employees_count"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				c.EmployeeCount = n
			}
		}
		out = append(out, c)
	}

	return out, nil
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to CSV file (required)")
	_ = importCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(importCmd)
}
