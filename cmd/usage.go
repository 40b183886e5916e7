package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/model"
)

var usageDate string

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show persisted token usage for a day",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		day := time.Now().UTC()
		if usageDate != "" {
			parsed, err := time.Parse("2006-01-02", usageDate)
			if err != nil {
				return eris.Wrap(err, "parse --date, expected YYYY-MM-DD")
			}
			day = parsed
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		usage, err := st.GetUsage(ctx, day)
		if err != nil {
			return eris.Wrap(err, "get usage")
		}
		if usage == nil {
			usage = &model.UsageDay{Date: day.Truncate(24 * time.Hour)}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(usage)
	},
}

func init() {
	usageCmd.Flags().StringVar(&usageDate, "date", "", "day to show, YYYY-MM-DD (default today, UTC)")
	rootCmd.AddCommand(usageCmd)
}
