package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/model"
)

var (
	runCompanyID string
	runName      string
	runSite      string
	runLinkedIn  string
	runInstagram string
	runX         string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract AUM for a single company",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var company model.Company
		switch {
		case runCompanyID != "":
			c, err := env.Store.GetCompany(ctx, runCompanyID)
			if err != nil {
				return eris.Wrap(err, "get company")
			}
			company = *c
		case runName != "":
			c, err := env.Store.CreateCompany(ctx, model.Company{
				Name:         runName,
				SiteURL:      runSite,
				LinkedInURL:  runLinkedIn,
				InstagramURL: runInstagram,
				XURL:         runX,
			})
			if err != nil {
				return eris.Wrap(err, "create company")
			}
			company = *c
		default:
			return eris.New("either --id or --name is required")
		}

		if len(company.Sources()) == 0 {
			return eris.Errorf("company %s has no scrapeable sources", company.Name)
		}

		result, err := env.Pipeline.Run(ctx, company)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("extraction complete",
			zap.String("company", company.Name),
			zap.String("method", string(result.Extraction.Method)),
			zap.Float64("confidence", result.Extraction.Confidence),
			zap.Int("tokens_used", result.Extraction.TokensUsed),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringVar(&runCompanyID, "id", "", "existing company ID")
	runCmd.Flags().StringVar(&runName, "name", "", "company name (creates the company)")
	runCmd.Flags().StringVar(&runSite, "site", "", "company website URL")
	runCmd.Flags().StringVar(&runLinkedIn, "linkedin", "", "LinkedIn profile URL")
	runCmd.Flags().StringVar(&runInstagram, "instagram", "", "Instagram profile URL")
	runCmd.Flags().StringVar(&runX, "x", "", "X profile URL")
	rootCmd.AddCommand(runCmd)
}
