package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var batchConcurrency int

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract AUM for every registered company",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		companies, err := env.Store.ListCompanies(ctx)
		if err != nil {
			return eris.Wrap(err, "list companies")
		}
		if len(companies) == 0 {
			return eris.New("no companies registered, run import first")
		}

		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrentCompanies
		}

		zap.L().Info("batch started",
			zap.Int("companies", len(companies)),
			zap.Int("concurrency", concurrency),
		)

		results := env.Pipeline.RunBatch(ctx, companies, concurrency)

		found := 0
		for _, r := range results {
			if r.Extraction.HasValue() {
				found++
			}
		}

		stats := env.Tracker.DailyStats()
		zap.L().Info("batch complete",
			zap.Int("processed", len(results)),
			zap.Int("with_value", found),
			zap.Int("tokens_used", stats.TokensUsed),
			zap.Float64("budget_used_pct", stats.UsagePercentage),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max companies processed in parallel (default from config)")
	rootCmd.AddCommand(batchCmd)
}
