package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "aum-scraper",
	Short: "AUM extraction pipeline for Brazilian asset managers",
	Long:  "Scrapes company websites and social profiles, extracts assets under management via Claude with a regex fallback, persists snapshots and exports Excel reports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
