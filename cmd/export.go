package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Giovana-Manuquian/aum-scraper-2-versao/internal/report"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the latest AUM snapshots to an Excel report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		latest, err := st.LatestSnapshots(ctx)
		if err != nil {
			return eris.Wrap(err, "latest snapshots")
		}
		if len(latest) == 0 {
			return eris.New("no companies registered, nothing to export")
		}

		dir := exportDir
		if dir == "" {
			dir = cfg.Export.Directory
		}

		path, err := report.WriteExcel(dir, latest)
		if err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("path", path),
			zap.Int("companies", len(latest)),
		)
		cmd.Println(path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "output directory (default from config)")
	rootCmd.AddCommand(exportCmd)
}
