package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Copy so API keys never reach stdout.
		redacted := *cfg
		redacted.Anthropic.Key = redactKey(redacted.Anthropic.Key)
		redacted.Jina.Key = redactKey(redacted.Jina.Key)

		out, err := yaml.Marshal(redacted)
		if err != nil {
			return eris.Wrap(err, "marshal config")
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

func redactKey(key string) string {
	if key == "" {
		return ""
	}
	return "***set***"
}

func init() {
	rootCmd.AddCommand(configCmd)
}
