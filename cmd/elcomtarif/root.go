package main

import (
	"github.com/spf13/cobra"

	"github.com/elcomtarif/elcomtarif/internal/api"
	"github.com/elcomtarif/elcomtarif/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "elcomtarif",
	Short: "Swiss electricity tariff extraction pipeline",
	Long: `Elcomtarif downloads per-operator tariff sheets from the ELCOM
electricity price portal and extracts harmonized tariff records from
them with LLM-backed structured extraction.

The pipeline includes:
  - Cached PDF download per operator and tariff year
  - One unstructured extraction pass over the document
  - One schema-constrained pass per split schema
  - A merge of the validated fragments into one harmonized record`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.elcomtarif/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "elcomtarif home directory (default: ~/.elcomtarif)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
