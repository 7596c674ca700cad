package main

import (
	"github.com/spf13/cobra"

	"github.com/elcomtarif/elcomtarif/internal/api"
	"github.com/elcomtarif/elcomtarif/internal/coverage"
)

var (
	coverageDir     string
	coveragePattern string
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Report how many operators have a harmonized record",
	Long: `Scan the extraction output tree and count harmonized records.

A record counts as valid when it parses as a non-empty JSON object.
Invalid files are listed so failed extractions can be re-run.

Examples:
  elcomtarif coverage
  elcomtarif coverage --dir ./output --pattern 'res_harmonized_*.json'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := coverageDir
		if dir == "" {
			h, mgr, err := loadEnv()
			if err != nil {
				return err
			}
			dir = mgr.Get().Pipeline.OutputDir
			if dir == "" {
				dir = h.OutputDir()
			}
		}

		report, err := coverage.Scan(dir, coveragePattern)
		if err != nil {
			return err
		}
		return api.Output(report)
	},
}

func init() {
	coverageCmd.Flags().StringVar(&coverageDir, "dir", "", "output tree to scan (default: configured output dir)")
	coverageCmd.Flags().StringVar(&coveragePattern, "pattern", "res_harmonized_*.json", "glob matched against record file names")

	rootCmd.AddCommand(coverageCmd)
}
