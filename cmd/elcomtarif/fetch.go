package main

import (
	"github.com/spf13/cobra"

	"github.com/elcomtarif/elcomtarif/internal/api"
)

var (
	fetchOperators   string
	fetchYear        int
	fetchConcurrency int
)

// fetchResult is the CLI-facing view of one fetch outcome.
type fetchResult struct {
	OperatorID int    `json:"operator_id" yaml:"operator_id"`
	Status     string `json:"status" yaml:"status"`
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	SourceURL  string `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download tariff documents without running extraction",
	Long: `Download the tariff sheets for the given operators into the home
documents cache. Downloads run concurrently up to the configured limit.
Already cached documents are skipped.

Examples:
  elcomtarif fetch --operators 525,486,19
  elcomtarif fetch --operators 525 --year 2023 --concurrency 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		operatorIDs, err := parseOperators(fetchOperators)
		if err != nil {
			return err
		}

		h, mgr, err := loadEnv()
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		year := cfg.Pipeline.Year
		if fetchYear > 0 {
			year = fetchYear
		}
		concurrency := cfg.Pipeline.FetchConcurrency
		if fetchConcurrency > 0 {
			concurrency = fetchConcurrency
		}

		f := newFetcher(h, cfg, logger)
		results := f.FetchAll(cmd.Context(), operatorIDs, year, concurrency)

		out := make([]fetchResult, 0, len(results))
		for _, res := range results {
			r := fetchResult{OperatorID: res.OperatorID, Status: "ok"}
			if res.Err != nil {
				r.Status = "failed"
				r.Error = res.Err.Error()
			} else {
				r.Path = res.Artifact.Path
				r.SourceURL = res.Artifact.SourceURL
			}
			out = append(out, r)
		}
		return api.Output(out)
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchOperators, "operators", "", "operator ids, comma-separated or a JSON array (required)")
	fetchCmd.Flags().IntVar(&fetchYear, "year", 0, "tariff year (default: configured pipeline.year)")
	fetchCmd.Flags().IntVar(&fetchConcurrency, "concurrency", 0, "max concurrent downloads (default: configured pipeline.fetch_concurrency)")
	fetchCmd.MarkFlagRequired("operators")

	rootCmd.AddCommand(fetchCmd)
}
