package main

import (
	"github.com/spf13/cobra"

	"github.com/elcomtarif/elcomtarif/internal/api"
	"github.com/elcomtarif/elcomtarif/internal/config"
)

var (
	processOperators  string
	processPrompt     string
	processOutputFile string
	processYear       int
	processOutputDir  string
	processSchemaDir  string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the extraction pipeline for one or more operators",
	Long: `Run the full extraction pipeline: download each operator's tariff
sheet, run the unstructured extraction pass, run one schema-constrained
pass per split schema, validate the fragments and merge them into a
harmonized record.

Operators are processed sequentially; a failure for one operator is
recorded and does not abort the rest of the batch.

Examples:
  elcomtarif process --operators 525 --prompt prompt.txt
  elcomtarif process --operators 525,486,19 --prompt prompt.txt
  elcomtarif process --operators '[525, 486]' --prompt prompt.txt --year 2023`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		operatorIDs, err := parseOperators(processOperators)
		if err != nil {
			return err
		}

		h, mgr, err := loadEnv()
		if err != nil {
			return err
		}
		cfg, outputFile := processConfig(mgr.Get())

		p, err := newPipeline(h, cfg, logger)
		if err != nil {
			return err
		}

		results := p.RunAll(cmd.Context(), operatorIDs, processPrompt, outputFile)
		return api.Output(results)
	},
}

// processConfig applies the per-invocation flag overrides to a copy of
// the loaded config. The shared config stays untouched; it is treated as
// immutable after startup. Returns the copy and the effective merged
// record file name.
func processConfig(base *config.Config) (*config.Config, string) {
	cfg := *base
	if processYear > 0 {
		cfg.Pipeline.Year = processYear
	}
	if processOutputDir != "" {
		cfg.Pipeline.OutputDir = processOutputDir
	}
	if processSchemaDir != "" {
		cfg.Pipeline.SchemaDir = processSchemaDir
	}
	outputFile := cfg.Pipeline.OutputFile
	if processOutputFile != "" {
		outputFile = processOutputFile
	}
	return &cfg, outputFile
}

func init() {
	processCmd.Flags().StringVar(&processOperators, "operators", "", "operator ids, comma-separated or a JSON array (required)")
	processCmd.Flags().StringVar(&processPrompt, "prompt", "", "path to the unstructured extraction prompt (required)")
	processCmd.Flags().StringVar(&processOutputFile, "output-file", "", "merged record file name; {operator} is replaced with the operator id")
	processCmd.Flags().IntVar(&processYear, "year", 0, "tariff year (default: configured pipeline.year)")
	processCmd.Flags().StringVar(&processOutputDir, "output-dir", "", "extraction output root (default: <home>/output)")
	processCmd.Flags().StringVar(&processSchemaDir, "schema-dir", "", "schema root containing split-schema/ (default: <home>/schema)")
	processCmd.MarkFlagRequired("operators")
	processCmd.MarkFlagRequired("prompt")

	rootCmd.AddCommand(processCmd)
}
