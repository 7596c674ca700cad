// Package pipeline orchestrates the per-operator extraction workflow:
// fetch document, one unstructured extraction pass, one schema-constrained
// pass per split, merge the fragments. Every stage persists its artifact
// before the next stage starts so an interrupted run can be resumed from
// the last completed stage.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/elcomtarif/elcomtarif/internal/extract"
	"github.com/elcomtarif/elcomtarif/internal/fetcher"
	"github.com/elcomtarif/elcomtarif/internal/merge"
	"github.com/elcomtarif/elcomtarif/internal/schema"
)

const (
	// OperatorToken in the output file name is replaced with the
	// operator id at write time.
	OperatorToken = "{operator}"

	analystInstructions = "You are an expert analyst in electricity tariffs. " +
		"Use the provided files as a base to answer questions about electricity tariffs. " +
		"Your output will be a JSON string without anything else."

	splitQuestionPrefix = "Convert this snippet to JSON: \n"
)

// Config wires the pipeline's collaborators.
type Config struct {
	Fetcher    *fetcher.Fetcher
	Service    extract.Service
	Schemas    *schema.Registry
	OutputRoot string
	Year       int
	Logger     *slog.Logger
}

// Pipeline drives the full workflow for single operators and batches.
type Pipeline struct {
	fetcher    *fetcher.Fetcher
	service    extract.Service
	schemas    *schema.Registry
	outputRoot string
	year       int
	logger     *slog.Logger
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{
		fetcher:    cfg.Fetcher,
		service:    cfg.Service,
		schemas:    cfg.Schemas,
		outputRoot: cfg.OutputRoot,
		year:       cfg.Year,
		logger:     cfg.Logger,
	}
}

// Run executes the workflow for one operator and returns the harmonized
// record. Any stage failure aborts the remaining stages and is returned
// as a PipelineError.
func (p *Pipeline) Run(ctx context.Context, operatorID int, promptPath, outputFile string) (map[string]any, error) {
	log := p.logger.With("operator", operatorID, "year", p.year)

	log.Info("fetching document")
	artifact, err := p.fetcher.Fetch(ctx, operatorID, p.year)
	if err != nil {
		return nil, &PipelineError{OperatorID: operatorID, Stage: StageFetch, Err: err}
	}

	prompt, err := os.ReadFile(promptPath)
	if err != nil {
		return nil, &PipelineError{OperatorID: operatorID, Stage: StageExtract,
			Err: fmt.Errorf("failed to read prompt file: %w", err)}
	}

	log.Info("running unstructured extraction")
	unstructured, err := p.service.Run(ctx, &extract.Request{
		Instructions: analystInstructions,
		Attachments:  []string{artifact.Path},
		Question:     string(prompt),
	})
	if err != nil {
		return nil, &PipelineError{OperatorID: operatorID, Stage: StageExtract, Err: err}
	}
	if err := p.writeJSON(p.unstructuredPath(operatorID), unstructured); err != nil {
		return nil, &PipelineError{OperatorID: operatorID, Stage: StageExtract, Err: err}
	}

	for _, split := range p.schemas.Splits() {
		if err := p.runSplit(ctx, operatorID, split, unstructured.Text, log); err != nil {
			return nil, err
		}
	}

	log.Info("merging fragments", "splits", p.schemas.Len())
	record, err := p.mergeFromDisk(operatorID)
	if err != nil {
		return nil, &PipelineError{OperatorID: operatorID, Stage: StageMerge, Err: err}
	}

	outPath := p.mergedOutputPath(operatorID, outputFile)
	if err := p.writeJSON(outPath, record); err != nil {
		return nil, &PipelineError{OperatorID: operatorID, Stage: StageMerge, Err: err}
	}

	log.Info("pipeline complete", "output", outPath)
	return record, nil
}

// runSplit executes one schema-constrained pass. The split passes carry no
// attachment: the unstructured pass has already reduced the document to
// text, and the split only re-renders that text against its schema.
func (p *Pipeline) runSplit(ctx context.Context, operatorID int, split *schema.Split, text string, log *slog.Logger) error {
	stage := fmt.Sprintf("split_%d", split.Index)
	log.Info("running split extraction", "split", split.Index)

	result, err := p.service.Run(ctx, &extract.Request{
		Instructions: analystInstructions,
		OutputSchema: split.Raw,
		Question:     splitQuestionPrefix + " " + text,
	})
	if err != nil {
		return &PipelineError{OperatorID: operatorID, Stage: stage, Err: err}
	}
	if err := p.writeJSON(p.splitRawPath(operatorID, split.Index), result); err != nil {
		return &PipelineError{OperatorID: operatorID, Stage: stage, Err: err}
	}

	fragment, err := extract.ParseJSONObject(result.Text)
	if err != nil {
		return &PipelineError{OperatorID: operatorID, Stage: stage,
			Err: &ParseError{OperatorID: operatorID, Split: split.Index, Err: err}}
	}
	if err := split.Validate(fragment); err != nil {
		return &PipelineError{OperatorID: operatorID, Stage: stage,
			Err: &ParseError{OperatorID: operatorID, Split: split.Index, Err: err}}
	}

	if err := p.writeJSON(p.splitParsedPath(operatorID, split.Index), fragment); err != nil {
		return &PipelineError{OperatorID: operatorID, Stage: stage, Err: err}
	}
	return nil
}

// mergeFromDisk reads the parsed fragments back from their persisted
// paths, in ascending split order, and merges them. Reading from disk
// keeps the merge stage independently re-runnable.
func (p *Pipeline) mergeFromDisk(operatorID int) (map[string]any, error) {
	fragments := make([]map[string]any, 0, p.schemas.Len())
	for _, split := range p.schemas.Splits() {
		data, err := os.ReadFile(p.splitParsedPath(operatorID, split.Index))
		if err != nil {
			return nil, fmt.Errorf("failed to read fragment %d: %w", split.Index, err)
		}
		var fragment map[string]any
		if err := json.Unmarshal(data, &fragment); err != nil {
			return nil, fmt.Errorf("failed to decode fragment %d: %w", split.Index, err)
		}
		fragments = append(fragments, fragment)
	}
	return merge.Fragments(fragments), nil
}

// OperatorResult is the per-operator outcome of a batch run.
type OperatorResult struct {
	OperatorID int    `json:"operator_id" yaml:"operator_id"`
	Status     string `json:"status" yaml:"status"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunAll processes operators sequentially. A failure for one operator is
// logged and recorded; it never aborts processing of subsequent operators.
func (p *Pipeline) RunAll(ctx context.Context, operatorIDs []int, promptPath, outputFile string) []OperatorResult {
	results := make([]OperatorResult, 0, len(operatorIDs))
	for _, operatorID := range operatorIDs {
		res := OperatorResult{OperatorID: operatorID, Status: "ok"}
		if _, err := p.Run(ctx, operatorID, promptPath, outputFile); err != nil {
			p.logger.Error("operator failed, proceeding to the next one", "operator", operatorID, "error", err)
			res.Status = "failed"
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results
}

func (p *Pipeline) operatorDir(operatorID int) string {
	return filepath.Join(p.outputRoot, strconv.Itoa(operatorID))
}

func (p *Pipeline) unstructuredPath(operatorID int) string {
	return filepath.Join(p.operatorDir(operatorID), "unstructured.json")
}

func (p *Pipeline) splitRawPath(operatorID, split int) string {
	return filepath.Join(p.operatorDir(operatorID), fmt.Sprintf("split_%d_raw.json", split))
}

func (p *Pipeline) splitParsedPath(operatorID, split int) string {
	return filepath.Join(p.operatorDir(operatorID), fmt.Sprintf("split_%d_parsed.json", split))
}

func (p *Pipeline) mergedOutputPath(operatorID int, outputFile string) string {
	name := strings.ReplaceAll(outputFile, OperatorToken, strconv.Itoa(operatorID))
	return filepath.Join(p.operatorDir(operatorID), name)
}

func (p *Pipeline) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
