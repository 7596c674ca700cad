package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/elcomtarif/elcomtarif/internal/config"
	"github.com/elcomtarif/elcomtarif/internal/extract"
	"github.com/elcomtarif/elcomtarif/internal/fetcher"
	"github.com/elcomtarif/elcomtarif/internal/home"
	"github.com/elcomtarif/elcomtarif/internal/pipeline"
	"github.com/elcomtarif/elcomtarif/internal/schema"
	"github.com/elcomtarif/elcomtarif/internal/source"
)

// loadEnv loads the home dir and config shared by all pipeline commands.
func loadEnv() (*home.Dir, *config.Manager, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, nil, err
	}

	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if err := mgr.Get().Validate(); err != nil {
		return nil, nil, err
	}
	return h, mgr, nil
}

// newFetcher wires the ELCOM document source into a fetcher.
func newFetcher(h *home.Dir, cfg *config.Config, logger *slog.Logger) *fetcher.Fetcher {
	src := source.NewElcom(source.ElcomConfig{
		BaseURL:       cfg.Source.BaseURL,
		Timeout:       cfg.Source.Timeout,
		RetryAttempts: cfg.Source.RetryAttempts,
		RetryDelay:    cfg.Source.RetryDelay,
	})
	return fetcher.New(h, src, logger)
}

// newPipeline wires the full extraction pipeline from configuration.
// Paths left empty in the config fall back to home-relative defaults.
func newPipeline(h *home.Dir, cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	apiKey := cfg.ResolvedAPIKey()
	if apiKey == "" {
		return nil, errors.New("extraction.api_key resolves to empty; set OPENAI_API_KEY or configure extraction.api_key")
	}

	schemaDir := cfg.Pipeline.SchemaDir
	if schemaDir == "" {
		schemaDir = h.SchemaDir()
	}
	schemas, err := schema.Load(schemaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load split schemas: %w", err)
	}

	outputRoot := cfg.Pipeline.OutputDir
	if outputRoot == "" {
		outputRoot = h.OutputDir()
	}

	service := extract.NewOpenAI(extract.OpenAIConfig{
		APIKey:     apiKey,
		Model:      cfg.Extraction.Model,
		MaxRetries: cfg.Extraction.MaxRetries,
		Timeout:    cfg.Extraction.Timeout,
		BaseURL:    cfg.Extraction.BaseURL,
	})

	return pipeline.New(pipeline.Config{
		Fetcher:    newFetcher(h, cfg, logger),
		Service:    service,
		Schemas:    schemas,
		OutputRoot: outputRoot,
		Year:       cfg.Pipeline.Year,
		Logger:     logger,
	}), nil
}

// newLogger builds the standard text logger used by all commands.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// maskKey redacts an API key for log output, keeping the last four
// characters as a fingerprint.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// parseOperators accepts a comma-separated list ("1,2,3") or a JSON
// array ("[1,2,3]") of operator ids.
func parseOperators(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("no operator ids given")
	}
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")

	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid operator id %q: %w", part, err)
		}
		if id <= 0 {
			return nil, fmt.Errorf("operator id must be positive, got %d", id)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.New("no operator ids given")
	}
	return ids, nil
}
