package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/elcomtarif/elcomtarif/internal/config"
	"github.com/elcomtarif/elcomtarif/internal/home"
	"github.com/elcomtarif/elcomtarif/internal/server"
)

var (
	serveHost string
	servePort string
)

// pipelineRunner adapts the pipeline to the narrow trigger interface the
// HTTP endpoints use. The pipeline is rebuilt from the current config on
// every trigger, so a hot-reloaded config takes effect on the next run.
// The HTTP trigger carries only the operator id; prompt and output file
// names come from config.
type pipelineRunner struct {
	home      *home.Dir
	getConfig func() *config.Config
	logger    *slog.Logger
}

func (r *pipelineRunner) RunOperator(ctx context.Context, operatorID int) error {
	cfg := r.getConfig()
	p, err := newPipeline(r.home, cfg, r.logger)
	if err != nil {
		return err
	}
	_, err = p.Run(ctx, operatorID, cfg.Pipeline.PromptFile, cfg.Pipeline.OutputFile)
	return err
}

// serverAddress resolves the listen address: explicit flags win, the
// configured server.host/server.port fill in whatever the flags leave
// empty.
func serverAddress(cfg *config.Config) (host, port string) {
	host, port = serveHost, servePort
	if host == "" {
		host = cfg.Server.Host
	}
	if port == "" {
		port = cfg.Server.Port
	}
	return host, port
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the elcomtarif server",
	Long: `Start the elcomtarif HTTP server.

The server accepts pipeline triggers over HTTP and runs them as
background jobs. Submitted jobs are queryable by id.

The server provides:
  - /health          - Basic server health check
  - /ready           - Readiness check (pipeline wiring)
  - /api/process     - Submit a pipeline run for an operator
  - /api/jobs        - List submitted runs
  - /api/jobs/{id}   - Get a submitted run

Examples:
  elcomtarif serve                    # Start on configured address
  elcomtarif serve --port 3000        # Start on custom port
  elcomtarif serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := newLogger()

		h, mgr, err := loadEnv()
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		// Construct once up front so misconfiguration fails the command
		// instead of the first HTTP trigger.
		if _, err := newPipeline(h, cfg, logger); err != nil {
			return err
		}

		logger.Info("pipeline configured",
			"year", cfg.Pipeline.Year,
			"model", cfg.Extraction.Model,
			"api_key", maskKey(cfg.ResolvedAPIKey()),
		)
		if cfg.Pipeline.PromptFile == "" {
			logger.Warn("pipeline.prompt_file is not set; HTTP-triggered runs will fail until it is configured")
		}

		// Pick up config edits without a restart. Triggers in flight
		// finish on the config they started with.
		mgr.OnChange(func(c *config.Config) {
			logger.Info("configuration reloaded", "year", c.Pipeline.Year, "model", c.Extraction.Model)
		})
		mgr.WatchConfig()

		host, port := serverAddress(cfg)
		srv, err := server.New(server.Config{
			Host: host,
			Port: port,
			Runner: &pipelineRunner{
				home:      h,
				getConfig: mgr.Get,
				logger:    logger,
			},
			Logger: logger,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: configured server.host)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default: configured server.port)")

	rootCmd.AddCommand(serveCmd)
}
