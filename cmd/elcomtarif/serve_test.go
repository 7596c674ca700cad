package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/elcomtarif/elcomtarif/internal/config"
	"github.com/elcomtarif/elcomtarif/internal/home"
)

func TestServerAddress(t *testing.T) {
	origHost, origPort := serveHost, servePort
	t.Cleanup(func() { serveHost, servePort = origHost, origPort })

	cfg := config.DefaultConfig()
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = "9090"

	t.Run("config drives the address when flags are unset", func(t *testing.T) {
		serveHost, servePort = "", ""
		host, port := serverAddress(cfg)
		if host != "0.0.0.0" || port != "9090" {
			t.Errorf("expected 0.0.0.0:9090, got %s:%s", host, port)
		}
	})

	t.Run("flags override config per field", func(t *testing.T) {
		serveHost, servePort = "127.0.0.1", ""
		host, port := serverAddress(cfg)
		if host != "127.0.0.1" {
			t.Errorf("expected flag host to win, got %s", host)
		}
		if port != "9090" {
			t.Errorf("expected configured port, got %s", port)
		}
	})
}

func TestPipelineRunner_ReadsConfigPerTrigger(t *testing.T) {
	h, err := home.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := h.EnsureExists(); err != nil {
		t.Fatal(err)
	}

	broken := config.DefaultConfig()
	broken.Extraction.APIKey = ""

	current := broken
	runner := &pipelineRunner{
		home:      h,
		getConfig: func() *config.Config { return current },
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	err = runner.RunOperator(context.Background(), 525)
	if err == nil || !strings.Contains(err.Error(), "extraction.api_key") {
		t.Fatalf("expected missing-key error, got %v", err)
	}

	// Swap in a fixed config; the next trigger must see it. The run
	// still fails, but past the key check, at the empty schema dir.
	fixed := config.DefaultConfig()
	fixed.Extraction.APIKey = "sk-test"
	current = fixed

	err = runner.RunOperator(context.Background(), 525)
	if err == nil {
		t.Fatal("expected schema load failure")
	}
	if strings.Contains(err.Error(), "extraction.api_key") {
		t.Errorf("runner did not pick up the updated config: %v", err)
	}
	if !strings.Contains(err.Error(), "split schema") {
		t.Errorf("expected schema load failure, got %v", err)
	}
}
