// Package endpoints implements the HTTP API surface of the elcomtarif
// server. Each endpoint doubles as a CLI command via the api.Endpoint
// interface.
package endpoints

import (
	"context"

	"github.com/elcomtarif/elcomtarif/internal/api"
	"github.com/elcomtarif/elcomtarif/internal/jobs"
)

// Runner triggers a full pipeline run for a single operator. The
// concrete pipeline is wrapped behind this so endpoints stay testable.
type Runner interface {
	RunOperator(ctx context.Context, operatorID int) error
}

// Config holds the dependencies shared by endpoints.
type Config struct {
	Jobs   *jobs.Manager
	Runner Runner
}

// All returns all registered endpoints.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},
		&ReadyEndpoint{Cfg: cfg},
		&ProcessEndpoint{Cfg: cfg},
		&JobGetEndpoint{Cfg: cfg},
		&JobListEndpoint{Cfg: cfg},
	}
}
