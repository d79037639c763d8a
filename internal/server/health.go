package server

import (
	"context"
	"fmt"

	"github.com/vanshika/graphpath/internal/graph"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
	// Backend names the graph store being probed, e.g. "neo4j" or "spanner".
	Backend() string
}

// GraphHealthService verifies graph connectivity as part of health checks.
type GraphHealthService struct {
	Client graph.Client
	Name   string
}

// Probe runs the client's connectivity check; for Spanner that is a SELECT 1
// on a single-use snapshot.
func (s GraphHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	if err := s.Client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%s unreachable: %w", s.Backend(), err)
	}
	return nil
}

// Backend implements the HealthService interface.
func (s GraphHealthService) Backend() string {
	if s.Name == "" {
		return "graph"
	}
	return s.Name
}
