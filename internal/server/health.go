package server

import (
	"context"
	"errors"

	"github.com/vanshika/wormsim/internal/graph"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// GraphHealthService verifies graph connectivity as part of health checks.
type GraphHealthService struct {
	Client graph.Client
}

// Probe implements the HealthService interface.
func (s GraphHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.VerifyConnectivity(ctx)
}

// Pinger is satisfied by the run ledger.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LedgerHealthService verifies the run ledger answers.
type LedgerHealthService struct {
	Ledger Pinger
}

// Probe implements the HealthService interface.
func (s LedgerHealthService) Probe(ctx context.Context) error {
	if s.Ledger == nil {
		return nil
	}
	return s.Ledger.Ping(ctx)
}

// CompositeHealth probes every member and joins their failures.
type CompositeHealth []HealthService

// Probe implements the HealthService interface.
func (c CompositeHealth) Probe(ctx context.Context) error {
	var errs []error
	for _, h := range c {
		if h == nil {
			continue
		}
		if err := h.Probe(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
