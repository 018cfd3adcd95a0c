package consumer

import (
	"context"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

// MessageParser defines the interface for parsing raw message bytes into observations
type MessageParser interface {
	Parse(body []byte) (*domain.Observation, error)
}

// Deduplicator claims observations so redelivered messages are archived once.
// Claim returns false for an observation that was already claimed; Release
// drops a claim whose insert failed so the redelivery is accepted.
type Deduplicator interface {
	Claim(ctx context.Context, obs *domain.Observation) (bool, error)
	Release(ctx context.Context, obs *domain.Observation) error
}

// Recorder counts observations by pipeline outcome.
type Recorder interface {
	ObserveArchive(outcome string, n int)
}

const (
	OutcomeInserted  = "inserted"
	OutcomeDuplicate = "duplicate"
	OutcomeMalformed = "malformed"
	OutcomeFailed    = "failed"
)

type nopRecorder struct{}

func (nopRecorder) ObserveArchive(string, int) {}
