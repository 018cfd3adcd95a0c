package consumer

import (
	"context"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

// Envelope carries an observation together with the callbacks that settle
// its queue message
type Envelope struct {
	Observation *domain.Observation
	ack         func(context.Context) error
	nack        func(context.Context) error
}

func NewEnvelope(obs *domain.Observation, ack, nack func(context.Context) error) *Envelope {
	return &Envelope{
		Observation: obs,
		ack:         ack,
		nack:        nack,
	}
}

// Ack acknowledges successful processing
func (e *Envelope) Ack(ctx context.Context) error {
	if e.ack != nil {
		return e.ack(ctx)
	}
	return nil
}

// Nack leaves the message for redelivery
func (e *Envelope) Nack(ctx context.Context) error {
	if e.nack != nil {
		return e.nack(ctx)
	}
	return nil
}
