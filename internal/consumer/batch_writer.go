package consumer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/repository"
)

// BatchWriterConfig configures the batch writer
type BatchWriterConfig struct {
	MaxBatchSize int
	FlushTimeout time.Duration
	// ShutdownTimeout bounds the final flush after the pipeline context is
	// cancelled.
	ShutdownTimeout time.Duration
}

// BatchWriter batches envelopes and writes their observations to the repository
type BatchWriter struct {
	repository repository.ObservationRepository
	config     BatchWriterConfig
	recorder   Recorder
	log        *zap.Logger
}

// NewBatchWriter creates a new batch writer. recorder may be nil.
func NewBatchWriter(repo repository.ObservationRepository, config BatchWriterConfig, recorder Recorder, log *zap.Logger) *BatchWriter {
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &BatchWriter{
		repository: repo,
		config:     config,
		recorder:   recorder,
		log:        log,
	}
}

// Start batches envelopes from in and writes them on size or timeout
func (w *BatchWriter) Start(ctx context.Context, in <-chan *Envelope) {
	ticker := time.NewTicker(w.config.FlushTimeout)
	defer ticker.Stop()

	batch := make([]*Envelope, 0, w.config.MaxBatchSize)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Batch writer shutting down")
			batch = w.drain(in, batch)
			w.flushFinal(ctx, batch)
			return

		case envelope, ok := <-in:
			if !ok {
				w.log.Info("Batch writer input channel closed")
				w.flushFinal(ctx, batch)
				return
			}

			batch = append(batch, envelope)

			if len(batch) >= w.config.MaxBatchSize {
				w.log.Debug("Batch size threshold reached", zap.Int("batch_size", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*Envelope, 0, w.config.MaxBatchSize)
				ticker.Reset(w.config.FlushTimeout)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.log.Debug("Batch timeout reached", zap.Int("envelope_count", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*Envelope, 0, w.config.MaxBatchSize)
			}
		}
	}
}

// drain collects envelopes still buffered in in after cancellation. Every
// one of them holds an idempotency claim, so they must be settled here. It
// stops when the upstream stage closes in or after ShutdownTimeout.
func (w *BatchWriter) drain(in <-chan *Envelope, batch []*Envelope) []*Envelope {
	timer := time.NewTimer(w.config.ShutdownTimeout)
	defer timer.Stop()

	for {
		select {
		case envelope, ok := <-in:
			if !ok {
				return batch
			}
			batch = append(batch, envelope)
		case <-timer.C:
			w.log.Warn("Input channel still open after shutdown timeout",
				zap.Int("envelope_count", len(batch)))
			return batch
		}
	}
}

// flushFinal writes what is left on a context detached from the cancelled
// pipeline context, in chunks of MaxBatchSize.
func (w *BatchWriter) flushFinal(ctx context.Context, batch []*Envelope) {
	if len(batch) == 0 {
		return
	}
	w.log.Info("Flushing final batch", zap.Int("envelope_count", len(batch)))
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.config.ShutdownTimeout)
	defer cancel()

	size := w.config.MaxBatchSize
	if size <= 0 {
		size = len(batch)
	}
	for start := 0; start < len(batch); start += size {
		end := min(start+size, len(batch))
		w.processBatch(flushCtx, batch[start:end])
	}
}

// processBatch inserts the batch and then acks it, or nacks it on any failure
func (w *BatchWriter) processBatch(ctx context.Context, envelopes []*Envelope) {
	if len(envelopes) == 0 {
		return
	}

	observations := make([]*domain.Observation, len(envelopes))
	for i, env := range envelopes {
		observations[i] = env.Observation
	}

	insertedCount, err := w.repository.InsertBatch(ctx, observations)
	if err != nil {
		w.log.Error("Failed to insert batch",
			zap.Error(err),
			zap.Int("observation_count", len(observations)))
		w.recorder.ObserveArchive(OutcomeFailed, len(observations))
		w.nackAll(ctx, envelopes)
		return
	}

	if insertedCount != len(observations) {
		w.log.Warn("Partial insert success",
			zap.Int("inserted", insertedCount),
			zap.Int("expected", len(observations)))
		w.recorder.ObserveArchive(OutcomeFailed, len(observations))
		w.nackAll(ctx, envelopes)
		return
	}

	w.log.Info("Archived observations", zap.Int("count", insertedCount))
	w.recorder.ObserveArchive(OutcomeInserted, insertedCount)
	w.ackAll(ctx, envelopes)
}

func (w *BatchWriter) ackAll(ctx context.Context, envelopes []*Envelope) {
	for _, env := range envelopes {
		if err := env.Ack(ctx); err != nil {
			w.log.Error("Failed to ack envelope", zap.Error(err))
		}
	}
}

func (w *BatchWriter) nackAll(ctx context.Context, envelopes []*Envelope) {
	for _, env := range envelopes {
		if err := env.Nack(ctx); err != nil {
			w.log.Error("Failed to nack envelope", zap.Error(err))
		}
	}
}
