package consumer

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/config"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/queue"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/repository"
)

const pipelineBuffer = 100

// Consumer runs the archive pipeline: receive, parse and deduplicate, then
// batch-insert into the repository
type Consumer struct {
	receiver    *Receiver
	parser      *ParserStage
	batchWriter *BatchWriter
}

// Deps are the collaborators of a Consumer. Dedup and Recorder are optional.
type Deps struct {
	Queue      queue.QueueConsumer
	Repository repository.ObservationRepository
	Dedup      Deduplicator
	Recorder   Recorder
}

func NewConsumer(cfg config.Consumer, deps Deps, log *zap.Logger) *Consumer {
	receiver := NewReceiver(deps.Queue, ReceiverConfig{
		MaxMessages:     10,
		WaitTimeSeconds: 20,
		BufferSize:      pipelineBuffer,
	}, log.With(zap.String("stage", "receiver")))

	parser := NewParserStage(deps.Queue, NewJSONObservationParser(), deps.Dedup, deps.Recorder,
		log.With(zap.String("stage", "parser")))

	batchWriter := NewBatchWriter(deps.Repository, BatchWriterConfig{
		MaxBatchSize:    cfg.BatchSizeMax,
		FlushTimeout:    time.Duration(cfg.BatchTimeoutSec) * time.Second,
		ShutdownTimeout: time.Duration(cfg.ShutdownTimeoutSec) * time.Second,
	}, deps.Recorder, log.With(zap.String("stage", "writer")))

	return &Consumer{
		receiver:    receiver,
		parser:      parser,
		batchWriter: batchWriter,
	}
}

// Start runs every stage and returns once all of them have stopped
func (c *Consumer) Start(ctx context.Context) error {
	messageChan := make(chan types.Message, pipelineBuffer)
	envelopeChan := make(chan *Envelope, pipelineBuffer)

	var g errgroup.Group

	g.Go(func() error {
		c.receiver.Start(ctx, messageChan)
		return nil
	})
	g.Go(func() error {
		c.parser.Start(ctx, messageChan, envelopeChan)
		return nil
	})
	g.Go(func() error {
		c.batchWriter.Start(ctx, envelopeChan)
		return nil
	})

	return g.Wait()
}
