package consumer

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/queue"
)

// ParserStage turns SQS messages into envelopes, dropping malformed and
// already-archived observations
type ParserStage struct {
	consumer queue.QueueConsumer
	parser   MessageParser
	dedup    Deduplicator
	recorder Recorder
	log      *zap.Logger
}

// NewParserStage creates a parser stage. dedup and recorder may be nil.
func NewParserStage(consumer queue.QueueConsumer, parser MessageParser, dedup Deduplicator, recorder Recorder, log *zap.Logger) *ParserStage {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ParserStage{
		consumer: consumer,
		parser:   parser,
		dedup:    dedup,
		recorder: recorder,
		log:      log,
	}
}

// Start parses messages from in until it closes or ctx is cancelled
func (p *ParserStage) Start(ctx context.Context, in <-chan types.Message, out chan<- *Envelope) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Parser stage shutting down")
			return
		case msg, ok := <-in:
			if !ok {
				p.log.Info("Parser stage input channel closed")
				return
			}

			envelope := p.parseMessage(ctx, msg)
			if envelope == nil {
				continue
			}

			select {
			case <-ctx.Done():
				p.release(ctx, envelope)
				return
			case out <- envelope:
			}
		}
	}
}

func (p *ParserStage) parseMessage(ctx context.Context, msg types.Message) *Envelope {
	messageID := aws.ToString(msg.MessageId)
	obs, err := p.parser.Parse([]byte(aws.ToString(msg.Body)))
	if err != nil {
		p.log.Warn("Failed to parse message",
			zap.String("message_id", messageID),
			zap.Error(err))
		p.recorder.ObserveArchive(OutcomeMalformed, 1)
		if err := p.deleteMessage(ctx, msg); err == nil {
			p.log.Info("Deleted malformed message from SQS", zap.String("message_id", messageID))
		}
		return nil
	}

	if p.dedup != nil {
		claimed, err := p.dedup.Claim(ctx, obs)
		if err != nil {
			// Left on the queue; it becomes visible again after the
			// visibility timeout.
			p.log.Error("Failed to check observation idempotency",
				zap.String("message_id", messageID),
				zap.String("record_id", obs.RecordID),
				zap.Error(err))
			return nil
		}
		if !claimed {
			p.log.Debug("Dropping duplicate observation",
				zap.String("message_id", messageID),
				zap.String("record_id", obs.RecordID))
			p.recorder.ObserveArchive(OutcomeDuplicate, 1)
			_ = p.deleteMessage(ctx, msg)
			return nil
		}
	}

	ack := func(ctx context.Context) error {
		return p.deleteMessage(ctx, msg)
	}

	nack := func(ctx context.Context) error {
		if p.dedup == nil {
			return nil
		}
		return p.dedup.Release(ctx, obs)
	}

	return NewEnvelope(obs, ack, nack)
}

// release gives up the claim of an envelope that never reached the writer,
// so its redelivery is archived instead of dropped as a duplicate.
func (p *ParserStage) release(ctx context.Context, envelope *Envelope) {
	if err := envelope.Nack(context.WithoutCancel(ctx)); err != nil {
		p.log.Error("Failed to release undelivered observation",
			zap.String("record_id", envelope.Observation.RecordID),
			zap.Error(err))
	}
}

func (p *ParserStage) deleteMessage(ctx context.Context, msg types.Message) error {
	_, err := p.consumer.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.consumer.QueueURL()),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		p.log.Error("Failed to delete message",
			zap.String("message_id", aws.ToString(msg.MessageId)),
			zap.Error(err))
		return err
	}
	return nil
}
