package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	envConfig "github.com/BarkinBalci/error-monitor-dashboard/internal/config"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

// maxBatchEntries is the SQS limit for SendMessageBatch.
const maxBatchEntries = 10

// API is the subset of the SQS client used here.
type API interface {
	SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Client represents an SQS client
type Client struct {
	client API
	config envConfig.SQS
	log    *zap.Logger
}

// NewClient creates a new SQS client
func NewClient(ctx context.Context, SQSConfig envConfig.SQS, log *zap.Logger) (*Client, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(SQSConfig.Region),
	}

	var clientOpts []func(*sqs.Options)

	// Local development against ElasticMQ
	if SQSConfig.Endpoint != "" {
		log.Info("Configuring SQS for local development",
			zap.String("endpoint", SQSConfig.Endpoint))
		configOpts = append(configOpts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "")))

		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(SQSConfig.Endpoint)
		})
	}

	cfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("SQS client created",
		zap.String("region", SQSConfig.Region),
		zap.String("queue_url", SQSConfig.QueueURL))

	return NewClientWithAPI(sqs.NewFromConfig(cfg, clientOpts...), SQSConfig, log), nil
}

// NewClientWithAPI wraps an existing SQS API implementation
func NewClientWithAPI(api API, SQSConfig envConfig.SQS, log *zap.Logger) *Client {
	return &Client{
		client: api,
		config: SQSConfig,
		log:    log,
	}
}

// ReceiveMessages receives messages from SQS
func (c *Client) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	return c.client.ReceiveMessage(ctx, input)
}

// DeleteMessage deletes a message from SQS
func (c *Client) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	return c.client.DeleteMessage(ctx, input)
}

// QueueURL returns the configured queue URL
func (c *Client) QueueURL() string {
	return c.config.QueueURL
}

// PublishObservations sends observations in batches of ten. It stops at the
// first batch that fails to send or has any failed entry.
func (c *Client) PublishObservations(ctx context.Context, observations []*domain.Observation) error {
	for start := 0; start < len(observations); start += maxBatchEntries {
		end := start + maxBatchEntries
		if end > len(observations) {
			end = len(observations)
		}
		if err := c.sendBatch(ctx, observations[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) sendBatch(ctx context.Context, batch []*domain.Observation) error {
	entries := make([]types.SendMessageBatchRequestEntry, 0, len(batch))
	for i, obs := range batch {
		body, err := json.Marshal(obs)
		if err != nil {
			c.log.Error("Failed to marshal observation",
				zap.String("record_id", obs.RecordID),
				zap.Error(err))
			return fmt.Errorf("failed to marshal observation: %w", err)
		}
		entries = append(entries, types.SendMessageBatchRequestEntry{
			Id:          aws.String(strconv.Itoa(i)),
			MessageBody: aws.String(string(body)),
			MessageAttributes: map[string]types.MessageAttributeValue{
				"Level": {
					DataType:    aws.String("String"),
					StringValue: aws.String(obs.Level),
				},
				"Source": {
					DataType:    aws.String("String"),
					StringValue: aws.String(nonEmpty(obs.Source)),
				},
			},
		})
	}

	out, err := c.client.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
		QueueUrl: aws.String(c.config.QueueURL),
		Entries:  entries,
	})
	if err != nil {
		c.log.Error("Failed to send message batch to SQS",
			zap.Int("batch_size", len(batch)),
			zap.Error(err))
		return fmt.Errorf("failed to send message batch to SQS: %w", err)
	}
	if len(out.Failed) > 0 {
		first := out.Failed[0]
		c.log.Error("SQS rejected batch entries",
			zap.Int("failed", len(out.Failed)),
			zap.String("code", aws.ToString(first.Code)),
			zap.String("message", aws.ToString(first.Message)))
		return fmt.Errorf("failed to send %d of %d messages: %s", len(out.Failed), len(batch), aws.ToString(first.Message))
	}

	c.log.Debug("Observations published to SQS", zap.Int("count", len(batch)))
	return nil
}

// SQS rejects empty string attribute values.
func nonEmpty(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
