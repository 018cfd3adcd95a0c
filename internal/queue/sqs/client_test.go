package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	envConfig "github.com/BarkinBalci/error-monitor-dashboard/internal/config"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

type MockSQSAPI struct {
	mock.Mock
}

func (m *MockSQSAPI) SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.SendMessageBatchOutput), args.Error(1)
}

func (m *MockSQSAPI) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockSQSAPI) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.DeleteMessageOutput), args.Error(1)
}

var testSQSConfig = envConfig.SQS{QueueURL: "http://localhost:9324/000000000000/error-observations", Region: "eu-central-1"}

func makeObservations(n int) []*domain.Observation {
	out := make([]*domain.Observation, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &domain.Observation{RecordID: fmt.Sprintf("err-%d", i), Level: "error", Count: 1})
	}
	return out
}

func TestPublishObservations_Chunks(t *testing.T) {
	api := new(MockSQSAPI)
	client := NewClientWithAPI(api, testSQSConfig, zap.NewNop())

	var sizes []int
	api.On("SendMessageBatch", mock.Anything, mock.AnythingOfType("*sqs.SendMessageBatchInput")).
		Run(func(args mock.Arguments) {
			in := args.Get(1).(*sqs.SendMessageBatchInput)
			sizes = append(sizes, len(in.Entries))
		}).
		Return(&sqs.SendMessageBatchOutput{}, nil)

	err := client.PublishObservations(context.Background(), makeObservations(23))

	require.NoError(t, err)
	assert.Equal(t, []int{10, 10, 3}, sizes)
	api.AssertNumberOfCalls(t, "SendMessageBatch", 3)
}

func TestPublishObservations_Body(t *testing.T) {
	api := new(MockSQSAPI)
	client := NewClientWithAPI(api, testSQSConfig, zap.NewNop())

	api.On("SendMessageBatch", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageBatchInput) bool {
		if aws.ToString(in.QueueUrl) != testSQSConfig.QueueURL || len(in.Entries) != 1 {
			return false
		}
		var obs domain.Observation
		if err := json.Unmarshal([]byte(aws.ToString(in.Entries[0].MessageBody)), &obs); err != nil {
			return false
		}
		source := in.Entries[0].MessageAttributes["Source"]
		return obs.RecordID == "err-0" && aws.ToString(source.StringValue) == "unknown"
	})).Return(&sqs.SendMessageBatchOutput{}, nil)

	err := client.PublishObservations(context.Background(), makeObservations(1))

	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestPublishObservations_Empty(t *testing.T) {
	api := new(MockSQSAPI)
	client := NewClientWithAPI(api, testSQSConfig, zap.NewNop())

	require.NoError(t, client.PublishObservations(context.Background(), nil))
	api.AssertNotCalled(t, "SendMessageBatch", mock.Anything, mock.Anything)
}

func TestPublishObservations_SendError(t *testing.T) {
	api := new(MockSQSAPI)
	client := NewClientWithAPI(api, testSQSConfig, zap.NewNop())
	api.On("SendMessageBatch", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused")).Once()

	err := client.PublishObservations(context.Background(), makeObservations(15))

	assert.ErrorContains(t, err, "failed to send message batch to SQS")
	api.AssertNumberOfCalls(t, "SendMessageBatch", 1)
}

func TestPublishObservations_PartialFailure(t *testing.T) {
	api := new(MockSQSAPI)
	client := NewClientWithAPI(api, testSQSConfig, zap.NewNop())
	api.On("SendMessageBatch", mock.Anything, mock.Anything).Return(&sqs.SendMessageBatchOutput{
		Failed: []types.BatchResultErrorEntry{{Id: aws.String("1"), Code: aws.String("InternalError"), Message: aws.String("try again")}},
	}, nil)

	err := client.PublishObservations(context.Background(), makeObservations(2))

	assert.ErrorContains(t, err, "failed to send 1 of 2 messages")
}

func TestQueueURL(t *testing.T) {
	client := NewClientWithAPI(new(MockSQSAPI), testSQSConfig, zap.NewNop())
	assert.Equal(t, testSQSConfig.QueueURL, client.QueueURL())
}
