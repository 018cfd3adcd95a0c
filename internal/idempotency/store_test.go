package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/config"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

type MockClaimer struct {
	mock.Mock
}

func (m *MockClaimer) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	args := m.Called(ctx, key, expiration)
	return args.Get(0).(*redis.BoolCmd)
}

func (m *MockClaimer) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return args.Get(0).(*redis.IntCmd)
}

var testObservation = &domain.Observation{
	RecordID: "err-1",
	Count:    3,
	LastSeen: time.UnixMilli(1767225600123).UTC(),
}

func TestKey(t *testing.T) {
	assert.Equal(t, "obs:err-1:3:1767225600123", Key(testObservation))

	bumped := *testObservation
	bumped.Count = 4
	assert.NotEqual(t, Key(testObservation), Key(&bumped))
}

func TestClaim(t *testing.T) {
	tests := []struct {
		name     string
		result   bool
		err      error
		failOpen bool
		want     bool
		wantErr  bool
	}{
		{name: "first claim", result: true, want: true},
		{name: "duplicate", result: false, want: false},
		{name: "valkey down fail open", err: errors.New("dial tcp: connection refused"), failOpen: true, want: true},
		{name: "valkey down fail closed", err: errors.New("dial tcp: connection refused"), want: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claimer := new(MockClaimer)
			claimer.On("SetNX", mock.Anything, "obs:err-1:3:1767225600123", time.Hour).
				Return(redis.NewBoolResult(tt.result, tt.err))

			store := NewStore(claimer, config.Valkey{IdempotencyTTLSec: 3600, IdempotencyFailOpen: tt.failOpen}, zap.NewNop())
			got, err := store.Claim(context.Background(), testObservation)

			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			claimer.AssertExpectations(t)
		})
	}
}

func TestRelease(t *testing.T) {
	claimer := new(MockClaimer)
	claimer.On("Del", mock.Anything, []string{"obs:err-1:3:1767225600123"}).
		Return(redis.NewIntResult(1, nil)).Once()
	claimer.On("Del", mock.Anything, []string{"obs:err-1:3:1767225600123"}).
		Return(redis.NewIntResult(0, errors.New("i/o timeout"))).Once()

	store := NewStore(claimer, config.Valkey{IdempotencyTTLSec: 60}, zap.NewNop())

	assert.NoError(t, store.Release(context.Background(), testObservation))
	assert.ErrorContains(t, store.Release(context.Background(), testObservation), "failed to release")
}
