// Package idempotency records which observations the archive has already
// accepted, using Valkey (Redis protocol) SETNX keys.
package idempotency

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/config"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/domain"
)

const keyPrefix = "obs:"

// Claimer is the subset of the Redis client used by Store.
type Claimer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store claims observation keys.
type Store struct {
	client   Claimer
	ttl      time.Duration
	failOpen bool
	log      *zap.Logger
}

// NewClient connects to Valkey and verifies the connection.
func NewClient(ctx context.Context, cfg config.Valkey) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return client, nil
}

func NewStore(client Claimer, cfg config.Valkey, log *zap.Logger) *Store {
	return &Store{
		client:   client,
		ttl:      time.Duration(cfg.IdempotencyTTLSec) * time.Second,
		failOpen: cfg.IdempotencyFailOpen,
		log:      log,
	}
}

// Key identifies one observation of a record. A record observed again with
// a higher count or a later last_seen gets a different key.
func Key(obs *domain.Observation) string {
	return keyPrefix + obs.RecordID + ":" + strconv.FormatUint(uint64(obs.Count), 10) + ":" +
		strconv.FormatInt(obs.LastSeen.UnixMilli(), 10)
}

// Claim returns true if obs has not been claimed before. When Valkey is
// unreachable it returns true with fail-open and an error otherwise.
func (s *Store) Claim(ctx context.Context, obs *domain.Observation) (bool, error) {
	key := Key(obs)
	claimed, err := s.client.SetNX(ctx, key, 1, s.ttl).Result()
	if err != nil {
		if s.failOpen {
			s.log.Warn("Idempotency check failed, accepting observation",
				zap.String("key", key),
				zap.Error(err))
			return true, nil
		}
		return false, fmt.Errorf("failed to claim %s: %w", key, err)
	}
	return claimed, nil
}

// Release forgets the claim on obs.
func (s *Store) Release(ctx context.Context, obs *domain.Observation) error {
	key := Key(obs)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release %s: %w", key, err)
	}
	return nil
}
