package signal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultMarkerTTL = time.Hour

// RedisSignal stores one marker key per session, readable from any host
// sharing the Redis instance. It has no push path, so Watch never fires.
type RedisSignal struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
	wakers *wakers
}

func NewRedisSignal(rdb redis.Cmdable, prefix string) *RedisSignal {
	return &RedisSignal{
		rdb:    rdb,
		prefix: prefix,
		ttl:    DefaultMarkerTTL,
		wakers: newWakers(),
	}
}

func (s *RedisSignal) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisSignal) Publish(ctx context.Context, sessionID string) error {
	stamp := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.rdb.Set(ctx, s.key(sessionID), stamp, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set marker for %s: %w", sessionID, err)
	}
	s.wakers.wake(sessionID)
	return nil
}

// Pending reads and deletes the marker in one round trip.
func (s *RedisSignal) Pending(ctx context.Context, sessionID string) (bool, error) {
	err := s.rdb.GetDel(ctx, s.key(sessionID)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("failed to read marker for %s: %w", sessionID, err)
	}
}

// Watch only fires for publishes made through this same instance.
func (s *RedisSignal) Watch(sessionID string) (<-chan struct{}, func()) {
	return s.wakers.watch(sessionID)
}

func (s *RedisSignal) Close() error { return nil }
