package debounce

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key layout. Cooldown keys expire on their own; seen and tracked sets
// live for the lifetime of the monitor and are dropped by ForgetMonitor.
const (
	cooldownKeyPrefix = "debounce:cooldown:"
	seenKeyPrefix     = "debounce:seen:"
	trackedKeyPrefix  = "debounce:tracked:"
)

// RedisStore is the production ledger, shared by all engine replicas.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a ledger backed by the given Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func cooldownKey(monitorID, kind, entityID string) string {
	return cooldownKeyPrefix + monitorID + ":" + kind + ":" + entityID
}

func seenKey(monitorID, kind string) string {
	return seenKeyPrefix + monitorID + ":" + kind
}

func trackedKey(monitorID string) string {
	return trackedKeyPrefix + monitorID
}

// ShouldSuppress uses SET NX PX so checking and recording the tuple is a
// single atomic operation.
func (s *RedisStore) ShouldSuppress(ctx context.Context, monitorID, kind, entityID string, cooldown time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, cooldownKey(monitorID, kind, entityID), time.Now().UTC().Format(time.RFC3339), cooldown).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check debounce key: %w", err)
	}
	return !acquired, nil
}

// MarkSeen adds the entity to the monitor's seen set for the trigger kind.
func (s *RedisStore) MarkSeen(ctx context.Context, monitorID, kind, entityID string) (bool, error) {
	added, err := s.client.SAdd(ctx, seenKey(monitorID, kind), entityID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark entity seen: %w", err)
	}
	return added == 1, nil
}

// TrackMatch records the entity in the monitor's matched set.
func (s *RedisStore) TrackMatch(ctx context.Context, monitorID, entityID string) error {
	if err := s.client.SAdd(ctx, trackedKey(monitorID), entityID).Err(); err != nil {
		return fmt.Errorf("failed to track matched entity: %w", err)
	}
	return nil
}

// TrackedEntities returns the monitor's matched entity ids.
func (s *RedisStore) TrackedEntities(ctx context.Context, monitorID string) ([]string, error) {
	members, err := s.client.SMembers(ctx, trackedKey(monitorID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tracked entities: %w", err)
	}
	return members, nil
}

// ForgetMonitor deletes the monitor's seen and tracked sets. Cooldown keys
// are left to expire on their own.
func (s *RedisStore) ForgetMonitor(ctx context.Context, monitorID string) error {
	keys := []string{
		trackedKey(monitorID),
		seenKey(monitorID, "new_narrative"),
		seenKey(monitorID, "new_event"),
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to drop ledger state for monitor %s: %w", monitorID, err)
	}
	return nil
}
