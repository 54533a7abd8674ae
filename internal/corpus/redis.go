package corpus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// EntityKeyPrefix is the Redis key prefix under which the analytics pipeline
// publishes entity snapshots, one JSON document per entity id.
const EntityKeyPrefix = "corpus:entity:"

// RedisProvider loads entity snapshots from Redis.
type RedisProvider struct {
	client *redis.Client
}

// NewRedisProvider creates a provider backed by the given Redis client.
func NewRedisProvider(client *redis.Client) *RedisProvider {
	return &RedisProvider{client: client}
}

// GetEntity loads and deserializes the snapshot for the given entity id.
func (p *RedisProvider) GetEntity(ctx context.Context, entityID string) (*Entity, error) {
	data, err := p.client.Get(ctx, EntityKeyPrefix+entityID).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, entityID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity snapshot from Redis: %w", err)
	}

	var entity Entity
	if err := json.Unmarshal([]byte(data), &entity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity snapshot %s: %w", entityID, err)
	}
	return &entity, nil
}
