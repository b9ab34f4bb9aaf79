package registration

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// BackendRedis names the Redis stream backend.
const BackendRedis = "redis"

// DefaultStream is used when no stream name is configured.
const DefaultStream = "arena:registrations"

type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStream appends records to a Redis stream for downstream consumers.
type RedisStream struct {
	client streamAdder
	stream string
}

// NewRedisStream writes to stream on client; an empty stream uses DefaultStream.
func NewRedisStream(client *redis.Client, stream string) *RedisStream {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisStream{client: client, stream: stream}
}

// Name implements Store.
func (r *RedisStream) Name() string { return BackendRedis }

// Submit adds one stream entry with an auto-generated id.
func (r *RedisStream) Submit(ctx context.Context, rec Record) error {
	err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]interface{}{
			"name":    rec.Name,
			"game":    rec.Game,
			"user_id": rec.UserID,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis: xadd %s: %w", r.stream, err)
	}
	return nil
}
