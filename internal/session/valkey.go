package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces session keys in Valkey to avoid collisions.
const keyPrefix = "session:"

// ValkeyBackend stores sessions in Valkey with automatic TTL expiry.
// Sessions survive process restarts and are shared between replicas.
type ValkeyBackend struct {
	client *redis.Client
}

// NewValkeyBackend wraps an already-connected Valkey client.
func NewValkeyBackend(client *redis.Client) *ValkeyBackend {
	return &ValkeyBackend{client: client}
}

// Set stores a payload under id with the given TTL.
func (v *ValkeyBackend) Set(ctx context.Context, id string, payload []byte, ttl time.Duration) error {
	return v.client.Set(ctx, keyPrefix+id, payload, ttl).Err()
}

// Get returns the stored payload, or (nil, nil) when absent or expired.
func (v *ValkeyBackend) Get(ctx context.Context, id string) ([]byte, error) {
	payload, err := v.client.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Delete removes the session. Unknown ids are a no-op.
func (v *ValkeyBackend) Delete(ctx context.Context, id string) error {
	return v.client.Del(ctx, keyPrefix+id).Err()
}
