package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/freementors/internal/domain"
)

// ErrRedisUnavailable wraps failures talking to Redis
var ErrRedisUnavailable = errors.New("redis unavailable")

// RedisPersister stores credentials in Redis, for shared terminals and
// containers without a writable home directory.
type RedisPersister struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisPersister creates a persister using keys "<prefix>:token" and
// "<prefix>:identity". A zero ttl keeps the keys until cleared.
func NewRedisPersister(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisPersister {
	if prefix == "" {
		prefix = "freementors"
	}
	return &RedisPersister{redis: client, prefix: prefix, ttl: ttl}
}

func (p *RedisPersister) key(name string) string {
	return p.prefix + ":" + name
}

// Load reads both keys in one round trip
func (p *RedisPersister) Load(ctx context.Context) (string, *domain.Identity, error) {
	values, err := p.redis.MGet(ctx, p.key(keyToken), p.key(keyIdentity)).Result()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	token, _ := values[0].(string)
	if token == "" {
		return "", nil, nil
	}

	raw, _ := values[1].(string)
	if raw == "" {
		return token, nil, nil
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil || identity.Validate() != nil {
		return token, nil, nil
	}
	return token, &identity, nil
}

// Save writes both keys inside MULTI/EXEC
func (p *RedisPersister) Save(ctx context.Context, token string, identity domain.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return err
	}

	_, err = p.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, p.key(keyToken), token, p.ttl)
		pipe.Set(ctx, p.key(keyIdentity), raw, p.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Clear deletes both keys with one DEL
func (p *RedisPersister) Clear(ctx context.Context) error {
	if err := p.redis.Del(ctx, p.key(keyToken), p.key(keyIdentity)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
