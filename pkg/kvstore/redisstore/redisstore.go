package redisstore

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/mateovidal/spinmart-backend/pkg/kvstore"
	"github.com/mateovidal/spinmart-backend/pkg/redis"
)

type redisClient interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	PromoKey(parts ...string) string
}

// Store adapts the shared redis client to the kvstore.Store surface.
// Blobs are base64-encoded because the values are binary sealed payloads.
type Store struct {
	client redisClient
}

var _ kvstore.Store = (*Store)(nil)

func New(client *redis.Client) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &Store{client: client}, nil
}

func (s *Store) Write(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	encoded := base64.StdEncoding.EncodeToString(value)
	return s.client.Set(ctx, s.client.PromoKey(key), encoded, ttl)
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.client.PromoKey(key))
	if err != nil {
		if redis.IsNil(err) {
			return nil, kvstore.ErrNotFound
		}
		return nil, err
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		// Unreadable payloads count as absent, matching the store contract.
		return nil, kvstore.ErrNotFound
	}
	return decoded, nil
}

func (s *Store) Clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.client.PromoKey(key))
}
