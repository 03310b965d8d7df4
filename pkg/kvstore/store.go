package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound signals an absent key. Implementations return it for missing
// and for expired entries alike.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is the persistence surface the promo engine writes through. Values
// are opaque blobs; interpretation belongs to the caller.
type Store interface {
	Write(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Read(ctx context.Context, key string) ([]byte, error)
	Clear(ctx context.Context, key string) error
}
