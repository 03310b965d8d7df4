package vault

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mateovidal/spinmart-backend/pkg/config"
	"github.com/mateovidal/spinmart-backend/pkg/kvstore"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// keyContext salts the Argon2id derivation so the vault key never matches a
// key derived from the same secret for another purpose.
const keyContext = "spinmart-vault-v1"

// Vault seals JSON-serialized values before they reach the underlying store,
// so persisted promo state is neither readable nor editable in place. Any
// value that fails to open is treated as absent; callers always carry a
// default for the absent case.
type Vault struct {
	aead  cipher.AEAD
	store kvstore.Store
}

func New(cfg config.VaultConfig, store kvstore.Store) (*Vault, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("vault secret is required")
	}
	if store == nil {
		return nil, fmt.Errorf("backing store required")
	}

	key := argon2.IDKey(
		[]byte(cfg.Secret),
		[]byte(keyContext),
		uint32(clampInt(cfg.ArgonTime, 1, 10)),
		uint32(clampInt(cfg.ArgonMemoryKB, 8, 512*1024)),
		uint8(clampInt(cfg.ArgonParallelism, 1, 255)),
		chacha20poly1305.KeySize,
	)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("building aead: %w", err)
	}

	return &Vault{aead: aead, store: store}, nil
}

// Write serializes, seals and persists the value under key.
func (v *Vault) Write(ctx context.Context, key string, value any, ttl time.Duration) error {
	plain, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}

	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}

	sealed := v.aead.Seal(nonce, nonce, plain, []byte(key))
	return v.store.Write(ctx, key, sealed, ttl)
}

// Read opens and deserializes the value at key into dest. It reports false
// for missing, malformed and tampered data alike; it never returns an error
// to the caller.
func (v *Vault) Read(ctx context.Context, key string, dest any) bool {
	sealed, err := v.store.Read(ctx, key)
	if err != nil {
		return false
	}
	if len(sealed) < v.aead.NonceSize() {
		return false
	}

	nonce, ciphertext := sealed[:v.aead.NonceSize()], sealed[v.aead.NonceSize():]
	plain, err := v.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(plain, dest); err != nil {
		return false
	}
	return true
}

// Clear removes the entry at key.
func (v *Vault) Clear(ctx context.Context, key string) error {
	return v.store.Clear(ctx, key)
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
