package vault

import (
	"context"
	"errors"
	"testing"

	"github.com/mateovidal/spinmart-backend/pkg/config"
	"github.com/mateovidal/spinmart-backend/pkg/kvstore/memstore"
	"github.com/stretchr/testify/require"
)

func testConfig() config.VaultConfig {
	// Minimal Argon2 work factors keep the suite fast.
	return config.VaultConfig{
		Secret:           "test-secret",
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
	}
}

type payload struct {
	Value   int    `json:"value"`
	Comment string `json:"comment"`
}

func TestVaultRoundTrip(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	v, err := New(testConfig(), store)
	require.NoError(t, err)

	in := payload{Value: 30, Comment: "won"}
	require.NoError(t, v.Write(context.Background(), "pending", in, 0))

	var out payload
	require.True(t, v.Read(context.Background(), "pending", &out))
	require.Equal(t, in, out)
}

func TestVaultMissingKeyIsAbsent(t *testing.T) {
	t.Parallel()

	v, err := New(testConfig(), memstore.New())
	require.NoError(t, err)

	var out payload
	require.False(t, v.Read(context.Background(), "nope", &out))
}

func TestVaultTamperedBlobIsAbsent(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	v, err := New(testConfig(), store)
	require.NoError(t, err)

	require.NoError(t, v.Write(context.Background(), "pending", payload{Value: 50}, 0))

	raw, err := store.Read(context.Background(), "pending")
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	store.Corrupt("pending", raw)

	var out payload
	require.False(t, v.Read(context.Background(), "pending", &out))
}

func TestVaultValueBoundToKey(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	v, err := New(testConfig(), store)
	require.NoError(t, err)

	require.NoError(t, v.Write(context.Background(), "pending", payload{Value: 40}, 0))

	// Replaying the sealed blob under a different key must not open.
	raw, err := store.Read(context.Background(), "pending")
	require.NoError(t, err)
	store.Corrupt("claimed", raw)

	var out payload
	require.False(t, v.Read(context.Background(), "claimed", &out))
}

func TestVaultStoreFailureIsAbsent(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	store.ReadErr = map[string]error{"pending": errors.New("disk gone")}

	v, err := New(testConfig(), store)
	require.NoError(t, err)

	var out payload
	require.False(t, v.Read(context.Background(), "pending", &out))
}
