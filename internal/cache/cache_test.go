package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/bikeshop/internal/config"
)

type memoryStore map[string][]byte

func (m memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (m memoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m[key] = value
	return nil
}

func (m memoryStore) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

type basket struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	store := memoryStore{}

	_, err := GetJSON[basket](ctx, store, "baskets:1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, SetJSON(ctx, store, "baskets:1", basket{ID: 1, Quantity: 4}, time.Minute))

	got, err := GetJSON[basket](ctx, store, "baskets:1")
	require.NoError(t, err)
	assert.Equal(t, &basket{ID: 1, Quantity: 4}, got)

	store["baskets:2"] = []byte("{not json")
	_, err = GetJSON[basket](ctx, store, "baskets:2")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestJSONHelpers_NilStore(t *testing.T) {
	ctx := context.Background()
	_, err := GetJSON[basket](ctx, nil, "baskets:1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, SetJSON(ctx, nil, "baskets:1", basket{}, 0))
}

func TestNewStore_Noop(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	store, err := NewStore(lc, config.Config{Cache: config.Cache{Driver: "noop"}}, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestNewStore_Unsupported(t *testing.T) {
	_, err := NewStore(fxtest.NewLifecycle(t), config.Config{Cache: config.Cache{Driver: "memcached"}}, zap.NewNop())
	assert.Error(t, err)
}
