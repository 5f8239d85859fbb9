package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/bikeshop/internal/config"
	"github.com/Additional-Code/bikeshop/internal/database/databasetest"
	"github.com/Additional-Code/bikeshop/internal/entity"
	"github.com/Additional-Code/bikeshop/internal/repository/inventory"
)

func TestBasketHandle_ResolvesLazily(t *testing.T) {
	conns := databasetest.New(t)
	repo := inventory.NewRepository(conns)
	handle := inventory.NewBasketHandle(repo, config.Config{})
	ctx := context.Background()

	_, err := handle.ID(ctx)
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	first := databasetest.InsertBasket(t, conns, 2)
	id, err := handle.ID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, id)

	// Lower ids added later do not move a resolved handle.
	_, err = conns.Writer.NewDelete().Model((*entity.Basket)(nil)).Where("id = ?", first.ID).Exec(ctx)
	require.NoError(t, err)
	second := databasetest.InsertBasket(t, conns, 5)

	id, err = handle.ID(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, id)

	assert.False(t, handle.Invalidate(second.ID))
	assert.True(t, handle.Invalidate(first.ID))

	id, err = handle.ID(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, id)
}

func TestBasketHandle_Configured(t *testing.T) {
	conns := databasetest.New(t)
	handle := inventory.NewBasketHandle(inventory.NewRepository(conns), config.Config{Shop: config.Shop{BasketID: 42}})

	id, err := handle.ID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	assert.False(t, handle.Invalidate(42))
	id, err = handle.ID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}
