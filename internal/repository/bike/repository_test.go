package bike_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/bikeshop/internal/database/databasetest"
	"github.com/Additional-Code/bikeshop/internal/repository/bike"
)

func TestRepository_List(t *testing.T) {
	conns := databasetest.New(t)
	repo := bike.NewRepository(conns)
	ctx := context.Background()

	bikes, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bikes)

	databasetest.InsertBike(t, conns, "Commuter", databasetest.Stock{Frame: 3, Seat: 2, Tire: 5})
	databasetest.InsertBike(t, conns, "Cruiser", databasetest.Stock{Frame: 0, Seat: 1, Tire: 2, HasBasket: true})

	bikes, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, bikes, 2)

	assert.Equal(t, "Commuter", bikes[0].Name)
	require.NotNil(t, bikes[0].Frame)
	assert.Equal(t, 3, bikes[0].Frame.Quantity)
	assert.True(t, bikes[0].IsAvailable())

	assert.Equal(t, "Cruiser", bikes[1].Name)
	assert.True(t, bikes[1].HasBasket)
	assert.False(t, bikes[1].IsAvailable())
}

func TestRepository_GetByID(t *testing.T) {
	conns := databasetest.New(t)
	repo := bike.NewRepository(conns)
	ctx := context.Background()
	fixture := databasetest.InsertBike(t, conns, "Roadster", databasetest.Stock{Frame: 1, Seat: 1, Tire: 4, HasBasket: true})

	got, err := repo.GetByID(ctx, fixture.Bike.ID)
	require.NoError(t, err)
	assert.Equal(t, "Roadster", got.Name)
	assert.Equal(t, "Roadster test bike", got.Description)
	require.NotNil(t, got.Seat)
	require.NotNil(t, got.Tire)
	assert.Equal(t, fixture.Seat.ID, got.Seat.ID)
	assert.Equal(t, 4, got.Tire.Quantity)
	assert.Equal(t, "yes", got.BasketLabel())

	_, err = repo.GetByID(ctx, fixture.Bike.ID+100)
	assert.ErrorIs(t, err, bike.ErrNotFound)
}
