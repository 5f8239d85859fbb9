package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/bikeshop/internal/config"
	"github.com/Additional-Code/bikeshop/internal/database"
	"github.com/Additional-Code/bikeshop/internal/database/databasetest"
	bikerepo "github.com/Additional-Code/bikeshop/internal/repository/bike"
	"github.com/Additional-Code/bikeshop/internal/repository/inventory"
	"github.com/Additional-Code/bikeshop/internal/service/catalog"
	"github.com/Additional-Code/bikeshop/pkg/errorbank"
)

func newService(t *testing.T) (*catalog.Service, *database.Connections) {
	t.Helper()
	conns := databasetest.New(t)
	inv := inventory.NewRepository(conns)
	return catalog.NewService(catalog.Params{
		Bikes:     bikerepo.NewRepository(conns),
		Inventory: inv,
		Baskets:   inventory.NewBasketHandle(inv, config.Config{}),
		Logger:    zap.NewNop(),
	}), conns
}

func TestService_List(t *testing.T) {
	svc, conns := newService(t)
	ctx := context.Background()

	bikes, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bikes)

	databasetest.InsertBike(t, conns, "Commuter", databasetest.Stock{Frame: 1, Seat: 1, Tire: 2})
	databasetest.InsertBike(t, conns, "Fixie", databasetest.Stock{Frame: 1, Seat: 0, Tire: 2, HasBasket: true})

	bikes, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, bikes, 2)
	assert.Equal(t, "Commuter", bikes[0].Name)
	assert.True(t, bikes[0].IsAvailable())
	assert.Equal(t, "Fixie", bikes[1].Name)
	assert.False(t, bikes[1].IsAvailable())
	assert.Equal(t, "yes", bikes[1].BasketLabel())
}

func TestService_Get(t *testing.T) {
	svc, conns := newService(t)
	ctx := context.Background()
	fixture := databasetest.InsertBike(t, conns, "Commuter", databasetest.Stock{Frame: 4, Seat: 3, Tire: 8})

	bike, err := svc.Get(ctx, fixture.Bike.ID)
	require.NoError(t, err)
	require.NotNil(t, bike.Tire)
	assert.Equal(t, 8, bike.Tire.Quantity)

	_, err = svc.Get(ctx, fixture.Bike.ID+100)
	require.Error(t, err)
	assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
}

func TestService_Basket(t *testing.T) {
	svc, conns := newService(t)
	ctx := context.Background()

	basket, err := svc.Basket(ctx)
	require.NoError(t, err)
	assert.Nil(t, basket)

	created := databasetest.InsertBasket(t, conns, 6)
	databasetest.InsertBasket(t, conns, 1)

	basket, err = svc.Basket(ctx)
	require.NoError(t, err)
	require.NotNil(t, basket)
	assert.Equal(t, created.ID, basket.ID)
	assert.Equal(t, 6, basket.Quantity)
}
