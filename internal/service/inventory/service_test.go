package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/bikeshop/internal/database"
	"github.com/Additional-Code/bikeshop/internal/database/databasetest"
	repo "github.com/Additional-Code/bikeshop/internal/repository/inventory"
	"github.com/Additional-Code/bikeshop/internal/service/inventory"
	"github.com/Additional-Code/bikeshop/pkg/errorbank"
)

func newService(t *testing.T) (*inventory.Service, *database.Connections) {
	t.Helper()
	conns := databasetest.New(t)
	return inventory.NewService(inventory.Params{
		Connections: conns,
		Repository:  repo.NewRepository(conns),
		Logger:      zap.NewNop(),
	}), conns
}

func TestService_Levels(t *testing.T) {
	svc, conns := newService(t)
	databasetest.InsertBike(t, conns, "Commuter", databasetest.Stock{Frame: 1, Seat: 2, Tire: 3})
	databasetest.InsertBasket(t, conns, 4)

	levels, err := svc.Levels(context.Background())
	require.NoError(t, err)
	require.Len(t, levels.Frames, 1)
	require.Len(t, levels.Seats, 1)
	require.Len(t, levels.Tires, 1)
	require.Len(t, levels.Baskets, 1)
	assert.Equal(t, 1, levels.Frames[0].Quantity)
	assert.Equal(t, 2, levels.Seats[0].Quantity)
	assert.Equal(t, 3, levels.Tires[0].Quantity)
	assert.Equal(t, 4, levels.Baskets[0].Quantity)
}

func TestService_Restock(t *testing.T) {
	svc, conns := newService(t)
	ctx := context.Background()
	fixture := databasetest.InsertBike(t, conns, "Commuter", databasetest.Stock{Frame: 1, Seat: 2, Tire: -1})

	quantity, err := svc.Restock(ctx, inventory.RestockInput{Part: "tire", ID: fixture.Tire.ID, Units: 5})
	require.NoError(t, err)
	assert.Equal(t, 4, quantity)
	assert.Equal(t, 4, databasetest.Quantity(t, conns, "tires", fixture.Tire.ID))
	assert.Equal(t, 2, databasetest.Quantity(t, conns, "seats", fixture.Seat.ID))
}

func TestService_RestockErrors(t *testing.T) {
	svc, conns := newService(t)
	fixture := databasetest.InsertBike(t, conns, "Commuter", databasetest.Stock{Frame: 1, Seat: 1, Tire: 2})

	tests := []struct {
		name  string
		input inventory.RestockInput
		kind  errorbank.Kind
	}{
		{name: "zero units", input: inventory.RestockInput{Part: "seat", ID: fixture.Seat.ID, Units: 0}, kind: errorbank.KindBadRequest},
		{name: "negative units", input: inventory.RestockInput{Part: "seat", ID: fixture.Seat.ID, Units: -3}, kind: errorbank.KindBadRequest},
		{name: "unknown part", input: inventory.RestockInput{Part: "bell", ID: 1, Units: 1}, kind: errorbank.KindBadRequest},
		{name: "missing row", input: inventory.RestockInput{Part: "frame", ID: 999, Units: 1}, kind: errorbank.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Restock(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errorbank.From(err).Kind())
		})
	}
	assert.Equal(t, 1, databasetest.Quantity(t, conns, "seats", fixture.Seat.ID))
}
