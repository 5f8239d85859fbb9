package order_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Additional-Code/bikeshop/internal/config"
	"github.com/Additional-Code/bikeshop/internal/database/databasetest"
	"github.com/Additional-Code/bikeshop/internal/messaging"
	bikerepo "github.com/Additional-Code/bikeshop/internal/repository/bike"
	"github.com/Additional-Code/bikeshop/internal/repository/inventory"
	"github.com/Additional-Code/bikeshop/internal/service/catalog"
	ordersvc "github.com/Additional-Code/bikeshop/internal/service/order"
	"github.com/Additional-Code/bikeshop/internal/worker"
	"github.com/Additional-Code/bikeshop/internal/worker/order"
)

func placedMessage(t *testing.T, bikeID int64) messaging.Message {
	t.Helper()
	payload, err := json.Marshal(ordersvc.OrderPlacedEvent{
		EventID:  "evt-1",
		OrderID:  9,
		BikeID:   bikeID,
		PlacedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return messaging.Message{
		Topic:   "bikeshop.orders",
		Value:   payload,
		Headers: map[string]string{messaging.HeaderEventType: ordersvc.EventOrderPlaced},
	}
}

func TestOrderPlacedHandler(t *testing.T) {
	conns := databasetest.New(t)
	inv := inventory.NewRepository(conns)
	shop := catalog.NewService(catalog.Params{
		Bikes:     bikerepo.NewRepository(conns),
		Inventory: inv,
		Baskets:   inventory.NewBasketHandle(inv, config.Config{}),
	})

	stocked := databasetest.InsertBike(t, conns, "Commuter", databasetest.Stock{Frame: 1, Seat: 1, Tire: 2})
	soldOut := databasetest.InsertBike(t, conns, "Fixie", databasetest.Stock{Frame: 0, Seat: 1, Tire: 2})

	core, logs := observer.New(zapcore.InfoLevel)
	reg := order.NewOrderPlacedHandler(zap.New(core), shop)
	assert.Equal(t, ordersvc.EventOrderPlaced, reg.EventType)

	engine := worker.NewEngine(worker.Params{
		Logger:        zap.NewNop(),
		Registrations: []worker.HandlerRegistration{reg},
	})
	ctx := context.Background()

	require.NoError(t, engine.Dispatch(ctx, placedMessage(t, stocked.Bike.ID)))
	assert.Equal(t, 1, logs.FilterMessage("order placed event processed").Len())

	require.NoError(t, engine.Dispatch(ctx, placedMessage(t, soldOut.Bike.ID)))
	warned := logs.FilterMessage("bike sold out").All()
	require.Len(t, warned, 1)
	assert.Equal(t, soldOut.Bike.ID, warned[0].ContextMap()["bike_id"])

	require.NoError(t, engine.Dispatch(ctx, placedMessage(t, 12345)))
	assert.Equal(t, 1, logs.FilterMessage("ordered bike no longer exists").Len())

	bad := placedMessage(t, stocked.Bike.ID)
	bad.Value = []byte("{")
	assert.Error(t, engine.Dispatch(ctx, bad))
}
