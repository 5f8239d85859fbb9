package cli

import (
	"bytes"
	"context"
	"strconv"
	"strings"
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

func newInventoryService(conns *database.Connections) *inventory.Service {
	return inventory.NewService(inventory.Params{
		Connections: conns,
		Repository:  repo.NewRepository(conns),
		Logger:      zap.NewNop(),
	})
}

// rows splits tabwriter output into whitespace-separated fields per line.
func rows(out string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		lines = append(lines, strings.Join(strings.Fields(line), " "))
	}
	return lines
}

func TestListStock(t *testing.T) {
	conns := databasetest.New(t)
	fixture := databasetest.InsertBike(t, conns, "Commuter", databasetest.Stock{Frame: 3, Seat: 2, Tire: 8})
	basket := databasetest.InsertBasket(t, conns, 4)

	var out bytes.Buffer
	require.NoError(t, listStock(context.Background(), &out, newInventoryService(conns)))

	id := func(v int64) string { return strconv.FormatInt(v, 10) }
	assert.Equal(t, []string{
		"PART ID NAME QUANTITY",
		"frame " + id(fixture.Frame.ID) + " red 3",
		"seat " + id(fixture.Seat.ID) + " black 2",
		"tire " + id(fixture.Tire.ID) + " road 8",
		"basket " + id(basket.ID) + " Bike basket 4",
	}, rows(out.String()))
	assert.NotContains(t, out.String(), "{")
}

func TestRestock(t *testing.T) {
	conns := databasetest.New(t)
	fixture := databasetest.InsertBike(t, conns, "Commuter", databasetest.Stock{Frame: 3, Seat: 2, Tire: 8})
	svc := newInventoryService(conns)
	ctx := context.Background()

	t.Run("prints the new quantity", func(t *testing.T) {
		var out bytes.Buffer
		err := restock(ctx, &out, svc, inventory.RestockInput{Part: "tire", ID: fixture.Tire.ID, Units: 4})
		require.NoError(t, err)
		assert.Equal(t, "tire "+strconv.FormatInt(fixture.Tire.ID, 10)+" now at 12\n", out.String())
		assert.Equal(t, 12, databasetest.Quantity(t, conns, "tires", fixture.Tire.ID))
	})

	t.Run("unknown row", func(t *testing.T) {
		var out bytes.Buffer
		err := restock(ctx, &out, svc, inventory.RestockInput{Part: "seat", ID: 999, Units: 1})
		assert.True(t, errorbank.IsKind(err, errorbank.KindNotFound))
		assert.Empty(t, out.String())
	})

	t.Run("invalid units", func(t *testing.T) {
		var out bytes.Buffer
		err := restock(ctx, &out, svc, inventory.RestockInput{Part: "frame", ID: fixture.Frame.ID, Units: 0})
		assert.True(t, errorbank.IsKind(err, errorbank.KindBadRequest))
		assert.Empty(t, out.String())
		assert.Equal(t, 3, databasetest.Quantity(t, conns, "frames", fixture.Frame.ID))
	})
}
