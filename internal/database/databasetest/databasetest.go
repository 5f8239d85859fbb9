// Package databasetest provides migrated sqlite databases for package tests.
package databasetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/bikeshop/internal/config"
	"github.com/Additional-Code/bikeshop/internal/database"
	"github.com/Additional-Code/bikeshop/internal/entity"
	"github.com/Additional-Code/bikeshop/internal/migration"
)

// Config returns an application config pointing at a private in-memory sqlite database.
func Config() config.Config {
	return config.Config{
		Database: config.Database{
			Driver:    "sqlite",
			WriterDSN: "file::memory:",
			ReaderDSN: "file::memory:",
		},
		Cache:     config.Cache{Driver: "noop"},
		Messaging: config.Messaging{Driver: "noop", Kafka: config.Kafka{Topic: "bikeshop.orders"}},
		Shop:      config.Shop{AtomicOrders: true},
	}
}

// New opens a migrated in-memory database that is closed when the test ends.
// It is served by a single connection, so transactions run one at a time.
func New(t testing.TB) *database.Connections {
	t.Helper()
	return open(t, Config())
}

// NewFile opens a migrated database file in a test temp dir behind a pool of
// conns connections, for tests where transactions must overlap.
func NewFile(t testing.TB, conns int) *database.Connections {
	t.Helper()

	cfg := Config()
	dsn := "file:" + filepath.Join(t.TempDir(), "bikeshop.db")
	cfg.Database.WriterDSN = dsn
	cfg.Database.ReaderDSN = dsn
	cfg.Database.MaxOpenConns = conns
	cfg.Database.MaxIdleConns = conns
	return open(t, cfg)
}

func open(t testing.TB, cfg config.Config) *database.Connections {
	t.Helper()

	lc := fxtest.NewLifecycle(t)

	conns, err := database.New(lc, cfg, zap.NewNop())
	require.NoError(t, err)
	lc.RequireStart()
	t.Cleanup(func() { lc.RequireStop() })

	mig, err := migration.New(cfg, conns, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, mig.Up(context.Background()))

	return conns
}

// Stock describes the part quantities of a fixture bike.
type Stock struct {
	Frame     int
	Seat      int
	Tire      int
	HasBasket bool
}

// Fixture is a bike together with the part rows it references.
type Fixture struct {
	Bike  *entity.Bike
	Frame *entity.Frame
	Seat  *entity.Seat
	Tire  *entity.Tire
}

// InsertBike creates fresh part rows and a bike recipe over them.
func InsertBike(t testing.TB, conns *database.Connections, name string, stock Stock) Fixture {
	t.Helper()
	ctx := context.Background()
	db := conns.Writer

	frame := &entity.Frame{Color: "red", Quantity: stock.Frame}
	seat := &entity.Seat{Color: "black", Quantity: stock.Seat}
	tire := &entity.Tire{Type: "road", Quantity: stock.Tire}
	for _, model := range []any{frame, seat, tire} {
		_, err := db.NewInsert().Model(model).Exec(ctx)
		require.NoError(t, err)
	}

	bike := &entity.Bike{
		FrameID:     frame.ID,
		SeatID:      seat.ID,
		TireID:      tire.ID,
		Name:        name,
		Description: name + " test bike",
		HasBasket:   stock.HasBasket,
	}
	_, err := db.NewInsert().Model(bike).Exec(ctx)
	require.NoError(t, err)

	bike.Frame, bike.Seat, bike.Tire = frame, seat, tire
	return Fixture{Bike: bike, Frame: frame, Seat: seat, Tire: tire}
}

// InsertBasket creates a basket counter.
func InsertBasket(t testing.TB, conns *database.Connections, quantity int) *entity.Basket {
	t.Helper()
	basket := &entity.Basket{Quantity: quantity}
	_, err := conns.Writer.NewInsert().Model(basket).Exec(context.Background())
	require.NoError(t, err)
	return basket
}

// Quantity reads the current quantity of a part row straight from the database.
func Quantity(t testing.TB, conns *database.Connections, table string, id int64) int {
	t.Helper()
	var quantity int
	err := conns.Writer.NewSelect().
		Table(table).
		Column("quantity").
		Where("id = ?", id).
		Scan(context.Background(), &quantity)
	require.NoError(t, err)
	return quantity
}

// CountOrders counts orders referencing a bike.
func CountOrders(t testing.TB, conns *database.Connections, bikeID int64) int {
	t.Helper()
	count, err := conns.Writer.NewSelect().
		Model((*entity.Order)(nil)).
		Where("bike_id = ?", bikeID).
		Count(context.Background())
	require.NoError(t, err)
	return count
}
