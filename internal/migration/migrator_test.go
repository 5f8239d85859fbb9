package migration_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/bikeshop/internal/database"
	"github.com/Additional-Code/bikeshop/internal/database/databasetest"
	"github.com/Additional-Code/bikeshop/internal/migration"
)

func tableExists(t *testing.T, conns *database.Connections, name string) bool {
	t.Helper()
	var count int
	err := conns.Writer.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	require.NoError(t, err)
	return count == 1
}

func TestMigrator_UpDown(t *testing.T) {
	cfg := databasetest.Config()
	lc := fxtest.NewLifecycle(t)
	conns, err := database.New(lc, cfg, zap.NewNop())
	require.NoError(t, err)
	lc.RequireStart()
	defer lc.RequireStop()

	mig, err := migration.New(cfg, conns, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, mig.Up(ctx))
	for _, table := range []string{"frames", "seats", "tires", "baskets", "bikes", "orders"} {
		assert.True(t, tableExists(t, conns, table), table)
	}
	// Re-running is a no-op.
	require.NoError(t, mig.Up(ctx))

	require.NoError(t, mig.Down(ctx, 1, false))
	assert.False(t, tableExists(t, conns, "bikes"))
	assert.True(t, tableExists(t, conns, "frames"))

	require.NoError(t, mig.Down(ctx, 0, true))
	assert.False(t, tableExists(t, conns, "frames"))
}

func TestNew_UnsupportedDriver(t *testing.T) {
	cfg := databasetest.Config()
	cfg.Database.Driver = "oracle"
	_, err := migration.New(cfg, &database.Connections{}, zap.NewNop())
	assert.Error(t, err)
}
