package seeder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/bikeshop/internal/database/databasetest"
	"github.com/Additional-Code/bikeshop/internal/entity"
	bikerepo "github.com/Additional-Code/bikeshop/internal/repository/bike"
	"github.com/Additional-Code/bikeshop/internal/seeder"
)

func TestSeeder_Shop(t *testing.T) {
	conns := databasetest.New(t)
	seed := seeder.New(conns, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, seed.Shop(ctx))

	bikes, err := bikerepo.NewRepository(conns).List(ctx)
	require.NoError(t, err)
	require.Len(t, bikes, 4)
	for _, bike := range bikes {
		assert.NotNil(t, bike.Frame, bike.Name)
		assert.NotNil(t, bike.Seat, bike.Name)
		assert.NotNil(t, bike.Tire, bike.Name)
	}
	assert.Equal(t, "Beach Cruiser", bikes[2].Name)
	assert.True(t, bikes[2].HasBasket)

	// Seeding twice leaves the catalog alone.
	require.NoError(t, seed.Shop(ctx))
	count, err := conns.Writer.NewSelect().Model((*entity.Basket)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
