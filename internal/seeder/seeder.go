package seeder

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bikeshop/internal/database"
	"github.com/Additional-Code/bikeshop/internal/entity"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	conns  *database.Connections
	logger *zap.Logger
}

// New constructs a Seeder backed by the primary database connection.
func New(conns *database.Connections, logger *zap.Logger) *Seeder {
	return &Seeder{conns: conns, logger: logger}
}

type sampleBike struct {
	name, description string
	frame, seat, tire int
	hasBasket         bool
}

// Shop seeds part stock, one basket counter and a small bike catalog. It does
// nothing when bikes already exist.
func (s *Seeder) Shop(ctx context.Context) error {
	db := s.conns.Writer
	count, err := db.NewSelect().Model((*entity.Bike)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count bikes: %w", err)
	}
	if count > 0 {
		if s.logger != nil {
			s.logger.Info("catalog already seeded", zap.Int("bikes", count))
		}
		return nil
	}

	frames := []*entity.Frame{{Color: "red", Quantity: 10}, {Color: "matte black", Quantity: 6}, {Color: "mint", Quantity: 2}}
	seats := []*entity.Seat{{Color: "black", Quantity: 12}, {Color: "brown leather", Quantity: 4}}
	tires := []*entity.Tire{{Type: "road", Quantity: 20}, {Type: "gravel", Quantity: 8}, {Type: "balloon", Quantity: 3}}
	basket := &entity.Basket{Quantity: 5}

	bikes := []sampleBike{
		{name: "Roadster", description: "Light road bike for daily commutes.", frame: 0, seat: 0, tire: 0},
		{name: "Trailblazer", description: "Gravel bike for mixed terrain.", frame: 1, seat: 0, tire: 1},
		{name: "Beach Cruiser", description: "Relaxed cruiser with a front basket.", frame: 2, seat: 1, tire: 2, hasBasket: true},
		{name: "Market Run", description: "City bike with a basket for groceries.", frame: 0, seat: 1, tire: 0, hasBasket: true},
	}

	err = s.conns.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&frames).Exec(ctx); err != nil {
			return fmt.Errorf("insert frames: %w", err)
		}
		if _, err := tx.NewInsert().Model(&seats).Exec(ctx); err != nil {
			return fmt.Errorf("insert seats: %w", err)
		}
		if _, err := tx.NewInsert().Model(&tires).Exec(ctx); err != nil {
			return fmt.Errorf("insert tires: %w", err)
		}
		if _, err := tx.NewInsert().Model(basket).Exec(ctx); err != nil {
			return fmt.Errorf("insert basket: %w", err)
		}
		for _, sample := range bikes {
			bike := &entity.Bike{
				Name:        sample.name,
				Description: sample.description,
				FrameID:     frames[sample.frame].ID,
				SeatID:      seats[sample.seat].ID,
				TireID:      tires[sample.tire].ID,
				HasBasket:   sample.hasBasket,
			}
			if _, err := tx.NewInsert().Model(bike).Exec(ctx); err != nil {
				return fmt.Errorf("insert bike %q: %w", sample.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("seeded shop",
			zap.Int("frames", len(frames)),
			zap.Int("seats", len(seats)),
			zap.Int("tires", len(tires)),
			zap.Int("bikes", len(bikes)),
		)
	}
	return nil
}
