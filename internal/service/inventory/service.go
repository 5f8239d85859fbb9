package inventory

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bikeshop/internal/database"
	repo "github.com/Additional-Code/bikeshop/internal/repository/inventory"
	"github.com/Additional-Code/bikeshop/internal/validation"
	"github.com/Additional-Code/bikeshop/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/bikeshop/service/inventory")

// RestockInput adds units of one part row back to stock.
type RestockInput struct {
	Part  string `json:"part" validate:"required,oneof=frame seat tire basket"`
	ID    int64  `json:"id" validate:"required,gt=0"`
	Units int    `json:"units" validate:"required,gt=0"`
}

// Service administers part stock levels.
type Service struct {
	conns    *database.Connections
	repo     *repo.Repository
	logger   *zap.Logger
	validate *validator.Validate
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Connections *database.Connections
	Repository  *repo.Repository
	Logger      *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		conns:    p.Connections,
		repo:     p.Repository,
		logger:   p.Logger,
		validate: validation.New(),
	}
}

// Levels returns every part row with its current quantity.
func (s *Service) Levels(ctx context.Context) (*repo.Levels, error) {
	ctx, span := serviceTracer.Start(ctx, "InventoryService.Levels")
	defer span.End()

	levels, err := s.repo.Levels(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load stock levels", errorbank.WithCause(err))
	}
	return levels, nil
}

// Restock adds input.Units to a part row and returns the resulting quantity.
func (s *Service) Restock(ctx context.Context, input RestockInput) (int, error) {
	if err := validation.Struct(s.validate, input, "invalid restock request"); err != nil {
		return 0, err
	}
	part, err := repo.ParsePart(input.Part)
	if err != nil {
		return 0, errorbank.BadRequest("unknown part", errorbank.WithDetail("part", input.Part))
	}

	ctx, span := serviceTracer.Start(ctx, "InventoryService.Restock", trace.WithAttributes(
		attribute.String("inventory.part", string(part)),
		attribute.Int64("inventory.id", input.ID),
		attribute.Int("inventory.units", input.Units),
	))
	defer span.End()

	var quantity int
	err = s.conns.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		store := s.repo.WithTx(tx)
		if err := store.Adjust(ctx, part, input.ID, input.Units); err != nil {
			return err
		}
		var err error
		quantity, err = store.Quantity(ctx, part, input.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, errorbank.NotFound("part not found",
				errorbank.WithDetail("part", input.Part),
				errorbank.WithDetail("id", input.ID),
			)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "restock failed")
		return 0, errorbank.Internal("failed to restock", errorbank.WithCause(err))
	}

	if s.logger != nil {
		s.logger.Info("part restocked",
			zap.String("part", string(part)),
			zap.Int64("id", input.ID),
			zap.Int("units", input.Units),
			zap.Int("quantity", quantity),
		)
	}
	return quantity, nil
}
