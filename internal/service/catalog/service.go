package catalog

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bikeshop/internal/entity"
	bikerepo "github.com/Additional-Code/bikeshop/internal/repository/bike"
	"github.com/Additional-Code/bikeshop/internal/repository/inventory"
	"github.com/Additional-Code/bikeshop/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/bikeshop/service/catalog")

// Service serves bike recipes and the shared basket for display.
type Service struct {
	bikes     *bikerepo.Repository
	inventory *inventory.Repository
	baskets   *inventory.BasketHandle
	logger    *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Bikes     *bikerepo.Repository
	Inventory *inventory.Repository
	Baskets   *inventory.BasketHandle
	Logger    *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		bikes:     p.Bikes,
		inventory: p.Inventory,
		baskets:   p.Baskets,
		logger:    p.Logger,
	}
}

// List returns every bike with its parts, ordered by id.
func (s *Service) List(ctx context.Context) ([]entity.Bike, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.List")
	defer span.End()

	bikes, err := s.bikes.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list bikes", errorbank.WithCause(err))
	}
	return bikes, nil
}

// Get returns one bike with its parts.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Bike, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Get", trace.WithAttributes(attribute.Int64("bike.id", id)))
	defer span.End()

	bike, err := s.bikes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bikerepo.ErrNotFound) {
			return nil, errorbank.NotFound("bike not found", errorbank.WithDetail("bike_id", id))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load bike", errorbank.WithCause(err))
	}
	return bike, nil
}

// Basket returns the basket counter debited by orders, or nil when the shop
// has no basket row.
func (s *Service) Basket(ctx context.Context) (*entity.Basket, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Basket")
	defer span.End()

	id, err := s.baskets.ID(ctx)
	if err == nil {
		var basket *entity.Basket
		basket, err = s.inventory.Basket(ctx, id)
		if err == nil {
			return basket, nil
		}
	}
	if errors.Is(err, inventory.ErrNotFound) {
		if s.logger != nil {
			s.logger.Debug("no basket in stock table")
		}
		return nil, nil
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "repository error")
	return nil, errorbank.Internal("failed to load basket", errorbank.WithCause(err))
}
