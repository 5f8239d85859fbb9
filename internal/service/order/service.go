package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bikeshop/internal/cache"
	"github.com/Additional-Code/bikeshop/internal/config"
	"github.com/Additional-Code/bikeshop/internal/database"
	"github.com/Additional-Code/bikeshop/internal/entity"
	"github.com/Additional-Code/bikeshop/internal/messaging"
	bikerepo "github.com/Additional-Code/bikeshop/internal/repository/bike"
	"github.com/Additional-Code/bikeshop/internal/repository/inventory"
	repo "github.com/Additional-Code/bikeshop/internal/repository/order"
	"github.com/Additional-Code/bikeshop/internal/validation"
	"github.com/Additional-Code/bikeshop/pkg/errorbank"
)

const instrumentationName = "github.com/Additional-Code/bikeshop/service/order"

var serviceTracer = otel.Tracer(instrumentationName)

// EventOrderPlaced is the event-type header of OrderPlacedEvent messages.
const EventOrderPlaced = "order.placed"

// PlaceOrderInput carries the customer details submitted with an order.
type PlaceOrderInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Surname     string `json:"surname" validate:"required,max=50"`
	PhoneNumber string `json:"phone_number" validate:"required,max=50"`
}

// Service places and reads bike orders.
type Service struct {
	conns     *database.Connections
	stores    stores
	baskets   *inventory.BasketHandle
	cache     cache.Store
	cacheTTL  time.Duration
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
	policy    config.Shop
	validate  *validator.Validate
	metrics   metrics
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
	topic   string
}

// stores groups the repositories a placement touches so they can be rebound
// to a transaction together.
type stores struct {
	bikes     *bikerepo.Repository
	inventory *inventory.Repository
	orders    *repo.Repository
}

func (s stores) withTx(tx bun.Tx) stores {
	return stores{
		bikes:     s.bikes.WithTx(tx),
		inventory: s.inventory.WithTx(tx),
		orders:    s.orders.WithTx(tx),
	}
}

type metrics struct {
	placed  metric.Int64Counter
	debited metric.Int64Counter
}

// debit is one stock decrement of an order.
type debit struct {
	part  inventory.Part
	id    int64
	units int
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Connections *database.Connections
	Bikes       *bikerepo.Repository
	Inventory   *inventory.Repository
	Baskets     *inventory.BasketHandle
	Repository  *repo.Repository
	Cache       cache.Store
	Config      config.Config
	Logger      *zap.Logger
	Publisher   messaging.Client
	Meter       metric.MeterProvider
}

// NewService wires a new Service instance.
func NewService(p Params) (*Service, error) {
	m, err := newMetrics(p.Meter)
	if err != nil {
		return nil, err
	}
	return &Service{
		conns: p.Connections,
		stores: stores{
			bikes:     p.Bikes,
			inventory: p.Inventory,
			orders:    p.Repository,
		},
		baskets:   p.Baskets,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
		policy:   p.Config.Shop,
		validate: validation.New(),
		metrics:  m,
	}, nil
}

func newMetrics(mp metric.MeterProvider) (metrics, error) {
	meter := mp.Meter(instrumentationName)
	placed, err := meter.Int64Counter("shop.orders.placed",
		metric.WithDescription("Orders placed"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return metrics{}, fmt.Errorf("create orders counter: %w", err)
	}
	debited, err := meter.Int64Counter("shop.parts.debited",
		metric.WithDescription("Part units removed from stock by orders"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return metrics{}, fmt.Errorf("create debits counter: %w", err)
	}
	return metrics{placed: placed, debited: debited}, nil
}

// Place orders one bike: it debits one seat, two tires, one frame and, for
// bikes sold with a basket, one basket, then records the order.
//
// With Shop.AtomicOrders the whole sequence is one transaction. Otherwise
// each debit is a separate read-modify-write and earlier debits stay applied
// when a later step fails. With Shop.RejectUnavailable an unavailable bike is
// refused before anything is debited; otherwise stock may go negative.
func (s *Service) Place(ctx context.Context, bikeID int64, input PlaceOrderInput) (*entity.Order, error) {
	if err := validation.Struct(s.validate, input, "invalid order details"); err != nil {
		return nil, err
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.Place", trace.WithAttributes(
		attribute.Int64("bike.id", bikeID),
		attribute.Bool("shop.atomic_orders", s.policy.AtomicOrders),
		attribute.Bool("shop.reject_unavailable", s.policy.RejectUnavailable),
	))
	defer span.End()

	var (
		order   *entity.Order
		applied []debit
		err     error
	)
	if s.policy.AtomicOrders {
		err = s.conns.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
			var placeErr error
			order, applied, placeErr = s.place(ctx, s.stores.withTx(tx), bikeID, input)
			return placeErr
		})
	} else {
		order, applied, err = s.place(ctx, s.stores, bikeID, input)
	}
	if err != nil {
		appErr := s.translate(err)
		// A rolled back transaction leaves no debits behind.
		kept := len(applied)
		if s.policy.AtomicOrders {
			kept = 0
		}
		if appErr.Kind() == errorbank.KindInternal {
			span.RecordError(err)
			span.SetStatus(codes.Error, "place failed")
		}
		if s.logger != nil && (kept > 0 || appErr.Kind() == errorbank.KindInternal) {
			s.logger.Error("order placement failed",
				zap.Int64("bike_id", bikeID),
				zap.Bool("atomic", s.policy.AtomicOrders),
				zap.Int("debits_kept", kept),
				zap.Error(err),
			)
		}
		return nil, appErr
	}
	span.SetAttributes(attribute.Int64("order.id", order.ID))

	s.record(ctx, order, applied)

	if err := s.storeInCache(ctx, order); err != nil {
		if s.logger != nil {
			s.logger.Warn("orders cache write failed", zap.Int64("id", order.ID), zap.Error(err))
		}
	}

	s.publishOrderPlaced(ctx, order)

	if s.logger != nil {
		s.logger.Info("order placed",
			zap.Int64("order_id", order.ID),
			zap.Int64("bike_id", order.BikeID),
			zap.Bool("has_basket", order.Bike.HasBasket),
		)
	}
	return order, nil
}

// place runs the placement steps against st. It returns the debits applied so
// far even on failure.
func (s *Service) place(ctx context.Context, st stores, bikeID int64, input PlaceOrderInput) (*entity.Order, []debit, error) {
	bike, err := st.bikes.GetByID(ctx, bikeID)
	if err != nil {
		return nil, nil, err
	}
	if s.policy.AtomicOrders {
		if err := lockParts(ctx, st, bike); err != nil {
			return nil, nil, err
		}
	}

	if s.policy.RejectUnavailable && !bike.IsAvailable() {
		return nil, nil, errorbank.OutOfStock("bike is not available",
			errorbank.WithDetail("bike_id", bikeID),
		)
	}

	applied := make([]debit, 0, 4)
	steps := []debit{
		{part: inventory.PartSeat, id: bike.SeatID, units: entity.SeatsPerBike},
		{part: inventory.PartTire, id: bike.TireID, units: entity.TiresPerBike},
		{part: inventory.PartFrame, id: bike.FrameID, units: entity.FramesPerBike},
	}
	for _, d := range steps {
		if err := s.debit(ctx, st, d); err != nil {
			return nil, applied, fmt.Errorf("debit %s %d: %w", d.part, d.id, err)
		}
		applied = append(applied, d)
	}

	if bike.HasBasket {
		d, err := s.debitBasket(ctx, st)
		if err != nil {
			return nil, applied, err
		}
		applied = append(applied, d)
	}

	order := &entity.Order{
		BikeID:      bike.ID,
		Name:        input.Name,
		Surname:     input.Surname,
		PhoneNumber: input.PhoneNumber,
		CreatedAt:   time.Now().UTC(),
	}
	if err := st.orders.Create(ctx, order); err != nil {
		return nil, applied, fmt.Errorf("create order: %w", err)
	}

	summary := *bike
	summary.Frame, summary.Seat, summary.Tire = nil, nil, nil
	order.Bike = &summary
	return order, applied, nil
}

// lockParts takes row locks on the bike's parts in seat, tire, frame order
// and refreshes the loaded quantities from the locked rows.
func lockParts(ctx context.Context, st stores, bike *entity.Bike) error {
	parts := []struct {
		part     inventory.Part
		id       int64
		quantity *int
	}{
		{inventory.PartSeat, bike.SeatID, nil},
		{inventory.PartTire, bike.TireID, nil},
		{inventory.PartFrame, bike.FrameID, nil},
	}
	if bike.Seat != nil {
		parts[0].quantity = &bike.Seat.Quantity
	}
	if bike.Tire != nil {
		parts[1].quantity = &bike.Tire.Quantity
	}
	if bike.Frame != nil {
		parts[2].quantity = &bike.Frame.Quantity
	}
	for _, p := range parts {
		quantity, err := st.inventory.Lock(ctx, p.part, p.id)
		if err != nil {
			return fmt.Errorf("lock %s %d: %w", p.part, p.id, err)
		}
		if p.quantity != nil {
			*p.quantity = quantity
		}
	}
	return nil
}

// debitBasket debits the shared basket. A lazily resolved basket whose row
// has gone is resolved again once.
func (s *Service) debitBasket(ctx context.Context, st stores) (debit, error) {
	for attempt := 0; ; attempt++ {
		basketID, err := s.baskets.IDWithin(ctx, st.inventory)
		if err != nil {
			return debit{}, fmt.Errorf("resolve basket: %w", err)
		}
		d := debit{part: inventory.PartBasket, id: basketID, units: entity.BasketsPerBike}
		err = s.debit(ctx, st, d)
		if err == nil {
			return d, nil
		}
		if attempt == 0 && errors.Is(err, inventory.ErrNotFound) && s.baskets.Invalidate(basketID) {
			if s.logger != nil {
				s.logger.Warn("basket row gone, resolving again", zap.Int64("basket_id", basketID))
			}
			continue
		}
		return debit{}, fmt.Errorf("debit %s %d: %w", d.part, d.id, err)
	}
}

func (s *Service) debit(ctx context.Context, st stores, d debit) error {
	if s.policy.AtomicOrders {
		return st.inventory.Adjust(ctx, d.part, d.id, -d.units)
	}
	quantity, err := st.inventory.Quantity(ctx, d.part, d.id)
	if err != nil {
		return err
	}
	return st.inventory.SetQuantity(ctx, d.part, d.id, quantity-d.units)
}

func (s *Service) translate(err error) *errorbank.AppError {
	var appErr *errorbank.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, bikerepo.ErrNotFound):
		return errorbank.NotFound("bike not found")
	case errors.Is(err, inventory.ErrNotFound):
		return errorbank.NotFound("bike part not found", errorbank.WithCause(err))
	default:
		return errorbank.Internal("failed to place order", errorbank.WithCause(err))
	}
}

func (s *Service) record(ctx context.Context, order *entity.Order, applied []debit) {
	s.metrics.placed.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("has_basket", order.Bike.HasBasket),
		attribute.Bool("atomic", s.policy.AtomicOrders),
	))
	for _, d := range applied {
		s.metrics.debited.Add(ctx, int64(d.units), metric.WithAttributes(
			attribute.String("part", string(d.part)),
		))
	}
}

// Get retrieves an order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if order, err := cache.GetJSON[entity.Order](ctx, s.cache, s.cacheKey(id)); err == nil {
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		if s.logger != nil {
			s.logger.Warn("orders cache read failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	order, err := s.stores.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		if s.logger != nil {
			s.logger.Warn("orders cache write failed", zap.Int64("id", id), zap.Error(err))
		}
	}

	return order, nil
}

func (s *Service) publishOrderPlaced(ctx context.Context, order *entity.Order) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := OrderPlacedEvent{
		EventID:   uuid.NewString(),
		OrderID:   order.ID,
		BikeID:    order.BikeID,
		BikeName:  order.Bike.Name,
		HasBasket: order.Bike.HasBasket,
		PlacedAt:  order.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal order placed", zap.Error(err))
		}
		return
	}
	msg := messaging.Message{
		Topic:   s.messaging.topic,
		Key:     []byte(fmt.Sprintf("order-%d", order.ID)),
		Value:   payload,
		Headers: map[string]string{messaging.HeaderEventType: EventOrderPlaced},
		Time:    order.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		if s.logger != nil {
			s.logger.Error("publish order placed", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}
}

// Orders never change once written, so cached copies are never invalidated.
func (s *Service) cacheKey(id int64) string {
	return fmt.Sprintf("orders:%d", id)
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return nil
	}
	return cache.SetJSON(ctx, s.cache, s.cacheKey(order.ID), order, s.cacheTTL)
}

// OrderPlacedEvent is emitted after an order has been committed.
type OrderPlacedEvent struct {
	EventID   string    `json:"event_id"`
	OrderID   int64     `json:"order_id"`
	BikeID    int64     `json:"bike_id"`
	BikeName  string    `json:"bike_name"`
	HasBasket bool      `json:"has_basket"`
	PlacedAt  time.Time `json:"placed_at"`
}
