package order

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/bikeshop/internal/messaging"
	"github.com/Additional-Code/bikeshop/internal/service/catalog"
	ordersvc "github.com/Additional-Code/bikeshop/internal/service/order"
	"github.com/Additional-Code/bikeshop/internal/worker"
	"github.com/Additional-Code/bikeshop/pkg/errorbank"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/bikeshop/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderPlacedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderPlacedHandler reloads the ordered bike after every placed order and
// warns once its parts no longer cover another sale.
func NewOrderPlacedHandler(logger *zap.Logger, bikes *catalog.Service) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.orders.placed", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event ordersvc.OrderPlacedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order placed", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		span.SetAttributes(
			attribute.Int64("order.id", event.OrderID),
			attribute.Int64("bike.id", event.BikeID),
		)

		bike, err := bikes.Get(ctx, event.BikeID)
		if errorbank.IsKind(err, errorbank.KindNotFound) {
			logger.Warn("ordered bike no longer exists",
				zap.Int64("order_id", event.OrderID),
				zap.Int64("bike_id", event.BikeID),
			)
			return nil
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "catalog error")
			return fmt.Errorf("reload bike %d: %w", event.BikeID, err)
		}

		if !bike.IsAvailable() {
			logger.Warn("bike sold out",
				zap.Int64("order_id", event.OrderID),
				zap.Int64("bike_id", bike.ID),
				zap.String("bike", bike.String()),
			)
			return nil
		}

		logger.Info("order placed event processed",
			zap.String("event_id", event.EventID),
			zap.Int64("order_id", event.OrderID),
			zap.Int64("bike_id", event.BikeID),
		)
		return nil
	}

	return worker.HandlerRegistration{
		EventType: ordersvc.EventOrderPlaced,
		Handler:   handler,
	}
}
