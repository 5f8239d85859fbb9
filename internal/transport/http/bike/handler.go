package bike

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/bikeshop/internal/dto"
	"github.com/Additional-Code/bikeshop/internal/presentation/http/response"
	"github.com/Additional-Code/bikeshop/internal/service/catalog"
	"github.com/Additional-Code/bikeshop/internal/service/order"
	"github.com/Additional-Code/bikeshop/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/bikeshop/transport/http/bike")

// Handler exposes the bike catalog and order form over HTTP.
type Handler struct {
	catalog *catalog.Service
	orders  *order.Service
}

// NewHandler constructs a bike Handler.
func NewHandler(catalog *catalog.Service, orders *order.Service) *Handler {
	return &Handler{catalog: catalog, orders: orders}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/bikes")
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.POST("/:id", h.placeOrder)
}

// orderForm accepts both urlencoded form posts and JSON bodies.
type orderForm struct {
	Name        string `json:"name" form:"name"`
	Surname     string `json:"surname" form:"surname"`
	PhoneNumber string `json:"phone_number" form:"phone_number"`
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "bikes.list")
	defer span.End()

	bikes, err := h.catalog.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	data := make([]dto.BikeResponse, 0, len(bikes))
	for i := range bikes {
		data = append(data, dto.NewBikeResponse(&bikes[i]))
	}
	return b.WithData(data).WithMeta("count", len(data)).Build()
}

func (h *Handler) detail(c echo.Context) error {
	b := response.New(c)

	id, err := bikeID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "bikes.detail", trace.WithAttributes(attribute.Int64("bike.id", id)))
	defer span.End()

	bike, err := h.catalog.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	basket, err := h.catalog.Basket(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.BikeDetailResponse{
		Bike:   dto.NewBikeResponse(bike),
		Basket: dto.NewBasketResponse(basket),
	}).Build()
}

func (h *Handler) placeOrder(c echo.Context) error {
	b := response.New(c)

	id, err := bikeID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var form orderForm
	if err := c.Bind(&form); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "bikes.placeOrder", trace.WithAttributes(attribute.Int64("bike.id", id)))
	defer span.End()

	placed, err := h.orders.Place(ctx, id, order.PlaceOrderInput{
		Name:        form.Name,
		Surname:     form.Surname,
		PhoneNumber: form.PhoneNumber,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	span.SetAttributes(attribute.Int64("order.id", placed.ID))

	return b.WithRedirect(fmt.Sprintf("/order/%d/", placed.ID)).Build()
}

func bikeID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}
