package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/bikeshop/internal/database"
	"github.com/Additional-Code/bikeshop/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/bikeshop/repository/inventory")

// ErrNotFound is returned when a part row is missing.
var ErrNotFound = errors.New("part not found")

// ErrUnknownPart is returned for part names outside the inventory.
var ErrUnknownPart = errors.New("unknown part")

// Part identifies one of the counted stock tables.
type Part string

const (
	PartFrame  Part = "frame"
	PartSeat   Part = "seat"
	PartTire   Part = "tire"
	PartBasket Part = "basket"
)

// Parts lists every part kind in debit order.
var Parts = []Part{PartSeat, PartTire, PartFrame, PartBasket}

// ParsePart validates a part name.
func ParsePart(name string) (Part, error) {
	switch p := Part(name); p {
	case PartFrame, PartSeat, PartTire, PartBasket:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPart, name)
	}
}

// Table returns the table backing the part.
func (p Part) Table() string {
	return string(p) + "s"
}

func (p Part) model() any {
	switch p {
	case PartFrame:
		return (*entity.Frame)(nil)
	case PartSeat:
		return (*entity.Seat)(nil)
	case PartTire:
		return (*entity.Tire)(nil)
	default:
		return (*entity.Basket)(nil)
	}
}

// Levels is a snapshot of all part stock.
type Levels struct {
	Frames  []entity.Frame
	Seats   []entity.Seat
	Tires   []entity.Tire
	Baskets []entity.Basket
}

// Repository reads and writes part quantities. Transaction-bound copies come from WithTx.
type Repository struct {
	writer bun.IDB
	reader bun.IDB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// WithTx returns a copy whose reads and writes run inside tx.
func (r *Repository) WithTx(tx bun.Tx) *Repository {
	return &Repository{writer: tx, reader: tx}
}

// Quantity reads the current quantity of one part row. Reads go to the writer
// so a debit sequence observes its own earlier writes.
func (r *Repository) Quantity(ctx context.Context, part Part, id int64) (int, error) {
	ctx, span := repoTracer.Start(ctx, "InventoryRepository.Quantity", partAttributes(part, id))
	defer span.End()

	var quantity int
	err := r.writer.NewSelect().
		Model(part.model()).
		Column("quantity").
		Where("id = ?", id).
		Scan(ctx, &quantity)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return 0, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return 0, err
	}
	return quantity, nil
}

// Lock reads the quantity of one part row and holds a row lock on it until
// the surrounding transaction ends. sqlite has no row locks; its immediate
// transactions already exclude other writers, so a plain read is used there.
func (r *Repository) Lock(ctx context.Context, part Part, id int64) (int, error) {
	ctx, span := repoTracer.Start(ctx, "InventoryRepository.Lock", partAttributes(part, id))
	defer span.End()

	var quantity int
	q := r.writer.NewSelect().
		Model(part.model()).
		Column("quantity").
		Where("id = ?", id)
	if r.writer.Dialect().Name() != dialect.SQLite {
		q = q.For("UPDATE")
	}
	err := q.Scan(ctx, &quantity)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return 0, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return 0, err
	}
	return quantity, nil
}

// SetQuantity overwrites the quantity of one part row.
func (r *Repository) SetQuantity(ctx context.Context, part Part, id int64, quantity int) error {
	ctx, span := repoTracer.Start(ctx, "InventoryRepository.SetQuantity", partAttributes(part, id))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model(part.model()).
		Set("quantity = ?", quantity).
		Where("id = ?", id).
		Exec(ctx)
	return r.checkAffected(span, res, err)
}

// Adjust adds delta to the quantity of one part row inside the database.
// Negative deltas debit stock; the result is never clamped.
func (r *Repository) Adjust(ctx context.Context, part Part, id int64, delta int) error {
	ctx, span := repoTracer.Start(ctx, "InventoryRepository.Adjust", partAttributes(part, id))
	span.SetAttributes(attribute.Int("inventory.delta", delta))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model(part.model()).
		Set("quantity = quantity + ?", delta).
		Where("id = ?", id).
		Exec(ctx)
	return r.checkAffected(span, res, err)
}

// FirstBasketID returns the lowest basket id.
func (r *Repository) FirstBasketID(ctx context.Context) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "InventoryRepository.FirstBasketID")
	defer span.End()

	var id int64
	err := r.reader.NewSelect().
		Model((*entity.Basket)(nil)).
		Column("id").
		OrderExpr("id ASC").
		Limit(1).
		Scan(ctx, &id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return 0, err
	}
	return id, nil
}

// Basket loads a basket record by id.
func (r *Repository) Basket(ctx context.Context, id int64) (*entity.Basket, error) {
	ctx, span := repoTracer.Start(ctx, "InventoryRepository.Basket", partAttributes(PartBasket, id))
	defer span.End()

	basket := new(entity.Basket)
	err := r.reader.NewSelect().Model(basket).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return basket, nil
}

// Levels loads every part row ordered by id.
func (r *Repository) Levels(ctx context.Context) (*Levels, error) {
	ctx, span := repoTracer.Start(ctx, "InventoryRepository.Levels")
	defer span.End()

	levels := new(Levels)
	targets := []any{&levels.Frames, &levels.Seats, &levels.Tires, &levels.Baskets}
	for _, target := range targets {
		if err := r.reader.NewSelect().Model(target).OrderExpr("id ASC").Scan(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "select failed")
			return nil, err
		}
	}
	return levels, nil
}

func (r *Repository) checkAffected(span trace.Span, res sql.Result, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		span.RecordError(err)
		return err
	}
	if affected == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}
	return nil
}

func partAttributes(part Part, id int64) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("inventory.part", string(part)),
		attribute.Int64("inventory.id", id),
	)
}
