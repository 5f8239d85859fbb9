package bike

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/bikeshop/internal/database"
	"github.com/Additional-Code/bikeshop/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/bikeshop/repository/bike")

// ErrNotFound is returned when a bike is missing.
var ErrNotFound = errors.New("bike not found")

// Repository reads bike recipes together with their parts.
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

// WithTx returns a copy whose queries run inside tx.
func (r *Repository) WithTx(tx bun.Tx) *Repository {
	return &Repository{writer: tx, reader: tx}
}

// List returns every bike with frame, seat and tire loaded, ordered by id.
func (r *Repository) List(ctx context.Context) ([]entity.Bike, error) {
	ctx, span := repoTracer.Start(ctx, "BikeRepository.List")
	defer span.End()

	var bikes []entity.Bike
	err := r.reader.NewSelect().
		Model(&bikes).
		Relation("Frame").
		Relation("Seat").
		Relation("Tire").
		OrderExpr("bike.id ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("bike.count", len(bikes)))
	return bikes, nil
}

// GetByID fetches a bike and its parts. It reads from the writer so order
// placement sees current stock.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Bike, error) {
	ctx, span := repoTracer.Start(ctx, "BikeRepository.GetByID", trace.WithAttributes(attribute.Int64("bike.id", id)))
	defer span.End()

	bike := new(entity.Bike)
	err := r.writer.NewSelect().
		Model(bike).
		Relation("Frame").
		Relation("Seat").
		Relation("Tire").
		Where("bike.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return bike, nil
}
