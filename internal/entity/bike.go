package entity

import "github.com/uptrace/bun"

// Units of each part consumed by a single bike order.
const (
	FramesPerBike  = 1
	SeatsPerBike   = 1
	TiresPerBike   = 2
	BasketsPerBike = 1
)

// Bike is a sellable recipe combining one frame, one seat and one tire type.
type Bike struct {
	bun.BaseModel `bun:"table:bikes,alias:bike"`

	ID          int64  `bun:",pk,autoincrement" json:"id"`
	FrameID     int64  `bun:"frame_id,notnull" json:"frame_id"`
	Frame       *Frame `bun:"rel:belongs-to,join:frame_id=id" json:"frame,omitempty"`
	SeatID      int64  `bun:"seat_id,notnull" json:"seat_id"`
	Seat        *Seat  `bun:"rel:belongs-to,join:seat_id=id" json:"seat,omitempty"`
	TireID      int64  `bun:"tire_id,notnull" json:"tire_id"`
	Tire        *Tire  `bun:"rel:belongs-to,join:tire_id=id" json:"tire,omitempty"`
	Name        string `bun:"name,notnull" json:"name"`
	Description string `bun:"description,notnull" json:"description"`
	HasBasket   bool   `bun:"has_basket,notnull" json:"has_basket"`
}

// IsAvailable reports whether current part stock covers one more bike.
// Basket stock is not considered, even for bikes sold with a basket.
func (b *Bike) IsAvailable() bool {
	if b.Frame == nil || b.Seat == nil || b.Tire == nil {
		return false
	}
	return b.Frame.Quantity >= FramesPerBike &&
		b.Seat.Quantity >= SeatsPerBike &&
		b.Tire.Quantity >= TiresPerBike
}

// BasketLabel renders HasBasket as "yes" or "no".
func (b *Bike) BasketLabel() string {
	if b.HasBasket {
		return "yes"
	}
	return "no"
}

func (b *Bike) String() string {
	if b.HasBasket {
		return b.Name + " (with basket)"
	}
	return b.Name
}
