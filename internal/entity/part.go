package entity

import "github.com/uptrace/bun"

// Frame is the stock of one frame color.
type Frame struct {
	bun.BaseModel `bun:"table:frames,alias:frame"`

	ID       int64  `bun:",pk,autoincrement" json:"id"`
	Color    string `bun:"color,notnull" json:"color"`
	Quantity int    `bun:"quantity,notnull" json:"quantity"`
}

func (f *Frame) String() string { return f.Color }

// Seat is the stock of one seat color.
type Seat struct {
	bun.BaseModel `bun:"table:seats,alias:seat"`

	ID       int64  `bun:",pk,autoincrement" json:"id"`
	Color    string `bun:"color,notnull" json:"color"`
	Quantity int    `bun:"quantity,notnull" json:"quantity"`
}

func (s *Seat) String() string { return s.Color }

// Tire is the stock of one tire type. A bike consumes two per order.
type Tire struct {
	bun.BaseModel `bun:"table:tires,alias:tire"`

	ID       int64  `bun:",pk,autoincrement" json:"id"`
	Type     string `bun:"type,notnull" json:"type"`
	Quantity int    `bun:"quantity,notnull" json:"quantity"`
}

func (t *Tire) String() string { return t.Type }

// Basket is the shared basket counter debited by bikes sold with a basket.
type Basket struct {
	bun.BaseModel `bun:"table:baskets,alias:basket"`

	ID       int64 `bun:",pk,autoincrement" json:"id"`
	Quantity int   `bun:"quantity,notnull" json:"quantity"`
}

func (b *Basket) String() string { return "Bike basket" }
