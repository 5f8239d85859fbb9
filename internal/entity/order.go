package entity

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Order is a placed bike order. Rows are written once and never updated.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID          int64     `bun:",pk,autoincrement" json:"id"`
	BikeID      int64     `bun:"bike_id,notnull" json:"bike_id"`
	Bike        *Bike     `bun:"rel:belongs-to,join:bike_id=id" json:"bike,omitempty"`
	Name        string    `bun:"name,notnull" json:"name"`
	Surname     string    `bun:"surname,notnull" json:"surname"`
	PhoneNumber string    `bun:"phone_number,notnull" json:"phone_number"`
	Status      string    `bun:"status,notnull" json:"status"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (o *Order) String() string {
	if o.Bike == nil {
		return fmt.Sprintf("Order number %d", o.ID)
	}
	return fmt.Sprintf("Order number %d: %s", o.ID, o.Bike)
}
