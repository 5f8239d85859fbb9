package dto

import (
	"time"

	"github.com/Additional-Code/bikeshop/internal/entity"
)

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID          int64         `json:"id"`
	Label       string        `json:"label"`
	BikeID      int64         `json:"bike_id"`
	Bike        *BikeResponse `json:"bike,omitempty"`
	Name        string        `json:"name"`
	Surname     string        `json:"surname"`
	PhoneNumber string        `json:"phone_number"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// NewOrderResponse maps an order and its bike when loaded.
func NewOrderResponse(order *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:          order.ID,
		Label:       order.String(),
		BikeID:      order.BikeID,
		Name:        order.Name,
		Surname:     order.Surname,
		PhoneNumber: order.PhoneNumber,
		Status:      order.Status,
		CreatedAt:   order.CreatedAt,
	}
	if order.Bike != nil {
		bike := NewBikeResponse(order.Bike)
		resp.Bike = &bike
	}
	return resp
}
