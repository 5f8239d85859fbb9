package dto

import "github.com/Additional-Code/bikeshop/internal/entity"

// ColoredPartResponse represents a frame or seat stock row.
type ColoredPartResponse struct {
	ID       int64  `json:"id"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
}

// TireResponse represents a tire stock row.
type TireResponse struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
}

// BasketResponse represents the shared basket counter.
type BasketResponse struct {
	ID       int64  `json:"id"`
	Label    string `json:"label"`
	Quantity int    `json:"quantity"`
}

// BikeResponse represents a bike recipe as exposed via transport layers.
type BikeResponse struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	HasBasket   bool                 `json:"has_basket"`
	Basket      string               `json:"basket"`
	Available   bool                 `json:"available"`
	Label       string               `json:"label"`
	Frame       *ColoredPartResponse `json:"frame,omitempty"`
	Seat        *ColoredPartResponse `json:"seat,omitempty"`
	Tire        *TireResponse        `json:"tire,omitempty"`
}

// BikeDetailResponse pairs a bike with the basket it would consume.
type BikeDetailResponse struct {
	Bike   BikeResponse    `json:"bike"`
	Basket *BasketResponse `json:"basket"`
}

// NewBikeResponse maps a bike and whichever parts are loaded.
func NewBikeResponse(bike *entity.Bike) BikeResponse {
	resp := BikeResponse{
		ID:          bike.ID,
		Name:        bike.Name,
		Description: bike.Description,
		HasBasket:   bike.HasBasket,
		Basket:      bike.BasketLabel(),
		Available:   bike.IsAvailable(),
		Label:       bike.String(),
	}
	if bike.Frame != nil {
		resp.Frame = &ColoredPartResponse{ID: bike.Frame.ID, Color: bike.Frame.Color, Quantity: bike.Frame.Quantity}
	}
	if bike.Seat != nil {
		resp.Seat = &ColoredPartResponse{ID: bike.Seat.ID, Color: bike.Seat.Color, Quantity: bike.Seat.Quantity}
	}
	if bike.Tire != nil {
		resp.Tire = &TireResponse{ID: bike.Tire.ID, Type: bike.Tire.Type, Quantity: bike.Tire.Quantity}
	}
	return resp
}

// NewBasketResponse maps a basket, returning nil for nil.
func NewBasketResponse(basket *entity.Basket) *BasketResponse {
	if basket == nil {
		return nil
	}
	return &BasketResponse{ID: basket.ID, Label: basket.String(), Quantity: basket.Quantity}
}
