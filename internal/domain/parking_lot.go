package domain

import "time"

type ParkingLot struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	PinCode      string    `json:"pinCode"`
	PricePerHour float64   `json:"pricePerHour"`
	TotalSpots   int       `json:"totalSpots"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Populated by the list endpoint, not a column.
	OccupiedSpots int           `json:"occupiedSpots"`
	Spots         []ParkingSpot `json:"spots,omitempty"`
}

type CreateParkingLotDTO struct {
	Name         string  `json:"name" binding:"required,max=100"`
	Address      string  `json:"address" binding:"required"`
	PinCode      string  `json:"pinCode" binding:"required,max=10"`
	PricePerHour float64 `json:"pricePerHour" binding:"required"`
	TotalSpots   int     `json:"totalSpots" binding:"required"`
}

// Pointer fields so absent keys leave the column untouched.
type UpdateParkingLotDTO struct {
	Name         *string  `json:"name"`
	Address      *string  `json:"address"`
	PinCode      *string  `json:"pinCode"`
	PricePerHour *float64 `json:"pricePerHour"`
}
