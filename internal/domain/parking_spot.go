package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type SpotStatus string

const (
	StatusAvailable SpotStatus = "available"
	StatusOccupied  SpotStatus = "occupied"
)

// Customer fields are set exactly while the spot is occupied.
type ParkingSpot struct {
	ID            int         `json:"id"`
	LotID         int         `json:"lot_id"`
	Status        SpotStatus  `json:"status"`
	CustomerID    null.String `json:"customer_id"`
	VehicleNumber null.String `json:"vehicle_number"`
	EntryDate     null.Time   `json:"entry_date"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (s *ParkingSpot) Occupied() bool {
	return s.Status == StatusOccupied
}

// ToggleSpotDTO carries optional real customer data for an occupy
// transition. Both fields may be empty; placeholders are derived then.
type ToggleSpotDTO struct {
	CustomerID    string `json:"customerId" binding:"max=20"`
	VehicleNumber string `json:"vehicleNumber" binding:"max=20"`
}

// SpotUpdate is pushed to websocket subscribers after every occupancy change.
type SpotUpdate struct {
	LotID          int        `json:"lot_id"`
	SpotID         int        `json:"spot_id"`
	Status         SpotStatus `json:"status"`
	AvailableSpots int        `json:"available_spots"`
}
