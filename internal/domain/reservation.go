package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// Reservation links a user to a spot occupancy interval. LeavingTimestamp
// stays null while the reservation is active.
type Reservation struct {
	ID               int       `json:"id"`
	SpotID           int       `json:"spot_id"`
	UserID           int       `json:"user_id"`
	VehicleNumber    string    `json:"vehicle_number"`
	ParkingTimestamp time.Time `json:"parking_timestamp"`
	LeavingTimestamp null.Time `json:"leaving_timestamp"`
	CostPerHour      float64   `json:"cost_per_hour"`
	CreatedAt        time.Time `json:"created_at"`
}

func (r *Reservation) Active() bool {
	return !r.LeavingTimestamp.Valid
}

type CreateReservationDTO struct {
	LotID         int    `json:"lotId" binding:"required"`
	SpotID        *int   `json:"spotId"`
	VehicleNumber string `json:"vehicleNumber" binding:"required,max=20"`
}
