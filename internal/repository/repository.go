package repository

import (
	"context"
	"errors"
	"time"

	"parking_system/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")
var ErrSpotsOccupied = errors.New("lot has occupied spots")
var ErrSpotConflict = errors.New("spot status changed concurrently")
var ErrReservationClosed = errors.New("reservation already released")

type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) (*domain.Admin, error)
	FindByEmail(ctx context.Context, email string) (*domain.Admin, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	SetActive(ctx context.Context, id int, active bool) error
	// Delete removes the user and every reservation referencing them in one
	// transaction.
	Delete(ctx context.Context, id int) error
}

type ParkingLotRepository interface {
	// CreateWithSpots inserts the lot and provisions exactly lot.TotalSpots
	// available spot rows in one transaction.
	CreateWithSpots(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingLot, error)
	FindByName(ctx context.Context, name string) (*domain.ParkingLot, error)
	FindAll(ctx context.Context) ([]domain.ParkingLot, error)
	Update(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)
	// DeleteCascade deletes the lot, its spots and their reservations in one
	// transaction. Returns ErrSpotsOccupied when any child spot is occupied.
	DeleteCascade(ctx context.Context, id int) error
	// ClearAll wipes reservations, spots and lots.
	ClearAll(ctx context.Context) error
}

type ParkingSpotRepository interface {
	FindByID(ctx context.Context, id int) (*domain.ParkingSpot, error)
	FindByLotAndID(ctx context.Context, lotID, spotID int) (*domain.ParkingSpot, error)
	FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSpot, error)
	FindFirstAvailableByLotID(ctx context.Context, lotID int) (*domain.ParkingSpot, error)
	CountAvailableByLotID(ctx context.Context, lotID int) (int, error)
	// UpdateStatus flips the row only while its status still equals expected;
	// a lost race returns ErrSpotConflict. Customer fields are written on
	// occupy and cleared on release.
	UpdateStatus(ctx context.Context, id int, expected, next domain.SpotStatus, customerID, vehicleNumber string, entryDate *time.Time) error
}

type ReservationRepository interface {
	// Create claims the spot (available -> occupied, customer fields stamped)
	// and inserts the reservation row in one transaction. A spot that is not
	// available yields ErrSpotConflict.
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	FindByID(ctx context.Context, id int) (*domain.Reservation, error)
	FindByUserID(ctx context.Context, userID int) ([]domain.Reservation, error)
	FindAll(ctx context.Context) ([]domain.Reservation, error)
	// Close stamps leaving_timestamp and frees the spot in one transaction.
	// An already-released reservation yields ErrReservationClosed.
	Close(ctx context.Context, id int, leavingTime time.Time) (*domain.Reservation, error)
}

type StatsRepository interface {
	DashboardCounts(ctx context.Context) (*domain.DashboardStats, error)
}
