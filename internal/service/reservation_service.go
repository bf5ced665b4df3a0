package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parking_system/internal/domain"
	"parking_system/internal/repository"

	"github.com/sirupsen/logrus"
)

var ErrSpotUnavailable = errors.New("spot is not available")
var ErrNoFreeSpots = errors.New("no available spots in this lot")
var ErrNotReservationOwner = errors.New("reservation belongs to another user")

type ReservationService struct {
	lotRepo         repository.ParkingLotRepository
	spotRepo        repository.ParkingSpotRepository
	reservationRepo repository.ReservationRepository
	notifier        Notifier
}

func NewReservationService(lotRepo repository.ParkingLotRepository, spotRepo repository.ParkingSpotRepository, reservationRepo repository.ReservationRepository, notifier Notifier) *ReservationService {
	return &ReservationService{
		lotRepo:         lotRepo,
		spotRepo:        spotRepo,
		reservationRepo: reservationRepo,
		notifier:        notifier,
	}
}

// Create claims a spot for the user and opens a reservation at the lot's
// current hourly price. When dto.SpotID is nil the first available spot of
// the lot is taken.
func (s *ReservationService) Create(ctx context.Context, userID int, dto domain.CreateReservationDTO) (*domain.Reservation, error) {
	lot, err := s.lotRepo.FindByID(ctx, dto.LotID)
	if err != nil {
		return nil, err
	}

	var spot *domain.ParkingSpot
	if dto.SpotID != nil {
		spot, err = s.spotRepo.FindByLotAndID(ctx, lot.ID, *dto.SpotID)
		if err != nil {
			return nil, err
		}
		if spot.Occupied() {
			return nil, ErrSpotUnavailable
		}
	} else {
		spot, err = s.spotRepo.FindFirstAvailableByLotID(ctx, lot.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNoFreeSpots
			}
			return nil, err
		}
	}

	res := &domain.Reservation{
		SpotID:           spot.ID,
		UserID:           userID,
		VehicleNumber:    dto.VehicleNumber,
		ParkingTimestamp: time.Now().UTC(),
		CostPerHour:      lot.PricePerHour,
	}
	created, err := s.reservationRepo.Create(ctx, res)
	if err != nil {
		if errors.Is(err, repository.ErrSpotConflict) {
			return nil, ErrSpotUnavailable
		}
		return nil, fmt.Errorf("creating reservation: %w", err)
	}

	s.notifyReservation(ctx, spot.LotID, spot.ID, domain.StatusOccupied)
	logrus.WithFields(logrus.Fields{"reservation_id": created.ID, "spot_id": spot.ID, "user_id": userID}).
		Info("reservation created")
	return created, nil
}

// Release closes the reservation and frees its spot. Only the owning user
// or an admin may release.
func (s *ReservationService) Release(ctx context.Context, id, callerID int, callerRole string) (*domain.Reservation, error) {
	res, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerRole != domain.RoleAdmin && res.UserID != callerID {
		return nil, ErrNotReservationOwner
	}

	closed, err := s.reservationRepo.Close(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.notifyReservation(ctx, 0, closed.SpotID, domain.StatusAvailable)
	logrus.WithFields(logrus.Fields{"reservation_id": id, "spot_id": closed.SpotID}).
		Info("reservation released")
	return closed, nil
}

// List returns everything for admins and only the caller's rows otherwise.
func (s *ReservationService) List(ctx context.Context, callerID int, callerRole string) ([]domain.Reservation, error) {
	if callerRole == domain.RoleAdmin {
		return s.reservationRepo.FindAll(ctx)
	}
	return s.reservationRepo.FindByUserID(ctx, callerID)
}

func (s *ReservationService) notifyReservation(ctx context.Context, lotID, spotID int, status domain.SpotStatus) {
	if s.notifier == nil {
		return
	}
	if lotID == 0 {
		spot, err := s.spotRepo.FindByID(ctx, spotID)
		if err != nil {
			logrus.WithError(err).Warn("could not load spot for broadcast")
			return
		}
		lotID = spot.LotID
	}
	available, err := s.spotRepo.CountAvailableByLotID(ctx, lotID)
	if err != nil {
		logrus.WithError(err).Warn("could not count available spots for broadcast")
		return
	}
	s.notifier.BroadcastSpotUpdate(domain.SpotUpdate{
		LotID:          lotID,
		SpotID:         spotID,
		Status:         status,
		AvailableSpots: available,
	})
}
