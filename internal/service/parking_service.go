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

var ErrLotNameTaken = errors.New("a parking lot with this name already exists")

// Notifier pushes occupancy changes to connected clients. The websocket
// manager implements it; a nil notifier disables pushes.
type Notifier interface {
	BroadcastSpotUpdate(update domain.SpotUpdate)
}

// LotPolicy bounds the spot count accepted at lot creation.
type LotPolicy struct {
	MinSpots int
	MaxSpots int
}

type ParkingService struct {
	lotRepo  repository.ParkingLotRepository
	spotRepo repository.ParkingSpotRepository
	policy   LotPolicy
	notifier Notifier
}

func NewParkingService(lotRepo repository.ParkingLotRepository, spotRepo repository.ParkingSpotRepository, policy LotPolicy, notifier Notifier) *ParkingService {
	return &ParkingService{
		lotRepo:  lotRepo,
		spotRepo: spotRepo,
		policy:   policy,
		notifier: notifier,
	}
}

// ValidationError marks client mistakes so handlers can answer 400 instead
// of 500.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (s *ParkingService) CreateLot(ctx context.Context, dto domain.CreateParkingLotDTO) (*domain.ParkingLot, error) {
	if dto.PricePerHour <= 0 {
		return nil, validationErrorf("pricePerHour must be greater than zero")
	}
	if dto.TotalSpots < s.policy.MinSpots || dto.TotalSpots > s.policy.MaxSpots {
		return nil, validationErrorf("totalSpots must be between %d and %d", s.policy.MinSpots, s.policy.MaxSpots)
	}

	_, err := s.lotRepo.FindByName(ctx, dto.Name)
	if err == nil {
		return nil, ErrLotNameTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking for existing lot: %w", err)
	}

	lot := &domain.ParkingLot{
		Name:         dto.Name,
		Address:      dto.Address,
		PinCode:      dto.PinCode,
		PricePerHour: dto.PricePerHour,
		TotalSpots:   dto.TotalSpots,
	}
	created, err := s.lotRepo.CreateWithSpots(ctx, lot)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrLotNameTaken
		}
		return nil, fmt.Errorf("creating lot: %w", err)
	}
	logrus.WithFields(logrus.Fields{"lot_id": created.ID, "total_spots": created.TotalSpots}).
		Info("parking lot created")
	return created, nil
}

func (s *ParkingService) GetLot(ctx context.Context, id int) (*domain.ParkingLot, error) {
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachSpots(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// ListLots returns every lot with nested spots and the occupied count.
func (s *ParkingService) ListLots(ctx context.Context) ([]domain.ParkingLot, error) {
	lots, err := s.lotRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range lots {
		if err := s.attachSpots(ctx, &lots[i]); err != nil {
			return nil, err
		}
	}
	return lots, nil
}

func (s *ParkingService) attachSpots(ctx context.Context, lot *domain.ParkingLot) error {
	spots, err := s.spotRepo.FindByLotID(ctx, lot.ID)
	if err != nil {
		return fmt.Errorf("loading spots for lot %d: %w", lot.ID, err)
	}
	lot.Spots = spots
	lot.OccupiedSpots = 0
	for i := range spots {
		if spots[i].Occupied() {
			lot.OccupiedSpots++
		}
	}
	return nil
}

func (s *ParkingService) UpdateLot(ctx context.Context, id int, dto domain.UpdateParkingLotDTO) (*domain.ParkingLot, error) {
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != lot.Name {
		existing, err := s.lotRepo.FindByName(ctx, *dto.Name)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("checking for existing lot: %w", err)
		}
		if existing != nil && existing.ID != id {
			return nil, ErrLotNameTaken
		}
		lot.Name = *dto.Name
	}
	if dto.Address != nil {
		lot.Address = *dto.Address
	}
	if dto.PinCode != nil {
		lot.PinCode = *dto.PinCode
	}
	if dto.PricePerHour != nil {
		if *dto.PricePerHour <= 0 {
			return nil, validationErrorf("pricePerHour must be greater than zero")
		}
		lot.PricePerHour = *dto.PricePerHour
	}

	updated, err := s.lotRepo.Update(ctx, lot)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrLotNameTaken
		}
		return nil, err
	}
	return updated, nil
}

func (s *ParkingService) DeleteLot(ctx context.Context, id int) error {
	if err := s.lotRepo.DeleteCascade(ctx, id); err != nil {
		return err
	}
	logrus.WithField("lot_id", id).Info("parking lot deleted")
	return nil
}

// ClearAll wipes every reservation, spot and lot. Administrative reset,
// no confirmation step.
func (s *ParkingService) ClearAll(ctx context.Context) error {
	if err := s.lotRepo.ClearAll(ctx); err != nil {
		return err
	}
	logrus.Warn("all parking data cleared")
	return nil
}

// ToggleSpot flips a spot between available and occupied. Occupying stamps
// customer fields from dto when given, otherwise derived placeholders;
// releasing clears them. The flip is optimistic: it only commits while the
// status still equals the value read here.
func (s *ParkingService) ToggleSpot(ctx context.Context, lotID, spotID int, dto domain.ToggleSpotDTO) (*domain.ParkingSpot, error) {
	spot, err := s.spotRepo.FindByLotAndID(ctx, lotID, spotID)
	if err != nil {
		return nil, err
	}

	if spot.Occupied() {
		err = s.spotRepo.UpdateStatus(ctx, spot.ID, domain.StatusOccupied, domain.StatusAvailable, "", "", nil)
	} else {
		customerID := dto.CustomerID
		if customerID == "" {
			customerID = fmt.Sprintf("CUST%d", spot.ID)
		}
		vehicleNumber := dto.VehicleNumber
		if vehicleNumber == "" {
			vehicleNumber = fmt.Sprintf("MH12AB%d", 1000+spot.ID)
		}
		now := time.Now().UTC()
		err = s.spotRepo.UpdateStatus(ctx, spot.ID, domain.StatusAvailable, domain.StatusOccupied, customerID, vehicleNumber, &now)
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.spotRepo.FindByID(ctx, spot.ID)
	if err != nil {
		return nil, err
	}
	s.notifySpot(ctx, updated)
	return updated, nil
}

func (s *ParkingService) notifySpot(ctx context.Context, spot *domain.ParkingSpot) {
	if s.notifier == nil {
		return
	}
	available, err := s.spotRepo.CountAvailableByLotID(ctx, spot.LotID)
	if err != nil {
		logrus.WithError(err).Warn("could not count available spots for broadcast")
		return
	}
	s.notifier.BroadcastSpotUpdate(domain.SpotUpdate{
		LotID:          spot.LotID,
		SpotID:         spot.ID,
		Status:         spot.Status,
		AvailableSpots: available,
	})
}
