package service

import (
	"context"
	"testing"
	"time"

	"parking_system/internal/domain"
	"parking_system/internal/repository"
	"parking_system/internal/repository/repositorytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReservationService(store *repositorytest.MemStore, notifier Notifier) *ReservationService {
	return NewReservationService(store.LotRepo(), store.SpotRepo(), store.ReservationRepo(), notifier)
}

func TestCreateReservationSpecificSpot(t *testing.T) {
	store := repositorytest.NewMemStore()
	parking := newParkingService(store, nil)
	svc := newReservationService(store, nil)
	ctx := context.Background()

	lot := createLot(t, parking, "Lot A", 5)
	spotID := store.SpotIDs(lot.ID)[2]

	res, err := svc.Create(ctx, 7, domain.CreateReservationDTO{
		LotID:         lot.ID,
		SpotID:        &spotID,
		VehicleNumber: "KA01XY1234",
	})
	require.NoError(t, err)
	assert.Equal(t, spotID, res.SpotID)
	assert.Equal(t, 7, res.UserID)
	assert.Equal(t, lot.PricePerHour, res.CostPerHour)
	assert.True(t, res.Active())

	spot, err := store.SpotRepo().FindByID(ctx, spotID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOccupied, spot.Status)
	assert.Equal(t, "KA01XY1234", spot.VehicleNumber.String)
}

func TestCreateReservationAutoAssign(t *testing.T) {
	store := repositorytest.NewMemStore()
	parking := newParkingService(store, nil)
	svc := newReservationService(store, nil)
	ctx := context.Background()

	lot := createLot(t, parking, "Lot A", 5)
	first := store.SpotIDs(lot.ID)[0]

	res, err := svc.Create(ctx, 7, domain.CreateReservationDTO{
		LotID:         lot.ID,
		VehicleNumber: "KA01XY1234",
	})
	require.NoError(t, err)
	assert.Equal(t, first, res.SpotID)
}

func TestCreateReservationOccupiedSpot(t *testing.T) {
	store := repositorytest.NewMemStore()
	parking := newParkingService(store, nil)
	svc := newReservationService(store, nil)
	ctx := context.Background()

	lot := createLot(t, parking, "Lot A", 5)
	spotID := store.SpotIDs(lot.ID)[0]
	_, err := parking.ToggleSpot(ctx, lot.ID, spotID, domain.ToggleSpotDTO{})
	require.NoError(t, err)

	_, err = svc.Create(ctx, 7, domain.CreateReservationDTO{
		LotID:         lot.ID,
		SpotID:        &spotID,
		VehicleNumber: "KA01XY1234",
	})
	assert.ErrorIs(t, err, ErrSpotUnavailable)
}

func TestReservationClaimLostRace(t *testing.T) {
	store := repositorytest.NewMemStore()
	parking := newParkingService(store, nil)
	ctx := context.Background()

	lot := createLot(t, parking, "Lot A", 5)
	spotID := store.SpotIDs(lot.ID)[0]
	_, err := parking.ToggleSpot(ctx, lot.ID, spotID, domain.ToggleSpotDTO{})
	require.NoError(t, err)

	// The claim itself refuses once the spot is no longer available.
	_, err = store.ReservationRepo().Create(ctx, &domain.Reservation{
		SpotID:           spotID,
		UserID:           7,
		VehicleNumber:    "KA01XY1234",
		ParkingTimestamp: time.Now().UTC(),
		CostPerHour:      lot.PricePerHour,
	})
	assert.ErrorIs(t, err, repository.ErrSpotConflict)
	assert.Equal(t, 0, store.CountReservations())

	// Through the service with a stale available read, the lost race comes
	// back as a spot-unavailable conflict and no reservation row appears.
	staleSvc := NewReservationService(store.LotRepo(), &staleSpotRepo{store.SpotRepo()},
		store.ReservationRepo(), nil)
	_, err = staleSvc.Create(ctx, 7, domain.CreateReservationDTO{
		LotID:         lot.ID,
		SpotID:        &spotID,
		VehicleNumber: "KA01XY1234",
	})
	assert.ErrorIs(t, err, ErrSpotUnavailable)
	assert.Equal(t, 0, store.CountReservations())
}

func TestCreateReservationLotFull(t *testing.T) {
	store := repositorytest.NewMemStore()
	parking := newParkingService(store, nil)
	svc := newReservationService(store, nil)
	ctx := context.Background()

	lot := createLot(t, parking, "Lot A", 5)
	for _, id := range store.SpotIDs(lot.ID) {
		_, err := parking.ToggleSpot(ctx, lot.ID, id, domain.ToggleSpotDTO{})
		require.NoError(t, err)
	}

	_, err := svc.Create(ctx, 7, domain.CreateReservationDTO{
		LotID:         lot.ID,
		VehicleNumber: "KA01XY1234",
	})
	assert.ErrorIs(t, err, ErrNoFreeSpots)
}

func TestCreateReservationUnknownLot(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := newReservationService(store, nil)

	_, err := svc.Create(context.Background(), 7, domain.CreateReservationDTO{
		LotID:         42,
		VehicleNumber: "KA01XY1234",
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReleaseReservation(t *testing.T) {
	store := repositorytest.NewMemStore()
	parking := newParkingService(store, nil)
	svc := newReservationService(store, nil)
	ctx := context.Background()

	lot := createLot(t, parking, "Lot A", 5)
	res, err := svc.Create(ctx, 7, domain.CreateReservationDTO{LotID: lot.ID, VehicleNumber: "KA01XY1234"})
	require.NoError(t, err)

	closed, err := svc.Release(ctx, res.ID, 7, domain.RoleUser)
	require.NoError(t, err)
	assert.False(t, closed.Active())
	assert.True(t, closed.LeavingTimestamp.Valid)

	spot, err := store.SpotRepo().FindByID(ctx, res.SpotID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, spot.Status)
	assert.False(t, spot.VehicleNumber.Valid)

	// Releasing twice is a conflict, not a silent no-op.
	_, err = svc.Release(ctx, res.ID, 7, domain.RoleUser)
	assert.ErrorIs(t, err, repository.ErrReservationClosed)
}

func TestReleaseReservationOwnership(t *testing.T) {
	store := repositorytest.NewMemStore()
	parking := newParkingService(store, nil)
	svc := newReservationService(store, nil)
	ctx := context.Background()

	lot := createLot(t, parking, "Lot A", 5)
	res, err := svc.Create(ctx, 7, domain.CreateReservationDTO{LotID: lot.ID, VehicleNumber: "KA01XY1234"})
	require.NoError(t, err)

	_, err = svc.Release(ctx, res.ID, 8, domain.RoleUser)
	assert.ErrorIs(t, err, ErrNotReservationOwner)

	// Admins may release anyone's reservation.
	_, err = svc.Release(ctx, res.ID, 1, domain.RoleAdmin)
	require.NoError(t, err)
}

func TestListReservationsScoping(t *testing.T) {
	store := repositorytest.NewMemStore()
	parking := newParkingService(store, nil)
	svc := newReservationService(store, nil)
	ctx := context.Background()

	lot := createLot(t, parking, "Lot A", 5)
	_, err := svc.Create(ctx, 7, domain.CreateReservationDTO{LotID: lot.ID, VehicleNumber: "AAA"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 8, domain.CreateReservationDTO{LotID: lot.ID, VehicleNumber: "BBB"})
	require.NoError(t, err)

	mine, err := svc.List(ctx, 7, domain.RoleUser)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 7, mine[0].UserID)

	all, err := svc.List(ctx, 1, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReservationBroadcasts(t *testing.T) {
	store := repositorytest.NewMemStore()
	parking := newParkingService(store, nil)
	notifier := &captureNotifier{}
	svc := newReservationService(store, notifier)
	ctx := context.Background()

	lot := createLot(t, parking, "Lot A", 5)
	res, err := svc.Create(ctx, 7, domain.CreateReservationDTO{LotID: lot.ID, VehicleNumber: "AAA"})
	require.NoError(t, err)
	_, err = svc.Release(ctx, res.ID, 7, domain.RoleUser)
	require.NoError(t, err)

	require.Len(t, notifier.updates, 2)
	assert.Equal(t, domain.StatusOccupied, notifier.updates[0].Status)
	assert.Equal(t, 4, notifier.updates[0].AvailableSpots)
	assert.Equal(t, domain.StatusAvailable, notifier.updates[1].Status)
	assert.Equal(t, 5, notifier.updates[1].AvailableSpots)
	assert.Equal(t, lot.ID, notifier.updates[1].LotID)
}
