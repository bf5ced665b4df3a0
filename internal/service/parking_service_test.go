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

type captureNotifier struct {
	updates []domain.SpotUpdate
}

func (n *captureNotifier) BroadcastSpotUpdate(update domain.SpotUpdate) {
	n.updates = append(n.updates, update)
}

func newParkingService(store *repositorytest.MemStore, notifier Notifier) *ParkingService {
	policy := LotPolicy{MinSpots: 5, MaxSpots: 50}
	return NewParkingService(store.LotRepo(), store.SpotRepo(), policy, notifier)
}

func createLot(t *testing.T, svc *ParkingService, name string, spots int) *domain.ParkingLot {
	t.Helper()
	lot, err := svc.CreateLot(context.Background(), domain.CreateParkingLotDTO{
		Name:         name,
		Address:      "1 Main St",
		PinCode:      "400001",
		PricePerHour: 20,
		TotalSpots:   spots,
	})
	require.NoError(t, err)
	return lot
}

func TestCreateLotProvisionsSpots(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := newParkingService(store, nil)

	lot := createLot(t, svc, "Central Lot", 10)

	got, err := svc.GetLot(context.Background(), lot.ID)
	require.NoError(t, err)
	assert.Len(t, got.Spots, 10)
	assert.Equal(t, 0, got.OccupiedSpots)
	for _, spot := range got.Spots {
		assert.Equal(t, domain.StatusAvailable, spot.Status)
		assert.False(t, spot.CustomerID.Valid)
	}
}

func TestCreateLotValidation(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := newParkingService(store, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		dto  domain.CreateParkingLotDTO
	}{
		{"zero price", domain.CreateParkingLotDTO{Name: "A", Address: "x", PinCode: "1", PricePerHour: 0, TotalSpots: 10}},
		{"negative price", domain.CreateParkingLotDTO{Name: "A", Address: "x", PinCode: "1", PricePerHour: -5, TotalSpots: 10}},
		{"too few spots", domain.CreateParkingLotDTO{Name: "A", Address: "x", PinCode: "1", PricePerHour: 20, TotalSpots: 4}},
		{"too many spots", domain.CreateParkingLotDTO{Name: "A", Address: "x", PinCode: "1", PricePerHour: 20, TotalSpots: 51}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateLot(ctx, tc.dto)
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestCreateLotDuplicateName(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := newParkingService(store, nil)

	createLot(t, svc, "Central Lot", 5)
	_, err := svc.CreateLot(context.Background(), domain.CreateParkingLotDTO{
		Name:         "Central Lot",
		Address:      "other",
		PinCode:      "400002",
		PricePerHour: 10,
		TotalSpots:   5,
	})
	assert.ErrorIs(t, err, ErrLotNameTaken)
}

func TestUpdateLotNameUniqueness(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := newParkingService(store, nil)
	ctx := context.Background()

	lotA := createLot(t, svc, "Lot A", 5)
	lotB := createLot(t, svc, "Lot B", 5)

	taken := "Lot A"
	_, err := svc.UpdateLot(ctx, lotB.ID, domain.UpdateParkingLotDTO{Name: &taken})
	assert.ErrorIs(t, err, ErrLotNameTaken)

	// Re-submitting a lot's own name must not trip the uniqueness check.
	own := "Lot A"
	price := 35.0
	updated, err := svc.UpdateLot(ctx, lotA.ID, domain.UpdateParkingLotDTO{Name: &own, PricePerHour: &price})
	require.NoError(t, err)
	assert.Equal(t, "Lot A", updated.Name)
	assert.Equal(t, 35.0, updated.PricePerHour)
}

func TestUpdateLotPartial(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := newParkingService(store, nil)
	ctx := context.Background()

	lot := createLot(t, svc, "Lot A", 5)

	addr := "2 Side St"
	updated, err := svc.UpdateLot(ctx, lot.ID, domain.UpdateParkingLotDTO{Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, "2 Side St", updated.Address)
	assert.Equal(t, "Lot A", updated.Name)
	assert.Equal(t, lot.PricePerHour, updated.PricePerHour)
}

func TestUpdateLotNotFound(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := newParkingService(store, nil)

	name := "ghost"
	_, err := svc.UpdateLot(context.Background(), 999, domain.UpdateParkingLotDTO{Name: &name})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestToggleSpotRoundTrip(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := newParkingService(store, nil)
	ctx := context.Background()

	lot := createLot(t, svc, "Lot A", 5)
	spotID := store.SpotIDs(lot.ID)[0]

	occupied, err := svc.ToggleSpot(ctx, lot.ID, spotID, domain.ToggleSpotDTO{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOccupied, occupied.Status)
	assert.True(t, occupied.CustomerID.Valid)
	assert.True(t, occupied.VehicleNumber.Valid)
	assert.True(t, occupied.EntryDate.Valid)

	released, err := svc.ToggleSpot(ctx, lot.ID, spotID, domain.ToggleSpotDTO{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAvailable, released.Status)
	assert.False(t, released.CustomerID.Valid)
	assert.False(t, released.VehicleNumber.Valid)
	assert.False(t, released.EntryDate.Valid)
}

func TestToggleSpotUsesProvidedCustomerData(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := newParkingService(store, nil)

	lot := createLot(t, svc, "Lot A", 5)
	spotID := store.SpotIDs(lot.ID)[0]

	spot, err := svc.ToggleSpot(context.Background(), lot.ID, spotID, domain.ToggleSpotDTO{
		CustomerID:    "walkin-42",
		VehicleNumber: "KA01XY9999",
	})
	require.NoError(t, err)
	assert.Equal(t, "walkin-42", spot.CustomerID.String)
	assert.Equal(t, "KA01XY9999", spot.VehicleNumber.String)
}

func TestToggleSpotUnknown(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := newParkingService(store, nil)

	lot := createLot(t, svc, "Lot A", 5)

	_, err := svc.ToggleSpot(context.Background(), lot.ID, 999, domain.ToggleSpotDTO{})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	// A spot id from another lot must not be reachable through this lot.
	other := createLot(t, svc, "Lot B", 5)
	foreign := store.SpotIDs(other.ID)[0]
	_, err = svc.ToggleSpot(context.Background(), lot.ID, foreign, domain.ToggleSpotDTO{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestToggleSpotBroadcasts(t *testing.T) {
	store := repositorytest.NewMemStore()
	notifier := &captureNotifier{}
	svc := newParkingService(store, notifier)

	lot := createLot(t, svc, "Lot A", 5)
	spotID := store.SpotIDs(lot.ID)[0]

	_, err := svc.ToggleSpot(context.Background(), lot.ID, spotID, domain.ToggleSpotDTO{})
	require.NoError(t, err)

	require.Len(t, notifier.updates, 1)
	update := notifier.updates[0]
	assert.Equal(t, lot.ID, update.LotID)
	assert.Equal(t, spotID, update.SpotID)
	assert.Equal(t, domain.StatusOccupied, update.Status)
	assert.Equal(t, 4, update.AvailableSpots)
}

// staleSpotRepo reports every lot-scoped spot read as available, simulating
// a caller whose pre-flip read lost a race to a concurrent occupant.
type staleSpotRepo struct {
	repository.ParkingSpotRepository
}

func (r *staleSpotRepo) FindByLotAndID(ctx context.Context, lotID, spotID int) (*domain.ParkingSpot, error) {
	spot, err := r.ParkingSpotRepository.FindByLotAndID(ctx, lotID, spotID)
	if err != nil {
		return nil, err
	}
	spot.Status = domain.StatusAvailable
	return spot, nil
}

func TestToggleLostRaceSurfacesConflict(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := newParkingService(store, nil)
	ctx := context.Background()

	lot := createLot(t, svc, "Lot A", 5)
	spotID := store.SpotIDs(lot.ID)[0]
	_, err := svc.ToggleSpot(ctx, lot.ID, spotID, domain.ToggleSpotDTO{
		CustomerID:    "walkin-1",
		VehicleNumber: "KA01XY0001",
	})
	require.NoError(t, err)

	// A conditional flip built on a stale available read must refuse.
	now := time.Now().UTC()
	err = store.SpotRepo().UpdateStatus(ctx, spotID, domain.StatusAvailable, domain.StatusOccupied, "late", "LATE1", &now)
	assert.ErrorIs(t, err, repository.ErrSpotConflict)

	// The losing write leaves the row untouched.
	spot, err := store.SpotRepo().FindByID(ctx, spotID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOccupied, spot.Status)
	assert.Equal(t, "walkin-1", spot.CustomerID.String)
	assert.Equal(t, "KA01XY0001", spot.VehicleNumber.String)

	// Same outcome through the service when its own read went stale: the
	// race surfaces as a conflict, never as a silent double flip.
	staleSvc := NewParkingService(store.LotRepo(), &staleSpotRepo{store.SpotRepo()},
		LotPolicy{MinSpots: 5, MaxSpots: 50}, nil)
	_, err = staleSvc.ToggleSpot(ctx, lot.ID, spotID, domain.ToggleSpotDTO{})
	assert.ErrorIs(t, err, repository.ErrSpotConflict)

	spot, err = store.SpotRepo().FindByID(ctx, spotID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOccupied, spot.Status)
	assert.Equal(t, "walkin-1", spot.CustomerID.String)
}

func TestDeleteLotWithOccupiedSpot(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := newParkingService(store, nil)
	ctx := context.Background()

	lot := createLot(t, svc, "Lot A", 5)
	spotID := store.SpotIDs(lot.ID)[0]

	_, err := svc.ToggleSpot(ctx, lot.ID, spotID, domain.ToggleSpotDTO{})
	require.NoError(t, err)

	err = svc.DeleteLot(ctx, lot.ID)
	assert.ErrorIs(t, err, repository.ErrSpotsOccupied)

	// The refused delete leaves the lot and all its spots in place.
	got, err := svc.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Len(t, got.Spots, 5)
	assert.Equal(t, 1, got.OccupiedSpots)

	_, err = svc.ToggleSpot(ctx, lot.ID, spotID, domain.ToggleSpotDTO{})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLot(ctx, lot.ID))
	_, err = svc.GetLot(ctx, lot.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, store.SpotIDs(lot.ID))
}

func TestDeleteLotNotFound(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := newParkingService(store, nil)

	err := svc.DeleteLot(context.Background(), 123)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClearAll(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := newParkingService(store, nil)
	ctx := context.Background()

	lot := createLot(t, svc, "Lot A", 5)
	createLot(t, svc, "Lot B", 8)
	_, err := svc.ToggleSpot(ctx, lot.ID, store.SpotIDs(lot.ID)[0], domain.ToggleSpotDTO{})
	require.NoError(t, err)

	require.NoError(t, svc.ClearAll(ctx))

	lots, err := svc.ListLots(ctx)
	require.NoError(t, err)
	assert.Empty(t, lots)
	assert.Empty(t, store.SpotIDs(lot.ID))
}

func TestListLotsOccupiedCount(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := newParkingService(store, nil)
	ctx := context.Background()

	lot := createLot(t, svc, "Lot A", 5)
	spotIDs := store.SpotIDs(lot.ID)
	for _, id := range spotIDs[:2] {
		_, err := svc.ToggleSpot(ctx, lot.ID, id, domain.ToggleSpotDTO{})
		require.NoError(t, err)
	}

	lots, err := svc.ListLots(ctx)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, 2, lots[0].OccupiedSpots)
	assert.Len(t, lots[0].Spots, 5)
}
