package service

import (
	"context"
	"testing"

	"parking_system/internal/domain"
	"parking_system/internal/repository/repositorytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardEmpty(t *testing.T) {
	store := repositorytest.NewMemStore()
	svc := NewStatsService(store.StatsRepo())

	stats, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalSpots)
	assert.Equal(t, 0.0, stats.OccupancyRate)
}

func TestDashboardDerivedFields(t *testing.T) {
	store := repositorytest.NewMemStore()
	parking := newParkingService(store, nil)
	auth := newAuthService(store)
	svc := NewStatsService(store.StatsRepo())
	ctx := context.Background()

	lot := createLot(t, parking, "Lot A", 10)
	for _, id := range store.SpotIDs(lot.ID)[:3] {
		_, err := parking.ToggleSpot(ctx, lot.ID, id, domain.ToggleSpotDTO{})
		require.NoError(t, err)
	}

	registerUser(t, auth, "active@example.com")
	inactive := registerUser(t, auth, "inactive@example.com")
	require.NoError(t, store.UserRepo().SetActive(ctx, inactive.ID, false))

	stats, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalLots)
	assert.Equal(t, 10, stats.TotalSpots)
	assert.Equal(t, 3, stats.OccupiedSpots)
	assert.Equal(t, 7, stats.AvailableSpots)
	assert.Equal(t, 30.0, stats.OccupancyRate)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.ActiveUsers)
	assert.Equal(t, 1, stats.InactiveUsers)
}

func TestDashboardRateRounding(t *testing.T) {
	store := repositorytest.NewMemStore()
	parking := newParkingService(store, nil)
	svc := NewStatsService(store.StatsRepo())
	ctx := context.Background()

	lot := createLot(t, parking, "Lot A", 7)
	for _, id := range store.SpotIDs(lot.ID)[:2] {
		_, err := parking.ToggleSpot(ctx, lot.ID, id, domain.ToggleSpotDTO{})
		require.NoError(t, err)
	}

	stats, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	// 2/7 is 28.5714...; the rate keeps two decimals.
	assert.Equal(t, 28.57, stats.OccupancyRate)
}
