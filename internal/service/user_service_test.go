package service

import (
	"context"
	"testing"

	"parking_system/internal/domain"
	"parking_system/internal/repository"
	"parking_system/internal/repository/repositorytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserSetActive(t *testing.T) {
	store := repositorytest.NewMemStore()
	auth := newAuthService(store)
	svc := NewUserService(store.UserRepo())
	ctx := context.Background()

	user := registerUser(t, auth, "jane@example.com")

	updated, err := svc.SetActive(ctx, user.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	updated, err = svc.SetActive(ctx, user.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)

	_, err = svc.SetActive(ctx, 999, false)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserDeleteCascadesReservations(t *testing.T) {
	store := repositorytest.NewMemStore()
	auth := newAuthService(store)
	parking := newParkingService(store, nil)
	reservations := newReservationService(store, nil)
	svc := NewUserService(store.UserRepo())
	ctx := context.Background()

	user := registerUser(t, auth, "jane@example.com")
	lot := createLot(t, parking, "Lot A", 5)
	_, err := reservations.Create(ctx, user.ID, domain.CreateReservationDTO{LotID: lot.ID, VehicleNumber: "AAA"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, user.ID))
	assert.Equal(t, 0, store.CountReservations())

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	assert.ErrorIs(t, svc.Delete(ctx, user.ID), repository.ErrNotFound)
}
