// Package repositorytest provides in-memory implementations of the
// repository interfaces for service and handler tests.
package repositorytest

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"parking_system/internal/domain"
	"parking_system/internal/repository"

	"gopkg.in/guregu/null.v4"
)

type MemStore struct {
	mu           sync.Mutex
	admins       map[int]*domain.Admin
	users        map[int]*domain.User
	lots         map[int]*domain.ParkingLot
	spots        map[int]*domain.ParkingSpot
	reservations map[int]*domain.Reservation
	nextID       int
}

func NewMemStore() *MemStore {
	return &MemStore{
		admins:       make(map[int]*domain.Admin),
		users:        make(map[int]*domain.User),
		lots:         make(map[int]*domain.ParkingLot),
		spots:        make(map[int]*domain.ParkingSpot),
		reservations: make(map[int]*domain.Reservation),
	}
}

func (s *MemStore) next() int {
	s.nextID++
	return s.nextID
}

func (s *MemStore) AdminRepo() repository.AdminRepository { return &memAdminRepo{s} }
func (s *MemStore) UserRepo() repository.UserRepository   { return &memUserRepo{s} }
func (s *MemStore) LotRepo() repository.ParkingLotRepository { return &memLotRepo{s} }
func (s *MemStore) SpotRepo() repository.ParkingSpotRepository { return &memSpotRepo{s} }
func (s *MemStore) ReservationRepo() repository.ReservationRepository {
	return &memReservationRepo{s}
}
func (s *MemStore) StatsRepo() repository.StatsRepository { return &memStatsRepo{s} }

// SpotIDs returns the ids of a lot's spots in creation order. Test helper.
func (s *MemStore) SpotIDs(lotID int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int
	for id, spot := range s.spots {
		if spot.LotID == lotID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

func (s *MemStore) CountReservations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

// --- admins ---

type memAdminRepo struct{ s *MemStore }

func (r *memAdminRepo) Create(_ context.Context, admin *domain.Admin) (*domain.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.admins {
		if a.Email == admin.Email {
			return nil, repository.ErrDuplicateEntry
		}
	}
	admin.ID = r.s.next()
	admin.CreatedAt = time.Now().UTC()
	stored := *admin
	r.s.admins[admin.ID] = &stored
	return admin, nil
}

func (r *memAdminRepo) FindByEmail(_ context.Context, email string) (*domain.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.admins {
		if a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- users ---

type memUserRepo struct{ s *MemStore }

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return nil, repository.ErrDuplicateEntry
		}
	}
	user.ID = r.s.next()
	user.CreatedAt = time.Now().UTC()
	stored := *user
	r.s.users[user.ID] = &stored
	return user, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id int) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []int
	for id := range r.s.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var users []domain.User
	for _, id := range ids {
		users = append(users, *r.s.users[id])
	}
	return users, nil
}

func (r *memUserRepo) SetActive(_ context.Context, id int, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	for resID, res := range r.s.reservations {
		if res.UserID == id {
			delete(r.s.reservations, resID)
		}
	}
	delete(r.s.users, id)
	return nil
}

// --- lots ---

type memLotRepo struct{ s *MemStore }

func (r *memLotRepo) CreateWithSpots(_ context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.lots {
		if l.Name == lot.Name {
			return nil, repository.ErrDuplicateEntry
		}
	}
	lot.ID = r.s.next()
	now := time.Now().UTC()
	lot.CreatedAt = now
	lot.UpdatedAt = now
	stored := *lot
	r.s.lots[lot.ID] = &stored
	for i := 0; i < lot.TotalSpots; i++ {
		id := r.s.next()
		r.s.spots[id] = &domain.ParkingSpot{
			ID:        id,
			LotID:     lot.ID,
			Status:    domain.StatusAvailable,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return lot, nil
}

func (r *memLotRepo) FindByID(_ context.Context, id int) (*domain.ParkingLot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.lots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *l
	return &copied, nil
}

func (r *memLotRepo) FindByName(_ context.Context, name string) (*domain.ParkingLot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.lots {
		if l.Name == name {
			copied := *l
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memLotRepo) FindAll(_ context.Context) ([]domain.ParkingLot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var lots []domain.ParkingLot
	for _, l := range r.s.lots {
		lots = append(lots, *l)
	}
	sort.Slice(lots, func(i, j int) bool { return lots[i].Name < lots[j].Name })
	return lots, nil
}

func (r *memLotRepo) Update(_ context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.lots[lot.ID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, l := range r.s.lots {
		if l.ID != lot.ID && l.Name == lot.Name {
			return nil, repository.ErrDuplicateEntry
		}
	}
	stored.Name = lot.Name
	stored.Address = lot.Address
	stored.PinCode = lot.PinCode
	stored.PricePerHour = lot.PricePerHour
	stored.UpdatedAt = time.Now().UTC()
	copied := *stored
	return &copied, nil
}

func (r *memLotRepo) DeleteCascade(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.lots[id]; !ok {
		return repository.ErrNotFound
	}
	spotIDs := map[int]bool{}
	for spotID, spot := range r.s.spots {
		if spot.LotID != id {
			continue
		}
		if spot.Status == domain.StatusOccupied {
			return repository.ErrSpotsOccupied
		}
		spotIDs[spotID] = true
	}
	for resID, res := range r.s.reservations {
		if spotIDs[res.SpotID] {
			delete(r.s.reservations, resID)
		}
	}
	for spotID := range spotIDs {
		delete(r.s.spots, spotID)
	}
	delete(r.s.lots, id)
	return nil
}

func (r *memLotRepo) ClearAll(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reservations = make(map[int]*domain.Reservation)
	r.s.spots = make(map[int]*domain.ParkingSpot)
	r.s.lots = make(map[int]*domain.ParkingLot)
	return nil
}

// --- spots ---

type memSpotRepo struct{ s *MemStore }

func (r *memSpotRepo) FindByID(_ context.Context, id int) (*domain.ParkingSpot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.spots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *sp
	return &copied, nil
}

func (r *memSpotRepo) FindByLotAndID(_ context.Context, lotID, spotID int) (*domain.ParkingSpot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.spots[spotID]
	if !ok || sp.LotID != lotID {
		return nil, repository.ErrNotFound
	}
	copied := *sp
	return &copied, nil
}

func (r *memSpotRepo) FindByLotID(_ context.Context, lotID int) ([]domain.ParkingSpot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []int
	for id, sp := range r.s.spots {
		if sp.LotID == lotID {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	var spots []domain.ParkingSpot
	for _, id := range ids {
		spots = append(spots, *r.s.spots[id])
	}
	return spots, nil
}

func (r *memSpotRepo) FindFirstAvailableByLotID(_ context.Context, lotID int) (*domain.ParkingSpot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []int
	for id, sp := range r.s.spots {
		if sp.LotID == lotID && sp.Status == domain.StatusAvailable {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, repository.ErrNotFound
	}
	sort.Ints(ids)
	copied := *r.s.spots[ids[0]]
	return &copied, nil
}

func (r *memSpotRepo) CountAvailableByLotID(_ context.Context, lotID int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, sp := range r.s.spots {
		if sp.LotID == lotID && sp.Status == domain.StatusAvailable {
			count++
		}
	}
	return count, nil
}

func (r *memSpotRepo) UpdateStatus(_ context.Context, id int, expected, next domain.SpotStatus, customerID, vehicleNumber string, entryDate *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.spots[id]
	if !ok {
		return repository.ErrNotFound
	}
	if sp.Status != expected {
		return repository.ErrSpotConflict
	}
	sp.Status = next
	sp.CustomerID = null.NewString(customerID, customerID != "")
	sp.VehicleNumber = null.NewString(vehicleNumber, vehicleNumber != "")
	if entryDate != nil {
		sp.EntryDate = null.TimeFrom(*entryDate)
	} else {
		sp.EntryDate = null.Time{}
	}
	sp.UpdatedAt = time.Now().UTC()
	return nil
}

// --- reservations ---

type memReservationRepo struct{ s *MemStore }

func (r *memReservationRepo) Create(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.spots[res.SpotID]
	if !ok || sp.Status != domain.StatusAvailable {
		return nil, repository.ErrSpotConflict
	}
	sp.Status = domain.StatusOccupied
	sp.VehicleNumber = null.StringFrom(res.VehicleNumber)
	sp.CustomerID = null.StringFrom("USER" + strconv.Itoa(res.UserID))
	sp.EntryDate = null.TimeFrom(res.ParkingTimestamp)

	res.ID = r.s.next()
	res.CreatedAt = time.Now().UTC()
	stored := *res
	r.s.reservations[res.ID] = &stored
	return res, nil
}

func (r *memReservationRepo) FindByID(_ context.Context, id int) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *res
	return &copied, nil
}

func (r *memReservationRepo) FindByUserID(_ context.Context, userID int) ([]domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var reservations []domain.Reservation
	for _, res := range r.s.reservations {
		if res.UserID == userID {
			reservations = append(reservations, *res)
		}
	}
	sort.Slice(reservations, func(i, j int) bool { return reservations[i].ID < reservations[j].ID })
	return reservations, nil
}

func (r *memReservationRepo) FindAll(_ context.Context) ([]domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var reservations []domain.Reservation
	for _, res := range r.s.reservations {
		reservations = append(reservations, *res)
	}
	sort.Slice(reservations, func(i, j int) bool { return reservations[i].ID < reservations[j].ID })
	return reservations, nil
}

func (r *memReservationRepo) Close(_ context.Context, id int, leavingTime time.Time) (*domain.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if res.LeavingTimestamp.Valid {
		return nil, repository.ErrReservationClosed
	}
	res.LeavingTimestamp = null.TimeFrom(leavingTime)
	if sp, ok := r.s.spots[res.SpotID]; ok {
		sp.Status = domain.StatusAvailable
		sp.CustomerID = null.String{}
		sp.VehicleNumber = null.String{}
		sp.EntryDate = null.Time{}
	}
	copied := *res
	return &copied, nil
}

// --- stats ---

type memStatsRepo struct{ s *MemStore }

func (r *memStatsRepo) DashboardCounts(_ context.Context) (*domain.DashboardStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stats := &domain.DashboardStats{
		TotalLots:  len(r.s.lots),
		TotalSpots: len(r.s.spots),
		TotalUsers: len(r.s.users),
	}
	for _, sp := range r.s.spots {
		if sp.Status == domain.StatusOccupied {
			stats.OccupiedSpots++
		}
	}
	for _, u := range r.s.users {
		if u.IsActive {
			stats.ActiveUsers++
		}
	}
	return stats, nil
}
