package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parking_system/internal/domain"
	"parking_system/internal/repository"
)

type pgParkingSpotRepository struct {
	db *sql.DB
}

func NewPgParkingSpotRepository(db *sql.DB) repository.ParkingSpotRepository {
	return &pgParkingSpotRepository{db: db}
}

const spotColumns = `id, lot_id, status, customer_id, vehicle_number, entry_date, created_at, updated_at`

func scanSpot(row interface{ Scan(...any) error }, spot *domain.ParkingSpot) error {
	if err := row.Scan(&spot.ID, &spot.LotID, &spot.Status, &spot.CustomerID,
		&spot.VehicleNumber, &spot.EntryDate, &spot.CreatedAt, &spot.UpdatedAt); err != nil {
		return err
	}
	spot.CreatedAt = spot.CreatedAt.In(time.UTC)
	spot.UpdatedAt = spot.UpdatedAt.In(time.UTC)
	if spot.EntryDate.Valid {
		spot.EntryDate.Time = spot.EntryDate.Time.In(time.UTC)
	}
	return nil
}

func (r *pgParkingSpotRepository) FindByID(ctx context.Context, id int) (*domain.ParkingSpot, error) {
	spot := &domain.ParkingSpot{}
	query := `SELECT ` + spotColumns + ` FROM parking_spots WHERE id = $1`
	if err := scanSpot(r.db.QueryRowContext(ctx, query, id), spot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSpotRepository.FindByID: %w", err)
	}
	return spot, nil
}

func (r *pgParkingSpotRepository) FindByLotAndID(ctx context.Context, lotID, spotID int) (*domain.ParkingSpot, error) {
	spot := &domain.ParkingSpot{}
	query := `SELECT ` + spotColumns + ` FROM parking_spots WHERE lot_id = $1 AND id = $2`
	if err := scanSpot(r.db.QueryRowContext(ctx, query, lotID, spotID), spot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSpotRepository.FindByLotAndID: %w", err)
	}
	return spot, nil
}

func (r *pgParkingSpotRepository) FindByLotID(ctx context.Context, lotID int) ([]domain.ParkingSpot, error) {
	query := `SELECT ` + spotColumns + ` FROM parking_spots WHERE lot_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("ParkingSpotRepository.FindByLotID: %w", err)
	}
	defer rows.Close()

	var spots []domain.ParkingSpot
	for rows.Next() {
		var spot domain.ParkingSpot
		if err := scanSpot(rows, &spot); err != nil {
			return nil, fmt.Errorf("ParkingSpotRepository.FindByLotID (scanning row): %w", err)
		}
		spots = append(spots, spot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSpotRepository.FindByLotID (rows error): %w", err)
	}
	return spots, nil
}

func (r *pgParkingSpotRepository) FindFirstAvailableByLotID(ctx context.Context, lotID int) (*domain.ParkingSpot, error) {
	spot := &domain.ParkingSpot{}
	query := `SELECT ` + spotColumns + ` FROM parking_spots
	           WHERE lot_id = $1 AND status = $2 ORDER BY id ASC LIMIT 1`
	if err := scanSpot(r.db.QueryRowContext(ctx, query, lotID, domain.StatusAvailable), spot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSpotRepository.FindFirstAvailableByLotID: %w", err)
	}
	return spot, nil
}

func (r *pgParkingSpotRepository) CountAvailableByLotID(ctx context.Context, lotID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM parking_spots WHERE lot_id = $1 AND status = $2`
	if err := r.db.QueryRowContext(ctx, query, lotID, domain.StatusAvailable).Scan(&count); err != nil {
		return 0, fmt.Errorf("ParkingSpotRepository.CountAvailableByLotID: %w", err)
	}
	return count, nil
}

func (r *pgParkingSpotRepository) UpdateStatus(ctx context.Context, id int, expected, next domain.SpotStatus, customerID, vehicleNumber string, entryDate *time.Time) error {
	query := `UPDATE parking_spots
	           SET status = $1, customer_id = $2, vehicle_number = $3, entry_date = $4,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = $5 AND status = $6`
	var entry sql.NullTime
	if entryDate != nil {
		entry = sql.NullTime{Time: *entryDate, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		next,
		sql.NullString{String: customerID, Valid: customerID != ""},
		sql.NullString{String: vehicleNumber, Valid: vehicleNumber != ""},
		entry, id, expected,
	)
	if err != nil {
		return fmt.Errorf("ParkingSpotRepository.UpdateStatus: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSpotRepository.UpdateStatus (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		// Either the spot is gone or another writer flipped it first.
		if _, findErr := r.FindByID(ctx, id); errors.Is(findErr, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return repository.ErrSpotConflict
	}
	return nil
}
