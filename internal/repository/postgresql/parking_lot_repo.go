package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parking_system/internal/domain"
	"parking_system/internal/repository"

	"github.com/lib/pq"
)

type pgParkingLotRepository struct {
	db *sql.DB
}

func NewPgParkingLotRepository(db *sql.DB) repository.ParkingLotRepository {
	return &pgParkingLotRepository{db: db}
}

func (r *pgParkingLotRepository) CreateWithSpots(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ParkingLotRepository.CreateWithSpots (begin tx): %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO parking_lots (name, address, pin_code, price_per_hour, total_spots)
	           VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	err = tx.QueryRowContext(ctx, query,
		lot.Name, lot.Address, lot.PinCode, lot.PricePerHour, lot.TotalSpots,
	).Scan(&lot.ID, &lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("%w: parking lot '%s' already exists", repository.ErrDuplicateEntry, lot.Name)
		}
		return nil, fmt.Errorf("ParkingLotRepository.CreateWithSpots: %w", err)
	}

	for i := 0; i < lot.TotalSpots; i++ {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO parking_spots (lot_id, status) VALUES ($1, $2)`,
			lot.ID, domain.StatusAvailable,
		); err != nil {
			return nil, fmt.Errorf("ParkingLotRepository.CreateWithSpots (provisioning spots): %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("ParkingLotRepository.CreateWithSpots (commit): %w", err)
	}
	lot.CreatedAt = lot.CreatedAt.In(time.UTC)
	lot.UpdatedAt = lot.UpdatedAt.In(time.UTC)
	return lot, nil
}

const lotColumns = `id, name, address, pin_code, price_per_hour, total_spots, created_at, updated_at`

func scanLot(row interface{ Scan(...any) error }, lot *domain.ParkingLot) error {
	return row.Scan(&lot.ID, &lot.Name, &lot.Address, &lot.PinCode,
		&lot.PricePerHour, &lot.TotalSpots, &lot.CreatedAt, &lot.UpdatedAt)
}

func (r *pgParkingLotRepository) FindByID(ctx context.Context, id int) (*domain.ParkingLot, error) {
	lot := &domain.ParkingLot{}
	query := `SELECT ` + lotColumns + ` FROM parking_lots WHERE id = $1`
	if err := scanLot(r.db.QueryRowContext(ctx, query, id), lot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingLotRepository.FindByID: %w", err)
	}
	lot.CreatedAt = lot.CreatedAt.In(time.UTC)
	lot.UpdatedAt = lot.UpdatedAt.In(time.UTC)
	return lot, nil
}

func (r *pgParkingLotRepository) FindByName(ctx context.Context, name string) (*domain.ParkingLot, error) {
	lot := &domain.ParkingLot{}
	query := `SELECT ` + lotColumns + ` FROM parking_lots WHERE name = $1`
	if err := scanLot(r.db.QueryRowContext(ctx, query, name), lot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingLotRepository.FindByName: %w", err)
	}
	lot.CreatedAt = lot.CreatedAt.In(time.UTC)
	lot.UpdatedAt = lot.UpdatedAt.In(time.UTC)
	return lot, nil
}

func (r *pgParkingLotRepository) FindAll(ctx context.Context) ([]domain.ParkingLot, error) {
	query := `SELECT ` + lotColumns + ` FROM parking_lots ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ParkingLotRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var lots []domain.ParkingLot
	for rows.Next() {
		var lot domain.ParkingLot
		if err := scanLot(rows, &lot); err != nil {
			return nil, fmt.Errorf("ParkingLotRepository.FindAll (scanning row): %w", err)
		}
		lot.CreatedAt = lot.CreatedAt.In(time.UTC)
		lot.UpdatedAt = lot.UpdatedAt.In(time.UTC)
		lots = append(lots, lot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingLotRepository.FindAll (rows error): %w", err)
	}
	return lots, nil
}

func (r *pgParkingLotRepository) Update(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	query := `UPDATE parking_lots SET name = $1, address = $2, pin_code = $3, price_per_hour = $4,
	           updated_at = CURRENT_TIMESTAMP WHERE id = $5 RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, lot.Name, lot.Address, lot.PinCode, lot.PricePerHour, lot.ID).Scan(&lot.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("%w: parking lot '%s' already exists", repository.ErrDuplicateEntry, lot.Name)
		}
		return nil, fmt.Errorf("ParkingLotRepository.Update: %w", err)
	}
	lot.UpdatedAt = lot.UpdatedAt.In(time.UTC)
	return lot, nil
}

func (r *pgParkingLotRepository) DeleteCascade(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ParkingLotRepository.DeleteCascade (begin tx): %w", err)
	}
	defer tx.Rollback()

	// Occupancy check runs inside the transaction so a concurrent claim
	// cannot slip between check and delete.
	var occupied int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (SELECT status FROM parking_spots WHERE lot_id = $1 FOR UPDATE) s WHERE s.status = $2`,
		id, domain.StatusOccupied,
	).Scan(&occupied)
	if err != nil {
		return fmt.Errorf("ParkingLotRepository.DeleteCascade (occupancy check): %w", err)
	}
	if occupied > 0 {
		return repository.ErrSpotsOccupied
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM reservations WHERE spot_id IN (SELECT id FROM parking_spots WHERE lot_id = $1)`, id,
	); err != nil {
		return fmt.Errorf("ParkingLotRepository.DeleteCascade (reservations): %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM parking_spots WHERE lot_id = $1`, id); err != nil {
		return fmt.Errorf("ParkingLotRepository.DeleteCascade (spots): %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM parking_lots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ParkingLotRepository.DeleteCascade: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingLotRepository.DeleteCascade (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return tx.Commit()
}

func (r *pgParkingLotRepository) ClearAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ParkingLotRepository.ClearAll (begin tx): %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM reservations`,
		`DELETE FROM parking_spots`,
		`DELETE FROM parking_lots`,
	} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ParkingLotRepository.ClearAll: %w", err)
		}
	}
	return tx.Commit()
}
