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

type pgReservationRepository struct {
	db *sql.DB
}

func NewPgReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &pgReservationRepository{db: db}
}

const reservationColumns = `id, spot_id, user_id, vehicle_number, parking_timestamp, leaving_timestamp, cost_per_hour, created_at`

func scanReservation(row interface{ Scan(...any) error }, res *domain.Reservation) error {
	if err := row.Scan(&res.ID, &res.SpotID, &res.UserID, &res.VehicleNumber,
		&res.ParkingTimestamp, &res.LeavingTimestamp, &res.CostPerHour, &res.CreatedAt); err != nil {
		return err
	}
	res.ParkingTimestamp = res.ParkingTimestamp.In(time.UTC)
	res.CreatedAt = res.CreatedAt.In(time.UTC)
	if res.LeavingTimestamp.Valid {
		res.LeavingTimestamp.Time = res.LeavingTimestamp.Time.In(time.UTC)
	}
	return nil
}

func (r *pgReservationRepository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.Create (begin tx): %w", err)
	}
	defer tx.Rollback()

	// Claim the spot first; losing the race leaves nothing to roll back.
	claim := `UPDATE parking_spots
	           SET status = $1, customer_id = $2, vehicle_number = $3, entry_date = $4,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = $5 AND status = $6`
	result, err := tx.ExecContext(ctx, claim,
		domain.StatusOccupied,
		fmt.Sprintf("USER%d", res.UserID),
		res.VehicleNumber,
		res.ParkingTimestamp,
		res.SpotID,
		domain.StatusAvailable,
	)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.Create (claiming spot): %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.Create (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return nil, repository.ErrSpotConflict
	}

	query := `INSERT INTO reservations (spot_id, user_id, vehicle_number, parking_timestamp, cost_per_hour)
	           VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, query,
		res.SpotID, res.UserID, res.VehicleNumber, res.ParkingTimestamp, res.CostPerHour,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.Create: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("ReservationRepository.Create (commit): %w", err)
	}
	res.CreatedAt = res.CreatedAt.In(time.UTC)
	return res, nil
}

func (r *pgReservationRepository) FindByID(ctx context.Context, id int) (*domain.Reservation, error) {
	res := &domain.Reservation{}
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	if err := scanReservation(r.db.QueryRowContext(ctx, query, id), res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReservationRepository.FindByID: %w", err)
	}
	return res, nil
}

func (r *pgReservationRepository) FindByUserID(ctx context.Context, userID int) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = $1 ORDER BY parking_timestamp DESC`
	return r.queryList(ctx, query, userID)
}

func (r *pgReservationRepository) FindAll(ctx context.Context) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY parking_timestamp DESC`
	return r.queryList(ctx, query)
}

func (r *pgReservationRepository) queryList(ctx context.Context, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository (listing): %w", err)
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, fmt.Errorf("ReservationRepository (scanning row): %w", err)
		}
		reservations = append(reservations, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ReservationRepository (rows error): %w", err)
	}
	return reservations, nil
}

func (r *pgReservationRepository) Close(ctx context.Context, id int, leavingTime time.Time) (*domain.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.Close (begin tx): %w", err)
	}
	defer tx.Rollback()

	res := &domain.Reservation{}
	query := `UPDATE reservations SET leaving_timestamp = $1
	           WHERE id = $2 AND leaving_timestamp IS NULL
	           RETURNING ` + reservationColumns
	if err = scanReservation(tx.QueryRowContext(ctx, query, leavingTime, id), res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Distinguish missing from already released.
			var exists bool
			if checkErr := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM reservations WHERE id = $1)`, id,
			).Scan(&exists); checkErr != nil {
				return nil, fmt.Errorf("ReservationRepository.Close (existence check): %w", checkErr)
			}
			if !exists {
				return nil, repository.ErrNotFound
			}
			return nil, repository.ErrReservationClosed
		}
		return nil, fmt.Errorf("ReservationRepository.Close: %w", err)
	}

	free := `UPDATE parking_spots
	          SET status = $1, customer_id = NULL, vehicle_number = NULL, entry_date = NULL,
	              updated_at = CURRENT_TIMESTAMP
	          WHERE id = $2`
	if _, err = tx.ExecContext(ctx, free, domain.StatusAvailable, res.SpotID); err != nil {
		return nil, fmt.Errorf("ReservationRepository.Close (freeing spot): %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("ReservationRepository.Close (commit): %w", err)
	}
	return res, nil
}
