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

type pgAdminRepository struct {
	db *sql.DB
}

func NewPgAdminRepository(db *sql.DB) repository.AdminRepository {
	return &pgAdminRepository{db: db}
}

func (r *pgAdminRepository) Create(ctx context.Context, admin *domain.Admin) (*domain.Admin, error) {
	query := `INSERT INTO admins (email, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, admin.Email, admin.PasswordHash).Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, fmt.Errorf("%w: admin '%s'", repository.ErrDuplicateEntry, admin.Email)
		}
		return nil, fmt.Errorf("AdminRepository.Create: %w", err)
	}
	admin.CreatedAt = admin.CreatedAt.In(time.UTC)
	return admin, nil
}

func (r *pgAdminRepository) FindByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	admin := &domain.Admin{}
	query := `SELECT id, email, password_hash, created_at FROM admins WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("AdminRepository.FindByEmail: %w", err)
	}
	admin.CreatedAt = admin.CreatedAt.In(time.UTC)
	return admin, nil
}
