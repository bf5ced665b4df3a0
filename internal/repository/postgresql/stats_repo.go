package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"parking_system/internal/domain"
	"parking_system/internal/repository"
)

type pgStatsRepository struct {
	db *sql.DB
}

func NewPgStatsRepository(db *sql.DB) repository.StatsRepository {
	return &pgStatsRepository{db: db}
}

// DashboardCounts returns the raw aggregates; derived fields (available,
// inactive, rate) are the service's job.
func (r *pgStatsRepository) DashboardCounts(ctx context.Context) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{}
	query := `SELECT
	    (SELECT COUNT(*) FROM parking_lots),
	    (SELECT COUNT(*) FROM parking_spots),
	    (SELECT COUNT(*) FROM parking_spots WHERE status = $1),
	    (SELECT COUNT(*) FROM users),
	    (SELECT COUNT(*) FROM users WHERE is_active)`
	err := r.db.QueryRowContext(ctx, query, domain.StatusOccupied).Scan(
		&stats.TotalLots, &stats.TotalSpots, &stats.OccupiedSpots,
		&stats.TotalUsers, &stats.ActiveUsers,
	)
	if err != nil {
		return nil, fmt.Errorf("StatsRepository.DashboardCounts: %w", err)
	}
	return stats, nil
}
