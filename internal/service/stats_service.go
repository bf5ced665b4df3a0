package service

import (
	"context"
	"math"

	"parking_system/internal/domain"
	"parking_system/internal/repository"
)

type StatsService struct {
	statsRepo repository.StatsRepository
}

func NewStatsService(statsRepo repository.StatsRepository) *StatsService {
	return &StatsService{statsRepo: statsRepo}
}

// Dashboard recomputes the aggregates on every call.
func (s *StatsService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	stats, err := s.statsRepo.DashboardCounts(ctx)
	if err != nil {
		return nil, err
	}

	stats.AvailableSpots = stats.TotalSpots - stats.OccupiedSpots
	stats.InactiveUsers = stats.TotalUsers - stats.ActiveUsers
	if stats.TotalSpots > 0 {
		rate := float64(stats.OccupiedSpots) / float64(stats.TotalSpots) * 100
		stats.OccupancyRate = math.Round(rate*100) / 100
	}
	return stats, nil
}
