package domain

type DashboardStats struct {
	TotalLots      int     `json:"totalLots"`
	TotalSpots     int     `json:"totalSpots"`
	OccupiedSpots  int     `json:"occupiedSpots"`
	AvailableSpots int     `json:"availableSpots"`
	OccupancyRate  float64 `json:"occupancyRate"`
	TotalUsers     int     `json:"totalUsers"`
	ActiveUsers    int     `json:"activeUsers"`
	InactiveUsers  int     `json:"inactiveUsers"`
}
