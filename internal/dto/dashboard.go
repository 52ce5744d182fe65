package dto

import (
	"github.com/ykurohata/workorder-api/internal/analytics"
)

// DashboardResponse bundles every metric the admin analytics view shows
type DashboardResponse struct {
	StatusCounts     analytics.StatusCounts       `json:"status_counts"`
	OverdueCount     int                          `json:"overdue_count"`
	UpcomingCount    int                          `json:"upcoming_count"`
	CycleTimeAvg     float64                      `json:"cycle_time_avg"`
	OnTimePercentage float64                      `json:"on_time_percentage"`
	Throughput       []analytics.ThroughputPoint  `json:"throughput"`
	HeatmapArea      []analytics.HeatmapEntry     `json:"heatmap_area"`
	HeatmapMachine   []analytics.HeatmapEntry     `json:"heatmap_machine"`
	Leaderboard      []analytics.LeaderboardEntry `json:"leaderboard"`
	Bottlenecks      []analytics.AreaCount        `json:"bottlenecks"`
}
