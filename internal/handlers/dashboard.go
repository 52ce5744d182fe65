package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ykurohata/workorder-api/internal/analytics"
	"github.com/ykurohata/workorder-api/internal/dto"
	apierrors "github.com/ykurohata/workorder-api/internal/errors"
	"github.com/ykurohata/workorder-api/internal/logging"
	"go.uber.org/zap"
)

const (
	defaultUpcomingDays     = 3
	defaultThroughputDays   = 7
	defaultLeaderboardLimit = 5
	defaultBottleneckTop    = 3
	maxWindowDays           = 365
	maxListLimit            = 100
)

// DashboardHandler serves the admin analytics bundle.
type DashboardHandler struct {
	aggregator *analytics.Aggregator
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(aggregator *analytics.Aggregator) *DashboardHandler {
	return &DashboardHandler{
		aggregator: aggregator,
	}
}

// GetDashboard computes every metric the admin analytics view shows.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	upcomingDays := intQuery(c, "upcoming_days", defaultUpcomingDays, maxWindowDays)
	throughputDays := intQuery(c, "throughput_days", defaultThroughputDays, maxWindowDays)
	leaderboardLimit := intQuery(c, "leaderboard_limit", defaultLeaderboardLimit, maxListLimit)
	bottleneckTop := intQuery(c, "bottleneck_top", defaultBottleneckTop, maxListLimit)

	var resp dto.DashboardResponse
	var err error

	if resp.StatusCounts, err = h.aggregator.GetStatusCounts(); err != nil {
		respondDashboardError(c, err)
		return
	}
	if resp.OverdueCount, err = h.aggregator.GetOverdueCount(); err != nil {
		respondDashboardError(c, err)
		return
	}
	if resp.UpcomingCount, err = h.aggregator.GetUpcomingCount(upcomingDays); err != nil {
		respondDashboardError(c, err)
		return
	}
	if resp.CycleTimeAvg, err = h.aggregator.GetCycleTimeAvg(); err != nil {
		respondDashboardError(c, err)
		return
	}
	if resp.OnTimePercentage, err = h.aggregator.GetOnTimePercentage(); err != nil {
		respondDashboardError(c, err)
		return
	}
	if resp.Throughput, err = h.aggregator.GetTaskThroughput(throughputDays); err != nil {
		respondDashboardError(c, err)
		return
	}
	if resp.HeatmapArea, resp.HeatmapMachine, err = h.aggregator.GetHeatmapData(); err != nil {
		respondDashboardError(c, err)
		return
	}
	if resp.Leaderboard, err = h.aggregator.GetLeaderboard(leaderboardLimit); err != nil {
		respondDashboardError(c, err)
		return
	}
	if resp.Bottlenecks, err = h.aggregator.GetBottleneckTopAreas(bottleneckTop); err != nil {
		respondDashboardError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// intQuery reads a positive integer query parameter, falling back to
// the default on anything unparsable and clamping to the cap.
func intQuery(c *gin.Context, name string, fallback, max int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func respondDashboardError(c *gin.Context, err error) {
	logging.L().Error("failed to compute dashboard", zap.Error(err))
	apierrors.InternalError(c, "Failed to compute analytics")
}
