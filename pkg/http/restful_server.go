package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"liyu1981.xyz/water-quality-dashboard/pkg/live"
	"liyu1981.xyz/water-quality-dashboard/pkg/monitor"
)

const (
	SessionCookieStationID = "station_id"
	sessionCookieMaxAge    = 30 * 24 * 60 * 60
)

type RestfulServer struct {
	Server           *gin.Engine
	Monitor          *monitor.Monitor
	Pollers          *live.Registry
	RateLimiterStore *monitor.RateLimiterStore
	// Location is the dashboard time zone run dates are shown in. nil means UTC.
	Location     *time.Location
	HistoryLimit int
	PollInterval time.Duration
	VariantName  string
}

func (rs *RestfulServer) CheckStationLimiter(stationID uint) bool {
	if rs.RateLimiterStore == nil {
		return true
	}
	return rs.RateLimiterStore.Allow(stationID)
}

func (rs *RestfulServer) SetLimiter(stationID uint, stationRate float64, stationBurst int) bool {
	if rs.RateLimiterStore == nil {
		return false
	}
	rs.RateLimiterStore.SetLimiter(stationID, rate.Limit(stationRate), stationBurst)
	return true
}

func (rs *RestfulServer) location() *time.Location {
	if rs.Location == nil {
		return time.UTC
	}
	return rs.Location
}

func (rs *RestfulServer) historyLimit() int {
	if rs.HistoryLimit <= 0 {
		return monitor.DefaultHistoryLimit
	}
	return rs.HistoryLimit
}

func (rs *RestfulServer) pollInterval() time.Duration {
	if rs.PollInterval <= 0 {
		return live.DefaultPollInterval
	}
	return rs.PollInterval
}

func parseStationID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (rs *RestfulServer) Setup() {
	rs.Server.SetHTMLTemplate(Templates())

	rs.Server.GET("/healthz", rs.HealthCheck)

	rs.Server.GET("/dashboard", rs.GetDashboard)
	rs.Server.POST("/dashboard", rs.PostDashboard)

	api := rs.Server.Group("/api")
	{
		api.GET("/stations", rs.ListStations)
		api.POST("/stations", rs.PostStation)
	}

	stations := api.Group("/stations/:station_id")
	{
		stations.GET("", rs.GetStation)
		stations.GET("/live", rs.GetLive)
		stations.POST("/start_test", rs.PostStartTest)
		stations.GET("/settings", rs.GetSettings)
		stations.GET("/runs", rs.GetRuns)
		stations.GET("/runs/:run_id", rs.GetRun)
		stations.POST("/limiter", rs.PostLimiter)
	}
}
