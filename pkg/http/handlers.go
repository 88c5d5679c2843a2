package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/device"
	"liyu1981.xyz/water-quality-dashboard/pkg/live"
	"liyu1981.xyz/water-quality-dashboard/pkg/models"
	"liyu1981.xyz/water-quality-dashboard/pkg/monitor"
)

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// stationFromParam resolves :station_id, writing the error response itself when it fails.
func (rs *RestfulServer) stationFromParam(c *gin.Context) (*models.Station, bool) {
	stationID, ok := parseStationID(c.Param("station_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid station id"})
		return nil, false
	}

	station, err := rs.Monitor.Station.GetStation(stationID)
	if err != nil {
		if errors.Is(err, monitor.ErrStationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, false
	}
	return station, true
}

func (rs *RestfulServer) ListStations(c *gin.Context) {
	stations, err := rs.Monitor.Station.ListStations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if stations == nil {
		stations = []models.Station{}
	}
	c.JSON(http.StatusOK, stations)
}

type StationRequest struct {
	ID             int    `json:"station_id" zog:"station_id"`
	Name           string `json:"name" zog:"name"`
	Location       string `json:"location" zog:"location"`
	DeviceSensorID string `json:"device_sensor_id" zog:"device_sensor_id"`
	DeviceBaseURL  string `json:"device_base_url" zog:"device_base_url"`
}

var stationRequestSchema = z.Struct(z.Shape{
	"ID":             z.Int().GTE(0),
	"Name":           z.String().Trim().Min(1).Required(),
	"Location":       z.String().Trim(),
	"DeviceSensorID": z.String().Trim(),
	"DeviceBaseURL":  z.String().Trim().URL(),
})

func (rs *RestfulServer) PostStation(c *gin.Context) {
	var req StationRequest
	if err := stationRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("validation error: %v", err)})
		return
	}

	station := models.Station{
		ID:             uint(req.ID),
		Name:           req.Name,
		Location:       req.Location,
		DeviceSensorID: req.DeviceSensorID,
		DeviceBaseURL:  req.DeviceBaseURL,
	}
	if err := rs.Monitor.Station.UpsertStation(&station); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, station)
}

func (rs *RestfulServer) GetStation(c *gin.Context) {
	station, ok := rs.stationFromParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, station)
}

func (rs *RestfulServer) poller(c *gin.Context) (*live.Poller, bool) {
	station, ok := rs.stationFromParam(c)
	if !ok {
		return nil, false
	}
	if rs.Pollers == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live polling is disabled"})
		return nil, false
	}
	return rs.Pollers.Ensure(*station), true
}

func (rs *RestfulServer) GetLive(c *gin.Context) {
	p, ok := rs.poller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p.Snapshot())
}

type StartTestResponse struct {
	device.TestResult
	Snapshot live.Snapshot `json:"snapshot"`
}

// PostStartTest always answers 200, the outcome of the device call is in the body.
func (rs *RestfulServer) PostStartTest(c *gin.Context) {
	p, ok := rs.poller(c)
	if !ok {
		return
	}

	logger := common.GetLoggerWith(
		common.LoggerNameRestfulServer,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryTest),
	)

	res := p.StartTest(c.Request.Context())
	logger.Info("Start test requested", zap.Uint("station_id", p.StationID()), zap.String("outcome", string(res.Outcome)))

	c.JSON(http.StatusOK, StartTestResponse{TestResult: res, Snapshot: p.Snapshot()})
}

func (rs *RestfulServer) GetSettings(c *gin.Context) {
	station, ok := rs.stationFromParam(c)
	if !ok {
		return
	}

	settings, err := rs.Monitor.Settings.GetSettings(station.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings.View())
}

func (rs *RestfulServer) GetRuns(c *gin.Context) {
	station, ok := rs.stationFromParam(c)
	if !ok {
		return
	}

	runs, err := rs.Monitor.Run.ListRuns(station.ID, rs.historyLimit())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	runs = monitor.FilterByDate(runs, c.Query("date"), rs.location())
	cards := common.Mapper(runs, func(run models.TestRun) monitor.RunCard {
		return monitor.Card(run, rs.location())
	})
	if cards == nil {
		cards = []monitor.RunCard{}
	}
	c.JSON(http.StatusOK, cards)
}

func (rs *RestfulServer) GetRun(c *gin.Context) {
	station, ok := rs.stationFromParam(c)
	if !ok {
		return
	}

	runID, err := strconv.ParseUint(c.Param("run_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	sample, err := rs.Monitor.Sample.GetSample(station.ID, uint(runID))
	if err != nil {
		if errors.Is(err, monitor.ErrSampleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, sample)
}

type LimiterRequest struct {
	Rate  float64 `json:"rate" zog:"rate"`
	Burst int     `json:"burst" zog:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"Rate":  z.Float64().Required(),
	"Burst": z.Int().Required(),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	stationID, ok := parseStationID(c.Param("station_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid station id"})
		return
	}

	var req LimiterRequest
	if err := limiterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("validation error: %v", err)})
		return
	}

	if !rs.SetLimiter(stationID, req.Rate, req.Burst) {
		c.JSON(http.StatusOK, gin.H{"status": "limiter disabled, no effect"})
		return
	}

	c.Status(http.StatusOK)
}
