package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"liyu1981.xyz/water-quality-dashboard/pkg/autotest"
	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/live"
	"liyu1981.xyz/water-quality-dashboard/pkg/models"
	"liyu1981.xyz/water-quality-dashboard/pkg/monitor"
)

const (
	MessageInvalidJSON    = "Invalid JSON"
	MessageSaved          = "Saved"
	MessageRateLimited    = "Too many samples for this station, slow down."
	MessageInvalidStation = "Invalid station id"
)

type dashboardPage struct {
	StationID      uint
	Station        *models.Station
	Stations       []models.Station
	Snapshot       live.Snapshot
	Settings       autotest.View
	Runs           []monitor.RunCard
	Variant        string
	PollIntervalMs int64
	Error          string
}

// selectedStation reads the selection from the query, remembering it in the session cookie,
// or falls back to the cookie.
func (rs *RestfulServer) selectedStation(c *gin.Context) uint {
	if raw := c.Query("station_id"); raw != "" {
		id, ok := parseStationID(raw)
		if ok {
			c.SetCookie(SessionCookieStationID, strconv.FormatUint(uint64(id), 10), sessionCookieMaxAge, "/", "", false, true)
		}
		return id
	}
	if raw, err := c.Cookie(SessionCookieStationID); err == nil {
		id, _ := parseStationID(raw)
		return id
	}
	return 0
}

func (rs *RestfulServer) GetDashboard(c *gin.Context) {
	logger := common.GetLoggerWith(common.LoggerNameRestfulServer)

	page := dashboardPage{
		StationID:      rs.selectedStation(c),
		Variant:        rs.VariantName,
		PollIntervalMs: rs.pollInterval().Milliseconds(),
		Settings:       autotest.Defaults(0).View(),
	}

	stations, err := rs.Monitor.Station.ListStations()
	if err != nil {
		logger.Error("Failed to list stations", zap.Error(err))
		page.Error = "DB error: " + err.Error()
	}
	page.Stations = stations

	if page.StationID != 0 {
		rs.fillStation(&page)
	}

	c.HTML(http.StatusOK, dashboardTemplate, page)
}

func (rs *RestfulServer) fillStation(page *dashboardPage) {
	logger := common.GetLoggerWith(common.LoggerNameRestfulServer, zap.Uint("station_id", page.StationID))

	station, err := rs.Monitor.Station.GetStation(page.StationID)
	if err != nil {
		if !errors.Is(err, monitor.ErrStationNotFound) {
			logger.Error("Failed to load station", zap.Error(err))
		}
		page.Error = fmt.Sprintf("Station %d is not registered.", page.StationID)
		return
	}
	page.Station = station

	if rs.Pollers != nil {
		page.Snapshot = rs.Pollers.Ensure(*station).Snapshot()
	}

	if settings, err := rs.Monitor.Settings.GetSettings(station.ID); err != nil {
		logger.Error("Failed to load settings", zap.Error(err))
	} else {
		page.Settings = settings.View()
	}

	runs, err := rs.Monitor.Run.ListRuns(station.ID, rs.historyLimit())
	if err != nil {
		logger.Error("Failed to list runs", zap.Error(err))
		return
	}
	page.Runs = common.Mapper(runs, func(run models.TestRun) monitor.RunCard {
		return monitor.Card(run, rs.location())
	})
}

// PostDashboard serves the three POST uses of the page endpoint: a device uploading a sample
// as JSON, the settings form, and anything else which just renders the page.
func (rs *RestfulServer) PostDashboard(c *gin.Context) {
	if c.Query("station_id") != "" && isJSONContentType(c.GetHeader("Content-Type")) {
		rs.IngestSample(c)
		return
	}
	if c.PostForm("action") == autotest.ActionSave {
		rs.SaveAutoTest(c)
		return
	}
	rs.GetDashboard(c)
}

func isJSONContentType(header string) bool {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || mediaType == "text/json"
}

func (rs *RestfulServer) IngestSample(c *gin.Context) {
	logger := common.GetLoggerWith(
		common.LoggerNameRestfulServer,
		zap.String(common.LoggerFieldCategory, common.LoggerCategorySample),
	)

	stationID, ok := parseStationID(c.Query("station_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": MessageInvalidStation})
		return
	}

	if !rs.CheckStationLimiter(stationID) {
		c.JSON(http.StatusTooManyRequests, gin.H{"success": false, "message": MessageRateLimited})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": MessageInvalidJSON})
		return
	}

	sample, err := decodeSample(body)
	if err != nil {
		logger.Info("Rejected sample", zap.Uint("station_id", stationID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": MessageInvalidJSON})
		return
	}

	if err := rs.Monitor.Sample.IngestSample(stationID, sample); err != nil {
		logger.Error("Failed to store sample", zap.Uint("station_id", stationID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "DB Insert failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": MessageSaved})
}

// decodeSample accepts numbers or numeric strings for values. Every field is optional, a
// missing one is stored as NULL. Anything but a non-empty JSON object is rejected.
func decodeSample(body []byte) (*models.WaterSample, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty sample")
	}

	sample := &models.WaterSample{}
	var err error

	numbers := []struct {
		key string
		dst **float64
	}{
		{"tds_val", &sample.TDSValue},
		{"ph_val", &sample.PHValue},
		{"turbidity_val", &sample.TurbidityValue},
		{"lead_val", &sample.LeadValue},
		{"color_val", &sample.ColorValue},
	}
	for _, n := range numbers {
		if *n.dst, err = numberField(data, n.key); err != nil {
			return nil, err
		}
	}

	texts := []struct {
		key string
		dst **string
	}{
		{"sensorId", &sample.SensorID},
		{"tds_status", &sample.TDSStatus},
		{"ph_status", &sample.PHStatus},
		{"turbidity_status", &sample.TurbidityStatus},
		{"lead_status", &sample.LeadStatus},
		{"color_status", &sample.ColorStatus},
		{"color_result", &sample.ColorResult},
	}
	for _, s := range texts {
		*s.dst = textField(data, s.key)
	}
	if sample.SensorID != nil {
		trimmed := strings.TrimSpace(*sample.SensorID)
		sample.SensorID = &trimmed
	}

	return sample, nil
}

func numberField(data map[string]any, key string) (*float64, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return nil, nil
	}

	var text string
	switch v := raw.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
		if text == "" {
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("%s is not a number", key)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("%s is not a number: %w", key, err)
	}
	return &f, nil
}

func textField(data map[string]any, key string) *string {
	raw, ok := data[key]
	if !ok || raw == nil {
		return nil
	}
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case json.Number:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}
	return &s
}

var saveAutoTestFormSchema = z.Struct(z.Shape{
	"StationID":      z.String().Trim(),
	"Mode":           z.String().Trim(),
	"IntervalHours":  z.String().Trim(),
	"IntervalDays":   z.String().Trim(),
	"IntervalMonths": z.String().Trim(),
	"DayOfMonth":     z.String().Trim(),
	"TimeOfDay":      z.String().Trim(),
	"Enabled":        z.String().Trim(),
})

func (rs *RestfulServer) SaveAutoTest(c *gin.Context) {
	logger := common.GetLoggerWith(
		common.LoggerNameRestfulServer,
		zap.String(common.LoggerFieldCategory, common.LoggerCategorySettings),
	)

	var form autotest.Form
	if errs := saveAutoTestFormSchema.Parse(zhttp.Request(c.Request), &form); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": fmt.Sprintf("validation error: %v", errs)})
		return
	}

	settings, err := form.Validate()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := rs.Monitor.Settings.UpsertSettings(settings); err != nil {
		logger.Error("Failed to save settings", zap.Uint("station_id", settings.StationID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "DB error: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": autotest.MessageSaved})
}
