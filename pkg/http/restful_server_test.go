package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/time/rate"

	"liyu1981.xyz/water-quality-dashboard/pkg/monitor/mocks"
	_ "liyu1981.xyz/water-quality-dashboard/pkg/testing"

	"liyu1981.xyz/water-quality-dashboard/pkg/autotest"
	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/db"
	"liyu1981.xyz/water-quality-dashboard/pkg/devicesim"
	"liyu1981.xyz/water-quality-dashboard/pkg/gauge"
	"liyu1981.xyz/water-quality-dashboard/pkg/live"
	"liyu1981.xyz/water-quality-dashboard/pkg/models"
	"liyu1981.xyz/water-quality-dashboard/pkg/monitor"
)

func setupTestServer(t *testing.T) *RestfulServer {
	mon := (&monitor.Monitor{
		Db: *db.GetInstance(db.UseMemorySqliteDialector()),
	}).WithDefaultServices()

	pollers := live.NewRegistry(live.RegistryOpts{
		Variant:       gauge.Classic(),
		Interval:      time.Hour,
		DeviceTimeout: time.Second,
	})
	t.Cleanup(pollers.Close)

	rs := &RestfulServer{
		Server:      gin.Default(),
		Monitor:     mon,
		Pollers:     pollers,
		VariantName: gauge.VariantClassic,
		// default we use no limiter, if need, later assign it rs.RateLimiterStore = monitor.NewRateLimiterStore(...)
	}

	rs.Setup()

	return rs
}

func seedStation(t *testing.T, rs *RestfulServer, deviceBaseURL string) *models.Station {
	station := &models.Station{Name: "station-" + uuid.NewString(), DeviceBaseURL: deviceBaseURL}
	require.NoError(t, rs.Monitor.Station.UpsertStation(station))
	return station
}

func stationPath(station *models.Station, suffix string) string {
	return fmt.Sprintf("/api/stations/%d%s", station.ID, suffix)
}

func postSample(rs *RestfulServer, stationID uint, contentType string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", fmt.Sprintf("/dashboard?station_id=%d", stationID), strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	return w
}

func postSettings(rs *RestfulServer, values url.Values) *httptest.ResponseRecorder {
	values.Set("action", autotest.ActionSave)
	req := httptest.NewRequest("POST", "/dashboard", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	return w
}

func countSamples(t *testing.T, rs *RestfulServer, stationID uint) int64 {
	var count int64
	require.NoError(t, rs.Monitor.Db.Conn.Model(&models.WaterSample{}).Where("station_id = ?", stationID).Count(&count).Error)
	return count
}

func TestHealthCheck(t *testing.T) {
	rs := setupTestServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestDashboardRemembersStation(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)
	station := seedStation(t, rs, "http://127.0.0.1:1")

	req := httptest.NewRequest("GET", fmt.Sprintf("/dashboard?station_id=%d", station.ID), nil)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), station.Name)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieStationID, cookies[0].Name)
	assert.Equal(t, fmt.Sprint(station.ID), cookies[0].Value)

	// later visits without the query parameter use the session
	req = httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), station.Name)
	assert.Contains(t, w.Body.String(), `id="gauge-tds"`)

	_, running := rs.Pollers.Get(station.ID)
	assert.True(t, running)
}

func TestDashboardWithoutStation(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)

	req := httptest.NewRequest("GET", "/dashboard", nil)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No station selected")
}

func TestIngestSample(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)
	station := seedStation(t, rs, "")

	w := postSample(rs, station.ID, "application/json", `{"tds_val": 512.4, "ph_val": "7.10", "tds_status": "Safe", "color_result": "Clear"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Saved"}`, w.Body.String())

	var saved models.WaterSample
	require.NoError(t, rs.Monitor.Db.Conn.Where("station_id = ?", station.ID).First(&saved).Error)
	assert.Nil(t, saved.SensorID)
	require.NotNil(t, saved.TDSValue)
	assert.Equal(t, 512.4, *saved.TDSValue)
	require.NotNil(t, saved.PHValue)
	assert.Equal(t, 7.1, *saved.PHValue)
	assert.Nil(t, saved.LeadValue)
	assert.Equal(t, "Clear", *saved.ColorResult)

	w = postSample(rs, station.ID, "text/json; charset=utf-8", `{"sensorId": " WQ-7 "}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), countSamples(t, rs, station.ID))
}

func TestIngestSample_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)
	station := seedStation(t, rs, "")

	for _, body := range []string{`{}`, `not json`, `[1,2]`, `null`, `{"tds_val": "abc"}`, `{"tds_val": true}`} {
		w := postSample(rs, station.ID, "application/json", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `{"success":false,"message":"Invalid JSON"}`, w.Body.String(), body)
	}

	// a non JSON post never reaches ingestion
	w := postSample(rs, station.ID, "text/plain", `{"tds_val": 1}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, int64(0), countSamples(t, rs, station.ID))

	// unknown station fails the foreign key
	w = postSample(rs, 999999, "application/json", `{"tds_val": 1}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "DB Insert failed: ")

	w = postSample(rs, 0, "application/json", `{"tds_val": 1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestSampleDBFailure(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockISample := mocks.NewMockISample(ctrl)
	rs.Monitor.Sample = mockISample
	mockISample.EXPECT().
		IngestSample(gomock.Eq(uint(12)), gomock.Any()).
		Return(fmt.Errorf("just causing error")).
		Times(1)

	w := postSample(rs, 12, "application/json", `{"tds_val": 1}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"DB Insert failed: just causing error"}`, w.Body.String())
}

func TestIngestSampleRateLimited(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)
	rs.RateLimiterStore = monitor.NewRateLimiterStore(rate.Limit(0.001), 1)
	station := seedStation(t, rs, "")

	w := postSample(rs, station.ID, "application/json", `{"tds_val": 1}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = postSample(rs, station.ID, "application/json", `{"tds_val": 1}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// raising the limit through the API lets the station through again
	body, _ := json.Marshal(LimiterRequest{Rate: 100, Burst: 10})
	req := httptest.NewRequest("POST", stationPath(station, "/limiter"), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	lw := httptest.NewRecorder()
	rs.Server.ServeHTTP(lw, req)
	assert.Equal(t, http.StatusOK, lw.Code)

	w = postSample(rs, station.ID, "application/json", `{"tds_val": 1}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSaveAutoTest(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)
	station := seedStation(t, rs, "")

	values := url.Values{
		"station_id":      {fmt.Sprint(station.ID)},
		"mode":            {"monthly"},
		"enabled":         {"1"},
		"interval_hours":  {""},
		"interval_days":   {""},
		"interval_months": {"2"},
		"day_of_month":    {"15"},
		"time_of_day":     {"08:30"},
	}

	for i := 0; i < 2; i++ {
		w := postSettings(rs, values)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"message":"Settings saved successfully."}`, w.Body.String())
	}

	var count int64
	require.NoError(t, rs.Monitor.Db.Conn.Model(&models.AutoTestSettings{}).Where("station_id = ?", station.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	req := httptest.NewRequest("GET", stationPath(station, "/settings"), nil)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var view autotest.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, models.ModeMonthly, view.Mode)
	assert.Equal(t, 2, view.IntervalMonths)
	assert.Equal(t, 15, view.DayOfMonth)
	assert.Equal(t, "08:30", view.MonthlyTime)
	assert.True(t, view.Enabled)

	// the page shows what was saved
	req = httptest.NewRequest("GET", fmt.Sprintf("/dashboard?station_id=%d", station.ID), nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `<option value="monthly" selected>`)
	assert.Contains(t, w.Body.String(), `id="monthlyTime" type="time" value="08:30"`)
}

func TestSaveAutoTest_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	{
		rs := setupTestServer(t)
		w := postSettings(rs, url.Values{"mode": {"hourly"}, "interval_hours": {"1"}, "enabled": {"1"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"No station id provided."}`, w.Body.String())
	}

	{
		rs := setupTestServer(t)
		station := seedStation(t, rs, "")
		w := postSettings(rs, url.Values{
			"station_id":      {fmt.Sprint(station.ID)},
			"mode":            {"monthly"},
			"enabled":         {"1"},
			"interval_months": {"1"},
			"time_of_day":     {"08:00"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"Please fill out all required fields for the selected automatic mode."}`, w.Body.String())
	}

	{
		rs := setupTestServer(t)
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		mockISettings := mocks.NewMockISettings(ctrl)
		rs.Monitor.Settings = mockISettings
		mockISettings.EXPECT().
			UpsertSettings(gomock.Any()).
			Return(fmt.Errorf("just causing error")).
			Times(1)

		w := postSettings(rs, url.Values{"station_id": {"3"}, "mode": {"hourly"}, "interval_hours": {"1"}, "enabled": {"1"}})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"success":false,"message":"DB error: just causing error"}`, w.Body.String())
	}
}

func TestRuns(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)
	station := seedStation(t, rs, "")

	base := time.Date(2026, 4, 1, 2, 0, 0, 0, time.UTC)
	for _, ts := range []time.Time{base, base.Add(24 * time.Hour), base.Add(48 * time.Hour)} {
		require.NoError(t, rs.Monitor.Sample.IngestSample(station.ID, &models.WaterSample{Timestamp: ts}))
	}

	req := httptest.NewRequest("GET", stationPath(station, "/runs"), nil)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var cards []monitor.RunCard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cards))
	require.Len(t, cards, 3)
	assert.Equal(t, "2026-04-03", cards[0].Date)
	assert.Equal(t, "02:00 AM", cards[0].Time)

	req = httptest.NewRequest("GET", stationPath(station, "/runs?date=2026-04-02"), nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "2026-04-02", cards[0].Date)

	req = httptest.NewRequest("GET", stationPath(station, fmt.Sprintf("/runs/%d", cards[0].ID)), nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", stationPath(station, "/runs/999999"), nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// the dashboard time zone decides which day a run belongs to
	rs.Location = time.FixedZone("UTC+8", 8*60*60)
	req = httptest.NewRequest("GET", stationPath(station, "/runs?date=2026-04-01"), nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "10:00 AM", cards[0].Time)
}

func TestRunsListError(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)
	station := seedStation(t, rs, "")

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockIRun := mocks.NewMockIRun(ctrl)
	rs.Monitor.Run = mockIRun
	mockIRun.EXPECT().
		ListRuns(gomock.Eq(station.ID), gomock.Eq(monitor.DefaultHistoryLimit)).
		Return(nil, fmt.Errorf("just causing error")).
		Times(1)

	req := httptest.NewRequest("GET", stationPath(station, "/runs"), nil)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStations(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)

	name := "station-" + uuid.NewString()
	body, _ := json.Marshal(StationRequest{Name: name, Location: "Ilagan", DeviceBaseURL: "http://10.0.0.8"})
	req := httptest.NewRequest("POST", "/api/stations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var created models.Station
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, name, created.Name)

	req = httptest.NewRequest("GET", stationPath(&created, ""), nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/api/stations", nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), name)

	req = httptest.NewRequest("GET", "/api/stations/777777", nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest("GET", "/api/stations/abc", nil)
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// name is required
	req = httptest.NewRequest("POST", "/api/stations", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLiveAndStartTest(t *testing.T) {
	common.SetTestLoggerNop()

	sim := devicesim.New(devicesim.Options{SensorID: "WQ-HTTP", TestDuration: time.Minute, Seed: 3})
	sim.SetSample(devicesim.Sample{SensorID: "WQ-HTTP", TDS: 512.4, PH: 7, Turbidity: 1, Lead: 0.001, Color: 2, ColorResult: "Clear"})
	device := httptest.NewServer(sim.Handler())
	defer device.Close()

	rs := setupTestServer(t)
	station := seedStation(t, rs, device.URL)

	getLive := func() live.Snapshot {
		req := httptest.NewRequest("GET", stationPath(station, "/live"), nil)
		w := httptest.NewRecorder()
		rs.Server.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		var snap live.Snapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		return snap
	}

	require.Eventually(t, func() bool { return getLive().State == live.StateOnline }, 2*time.Second, 10*time.Millisecond)
	snap := getLive()
	require.Len(t, snap.Gauges, 5)
	assert.Equal(t, "512.40", snap.Gauges[0].Text)
	assert.Equal(t, gauge.ClassSafe, snap.Gauges[0].StatusClass)
	assert.InDelta(t, gauge.MapValueToRotation(512.4, 0, 1000, -120, 120), snap.Gauges[0].Angle, 1e-9)

	startTest := func() StartTestResponse {
		req := httptest.NewRequest("POST", stationPath(station, "/start_test"), nil)
		w := httptest.NewRecorder()
		rs.Server.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		var res StartTestResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		return res
	}

	res := startTest()
	assert.EqualValues(t, "started", res.Outcome)
	assert.Equal(t, "Test cycle successfully triggered.", res.Message)
	// the device is now running its cycle, the re-poll sees it busy
	assert.Equal(t, live.StateBusy, res.Snapshot.State)
	assert.Equal(t, "Connecting", res.Snapshot.Gauges[0].Status)

	res = startTest()
	assert.EqualValues(t, "busy", res.Outcome)
	assert.Equal(t, "System is currently busy.", res.Message)

	_, tests := sim.Stats()
	assert.Equal(t, 1, tests)
}

func TestLiveUnknownStation(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)

	req := httptest.NewRequest("GET", "/api/stations/555555/live", nil)
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostLimiter_EdgeCases(t *testing.T) {
	common.SetTestLoggerNop()

	rs := setupTestServer(t)

	req := httptest.NewRequest("POST", "/api/stations/1/limiter", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, _ := json.Marshal(LimiterRequest{Rate: 1, Burst: 1})
	req = httptest.NewRequest("POST", "/api/stations/1/limiter", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	rs.Server.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "no effect")
}
