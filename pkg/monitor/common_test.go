package monitor

import (
	"bufio"
	"encoding/json"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"liyu1981.xyz/water-quality-dashboard/pkg/db"
	"liyu1981.xyz/water-quality-dashboard/pkg/models"
	"liyu1981.xyz/water-quality-dashboard/pkg/monitor/mocks"
)

type testMocks struct {
	Sample   *mocks.MockISample
	Settings *mocks.MockISettings
	Run      *mocks.MockIRun
	Station  *mocks.MockIStation
}

func GetMockMonitorWithMemorySqliteDialector(t *testing.T, useMockSample, useMockSettings, useMockRun, useMockStation bool) (
	*gomock.Controller,
	*Monitor,
	testMocks,
) {
	ctrl := gomock.NewController(t)

	m := testMocks{
		Sample:   mocks.NewMockISample(ctrl),
		Settings: mocks.NewMockISettings(ctrl),
		Run:      mocks.NewMockIRun(ctrl),
		Station:  mocks.NewMockIStation(ctrl),
	}
	dialector := db.UseMemorySqliteDialector()
	dbInstance := db.GetInstance(dialector) // ensure migrations
	monitorInstance := (&Monitor{Db: *dbInstance}).WithDefaultServices()

	opts := ServiceOpts{}
	if useMockSample {
		opts.Sample = m.Sample
	}
	if useMockSettings {
		opts.Settings = m.Settings
	}
	if useMockRun {
		opts.Run = m.Run
	}
	if useMockStation {
		opts.Station = m.Station
	}
	monitorInstance.WithServices(opts)

	return ctrl, monitorInstance, m
}

// seedStation creates a fresh station so tests sharing the in-memory database never collide.
func seedStation(t *testing.T, m *Monitor) *models.Station {
	station := &models.Station{Name: "station-" + uuid.NewString(), Location: "Ilagan"}
	require.NoError(t, m.Db.Conn.Create(station).Error)
	return station
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}
