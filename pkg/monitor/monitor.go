package monitor

import (
	"errors"

	"liyu1981.xyz/water-quality-dashboard/pkg/autotest"
	"liyu1981.xyz/water-quality-dashboard/pkg/db"
	"liyu1981.xyz/water-quality-dashboard/pkg/models"
)

//go:generate mockgen -source=monitor.go -destination=mocks/monitor_mock.go -package=mocks

const DefaultHistoryLimit = 200

var (
	ErrStationNotFound = errors.New("station not found")
	ErrSampleNotFound  = errors.New("sample not found")
)

type ISample interface {
	IngestSample(stationID uint, input *models.WaterSample) error
	GetSample(stationID uint, sampleID uint) (*models.WaterSample, error)
}

type ISettings interface {
	UpsertSettings(settings autotest.Settings) error
	GetSettings(stationID uint) (autotest.Settings, error)
}

type IRun interface {
	ListRuns(stationID uint, limit int) ([]models.TestRun, error)
}

type IStation interface {
	UpsertStation(input *models.Station) error
	GetStation(stationID uint) (*models.Station, error)
	ListStations() ([]models.Station, error)
}

type Monitor struct {
	Db       db.DB
	Sample   ISample
	Settings ISettings
	Run      IRun
	Station  IStation
}

type ServiceOpts struct {
	Sample   ISample
	Settings ISettings
	Run      IRun
	Station  IStation
}

func (m *Monitor) WithServices(opts ServiceOpts) *Monitor {
	if opts.Sample != nil {
		m.Sample = opts.Sample
	}
	if opts.Settings != nil {
		m.Settings = opts.Settings
	}
	if opts.Run != nil {
		m.Run = opts.Run
	}
	if opts.Station != nil {
		m.Station = opts.Station
	}
	return m
}

// WithDefaultServices wires the gorm backed implementation of every service.
func (m *Monitor) WithDefaultServices() *Monitor {
	return m.WithServices(ServiceOpts{
		Sample:   m.GetISample(),
		Settings: m.GetISettings(),
		Run:      m.GetIRun(),
		Station:  m.GetIStation(),
	})
}
