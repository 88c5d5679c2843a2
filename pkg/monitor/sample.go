package monitor

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/models"
)

func (m *Monitor) ingestSample(stationID uint, input *models.WaterSample) error {
	logger := common.GetLoggerWith(
		common.LoggerNameMonitorCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategorySample),
	)

	sample := *input
	sample.ID = 0
	sample.StationID = stationID
	if sample.Timestamp.IsZero() {
		sample.Timestamp = time.Now()
	}

	logger.Info("Received sample for station", zap.Uint("station_id", stationID), zap.Reflect("sample", sample))

	if err := m.Db.Conn.Create(&sample).Error; err != nil {
		return err
	}
	input.ID = sample.ID
	input.StationID = sample.StationID
	input.Timestamp = sample.Timestamp

	logger.Info("Stored sample for station", zap.Uint("station_id", stationID), zap.Uint("waterdata_id", sample.ID))
	return nil
}

func (m *Monitor) getSample(stationID uint, sampleID uint) (*models.WaterSample, error) {
	var sample models.WaterSample
	err := m.Db.Conn.First(&sample, "id = ? AND station_id = ?", sampleID, stationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSampleNotFound
	}
	return &sample, err
}

type ISampleImpl struct {
	monitor *Monitor
}

func (is *ISampleImpl) IngestSample(stationID uint, input *models.WaterSample) error {
	return is.monitor.ingestSample(stationID, input)
}

func (is *ISampleImpl) GetSample(stationID uint, sampleID uint) (*models.WaterSample, error) {
	return is.monitor.getSample(stationID, sampleID)
}

func (m *Monitor) GetISample() ISample {
	return &ISampleImpl{monitor: m}
}
