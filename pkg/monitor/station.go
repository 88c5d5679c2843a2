package monitor

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/models"
)

func (m *Monitor) upsertStation(input *models.Station) error {
	logger := common.GetLoggerWith(
		common.LoggerNameMonitorCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryStation),
	)

	station := models.Station{
		ID:             input.ID,
		Name:           input.Name,
		Location:       input.Location,
		DeviceSensorID: input.DeviceSensorID,
		DeviceBaseURL:  input.DeviceBaseURL,
	}

	err := m.Db.Conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "location", "device_sensor_id", "device_base_url"}),
	}).Create(&station).Error
	if err != nil {
		return err
	}
	input.ID = station.ID

	logger.Info("Upserted station", zap.Reflect("station", station))
	return nil
}

func (m *Monitor) getStation(stationID uint) (*models.Station, error) {
	var station models.Station
	err := m.Db.Conn.First(&station, "id = ?", stationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &station, nil
}

func (m *Monitor) listStations() ([]models.Station, error) {
	var stations []models.Station
	err := m.Db.Conn.Order("id").Find(&stations).Error
	return stations, err
}

type IStationImpl struct {
	monitor *Monitor
}

func (is *IStationImpl) UpsertStation(input *models.Station) error {
	return is.monitor.upsertStation(input)
}

func (is *IStationImpl) GetStation(stationID uint) (*models.Station, error) {
	return is.monitor.getStation(stationID)
}

func (is *IStationImpl) ListStations() ([]models.Station, error) {
	return is.monitor.listStations()
}

func (m *Monitor) GetIStation() IStation {
	return &IStationImpl{monitor: m}
}
