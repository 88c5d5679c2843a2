package monitor

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"liyu1981.xyz/water-quality-dashboard/pkg/autotest"
	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/models"
)

func (m *Monitor) upsertSettings(settings autotest.Settings) error {
	logger := common.GetLoggerWith(
		common.LoggerNameMonitorCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategorySettings),
	)

	row := settings.ToRow()
	row.UpdatedAt = time.Now()

	logger.Info("Received settings for station", zap.Reflect("settings", row))

	err := m.Db.Conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "station_id"}},
		UpdateAll: true,
	}).Create(&row).Error

	if err == nil {
		logger.Info("Upserted settings for station", zap.Reflect("settings", row))
	}

	return err
}

// getSettings returns the defaults when the station never saved a schedule.
func (m *Monitor) getSettings(stationID uint) (autotest.Settings, error) {
	var row models.AutoTestSettings
	err := m.Db.Conn.First(&row, "station_id = ?", stationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return autotest.Defaults(stationID), nil
	}
	if err != nil {
		return autotest.Settings{}, err
	}
	return autotest.FromRow(row), nil
}

type ISettingsImpl struct {
	monitor *Monitor
}

func (is *ISettingsImpl) UpsertSettings(settings autotest.Settings) error {
	return is.monitor.upsertSettings(settings)
}

func (is *ISettingsImpl) GetSettings(stationID uint) (autotest.Settings, error) {
	return is.monitor.getSettings(stationID)
}

func (m *Monitor) GetISettings() ISettings {
	return &ISettingsImpl{monitor: m}
}
