package monitor

import (
	"strings"
	"time"

	"liyu1981.xyz/water-quality-dashboard/pkg/common"
	"liyu1981.xyz/water-quality-dashboard/pkg/models"
)

func (m *Monitor) listRuns(stationID uint, limit int) ([]models.TestRun, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var runs []models.TestRun
	err := m.Db.Conn.
		Model(&models.WaterSample{}).
		Select("id", "timestamp").
		Where("station_id = ?", stationID).
		Order("timestamp desc").
		Order("id desc").
		Limit(limit).
		Scan(&runs).Error
	return runs, err
}

type IRunImpl struct {
	monitor *Monitor
}

func (ir *IRunImpl) ListRuns(stationID uint, limit int) ([]models.TestRun, error) {
	return ir.monitor.listRuns(stationID, limit)
}

func (m *Monitor) GetIRun() IRun {
	return &IRunImpl{monitor: m}
}

// RunCard is a run as listed on the dashboard.
type RunCard struct {
	ID   uint   `json:"waterdata_id"`
	Date string `json:"date"`
	Time string `json:"time"`
}

func Card(run models.TestRun, loc *time.Location) RunCard {
	ts := run.Timestamp.In(loc)
	return RunCard{
		ID:   run.ID,
		Date: ts.Format("2006-01-02"),
		Time: ts.Format("03:04 PM"),
	}
}

// FilterByDate keeps the runs whose YYYY-MM-DD date in loc contains date. An empty filter
// keeps everything.
func FilterByDate(runs []models.TestRun, date string, loc *time.Location) []models.TestRun {
	date = strings.TrimSpace(date)
	if date == "" {
		return runs
	}
	return common.Filter(runs, func(run models.TestRun) bool {
		return strings.Contains(Card(run, loc).Date, date)
	})
}
