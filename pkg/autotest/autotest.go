// Package autotest models a station's automatic test schedule.
//
// In memory a schedule is exactly one of Hourly, Daily or Monthly. It is flattened into the
// nullable columns of models.AutoTestSettings only when it is persisted.
package autotest

import (
	"liyu1981.xyz/water-quality-dashboard/pkg/models"
)

const DefaultTimeOfDay = "00:00"

type Schedule interface {
	Mode() models.Mode
	isSchedule()
}

type Hourly struct {
	IntervalHours int
}

type Daily struct {
	IntervalDays int
	TimeOfDay    string
}

type Monthly struct {
	IntervalMonths int
	DayOfMonth     int
	TimeOfDay      string
}

func (Hourly) Mode() models.Mode  { return models.ModeHourly }
func (Daily) Mode() models.Mode   { return models.ModeDaily }
func (Monthly) Mode() models.Mode { return models.ModeMonthly }

func (Hourly) isSchedule()  {}
func (Daily) isSchedule()   {}
func (Monthly) isSchedule() {}

type Settings struct {
	StationID uint
	Schedule  Schedule
	Enabled   bool
}

// Defaults is what a station without a saved row shows.
func Defaults(stationID uint) Settings {
	return Settings{StationID: stationID, Schedule: Hourly{IntervalHours: 1}}
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

// ToRow flattens the schedule. Columns that belong to other modes are written NULL so a
// mode change never leaves stale values behind.
func (s Settings) ToRow() models.AutoTestSettings {
	row := models.AutoTestSettings{
		StationID: s.StationID,
		Enabled:   s.Enabled,
	}

	switch sched := s.Schedule.(type) {
	case Daily:
		row.Mode = models.ModeDaily
		row.IntervalDays = intPtr(sched.IntervalDays)
		row.TimeOfDay = strPtr(sched.TimeOfDay)
	case Monthly:
		row.Mode = models.ModeMonthly
		row.IntervalMonths = intPtr(sched.IntervalMonths)
		row.DayOfMonth = intPtr(sched.DayOfMonth)
		row.TimeOfDay = strPtr(sched.TimeOfDay)
	case Hourly:
		row.Mode = models.ModeHourly
		row.IntervalHours = intPtr(sched.IntervalHours)
	default:
		row.Mode = models.ModeHourly
		row.IntervalHours = intPtr(1)
	}
	return row
}

func valueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// FromRow rebuilds the union from a persisted row. NULL columns of the active mode fall back
// to the defaults.
func FromRow(row models.AutoTestSettings) Settings {
	s := Settings{StationID: row.StationID, Enabled: row.Enabled}
	timeOfDay := valueOr(row.TimeOfDay, DefaultTimeOfDay)

	switch row.Mode {
	case models.ModeDaily:
		s.Schedule = Daily{
			IntervalDays: valueOr(row.IntervalDays, 1),
			TimeOfDay:    timeOfDay,
		}
	case models.ModeMonthly:
		s.Schedule = Monthly{
			IntervalMonths: valueOr(row.IntervalMonths, 1),
			DayOfMonth:     valueOr(row.DayOfMonth, 1),
			TimeOfDay:      timeOfDay,
		}
	default:
		s.Schedule = Hourly{IntervalHours: valueOr(row.IntervalHours, 1)}
	}
	return s
}

// View is what the settings panel of the dashboard is filled with. Fields of modes other
// than the saved one keep their defaults.
type View struct {
	StationID      uint        `json:"station_id"`
	Mode           models.Mode `json:"mode"`
	IntervalHours  int         `json:"interval_hours"`
	IntervalDays   int         `json:"interval_days"`
	DailyTime      string      `json:"daily_time"`
	IntervalMonths int         `json:"interval_months"`
	DayOfMonth     int         `json:"day_of_month"`
	MonthlyTime    string      `json:"monthly_time"`
	Enabled        bool        `json:"enabled"`
}

func (s Settings) View() View {
	v := View{
		StationID:      s.StationID,
		Mode:           models.ModeHourly,
		IntervalHours:  1,
		IntervalDays:   1,
		DailyTime:      DefaultTimeOfDay,
		IntervalMonths: 1,
		DayOfMonth:     1,
		MonthlyTime:    DefaultTimeOfDay,
		Enabled:        s.Enabled,
	}

	switch sched := s.Schedule.(type) {
	case Hourly:
		v.IntervalHours = sched.IntervalHours
	case Daily:
		v.Mode = models.ModeDaily
		v.IntervalDays = sched.IntervalDays
		v.DailyTime = sched.TimeOfDay
	case Monthly:
		v.Mode = models.ModeMonthly
		v.IntervalMonths = sched.IntervalMonths
		v.DayOfMonth = sched.DayOfMonth
		v.MonthlyTime = sched.TimeOfDay
	}
	return v
}
