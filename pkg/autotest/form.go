package autotest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"liyu1981.xyz/water-quality-dashboard/pkg/models"
)

const (
	ActionSave = "save_autotest"

	MessageNoStation     = "No station id provided."
	MessageMissingFields = "Please fill out all required fields for the selected automatic mode."
	MessageSaved         = "Settings saved successfully."
	MessageNetworkError  = "Network error while saving settings."
)

// ValidationError carries the message shown to the operator.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrNoStation     = &ValidationError{Message: MessageNoStation}
	ErrMissingFields = &ValidationError{Message: MessageMissingFields}

	ErrNetwork = errors.New("network error while saving settings")

	// ErrBadResponse means the dashboard was reached but did not answer with a save result.
	ErrBadResponse = errors.New("unexpected dashboard response")
)

// Form is the settings form as submitted: every field is the raw string the browser or the
// CLI sent, empty meaning "not provided".
type Form struct {
	StationID      string `json:"station_id" zog:"station_id"`
	Mode           string `json:"mode" zog:"mode"`
	IntervalHours  string `json:"interval_hours" zog:"interval_hours"`
	IntervalDays   string `json:"interval_days" zog:"interval_days"`
	IntervalMonths string `json:"interval_months" zog:"interval_months"`
	DayOfMonth     string `json:"day_of_month" zog:"day_of_month"`
	TimeOfDay      string `json:"time_of_day" zog:"time_of_day"`
	Enabled        string `json:"enabled" zog:"enabled"`
}

func optionalInt(field, raw string, min, max int) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || (max > 0 && v > max) {
		if max > 0 {
			return nil, &ValidationError{Message: fmt.Sprintf("%s must be a whole number between %d and %d.", field, min, max)}
		}
		return nil, &ValidationError{Message: fmt.Sprintf("%s must be a positive whole number.", field)}
	}
	return &v, nil
}

func optionalTime(raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return nil, &ValidationError{Message: "time_of_day must be formatted as HH:MM."}
	}
	formatted := t.Format("15:04")
	return &formatted, nil
}

func parseEnabled(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// Validate checks the form and builds the schedule of its mode. A missing station id and,
// for an enabled schedule, missing mode fields are reported with the operator messages.
// Missing fields of a disabled schedule take their defaults.
func (f Form) Validate() (Settings, error) {
	sid, err := strconv.ParseUint(strings.TrimSpace(f.StationID), 10, 64)
	if err != nil || sid == 0 {
		return Settings{}, ErrNoStation
	}

	mode := models.Mode(strings.ToLower(strings.TrimSpace(f.Mode)))
	switch mode {
	case "":
		mode = models.ModeHourly
	case models.ModeHourly, models.ModeDaily, models.ModeMonthly:
	default:
		return Settings{}, &ValidationError{Message: fmt.Sprintf("Unknown automatic mode %q.", f.Mode)}
	}
	enabled := parseEnabled(f.Enabled)

	hours, err := optionalInt("interval_hours", f.IntervalHours, 1, 0)
	if err != nil {
		return Settings{}, err
	}
	days, err := optionalInt("interval_days", f.IntervalDays, 1, 0)
	if err != nil {
		return Settings{}, err
	}
	months, err := optionalInt("interval_months", f.IntervalMonths, 1, 0)
	if err != nil {
		return Settings{}, err
	}
	dayOfMonth, err := optionalInt("day_of_month", f.DayOfMonth, 1, 31)
	if err != nil {
		return Settings{}, err
	}
	timeOfDay, err := optionalTime(f.TimeOfDay)
	if err != nil {
		return Settings{}, err
	}

	if enabled {
		missing := false
		switch mode {
		case models.ModeHourly:
			missing = hours == nil
		case models.ModeDaily:
			missing = days == nil || timeOfDay == nil
		case models.ModeMonthly:
			missing = months == nil || dayOfMonth == nil || timeOfDay == nil
		}
		if missing {
			return Settings{}, ErrMissingFields
		}
	}

	s := Settings{StationID: uint(sid), Enabled: enabled}
	switch mode {
	case models.ModeDaily:
		s.Schedule = Daily{IntervalDays: valueOr(days, 1), TimeOfDay: valueOr(timeOfDay, DefaultTimeOfDay)}
	case models.ModeMonthly:
		s.Schedule = Monthly{
			IntervalMonths: valueOr(months, 1),
			DayOfMonth:     valueOr(dayOfMonth, 1),
			TimeOfDay:      valueOr(timeOfDay, DefaultTimeOfDay),
		}
	default:
		s.Schedule = Hourly{IntervalHours: valueOr(hours, 1)}
	}
	return s, nil
}

// Values is the form-encoded body of a save request. Fields of other modes are sent empty.
func (f Form) Values() map[string]string {
	return map[string]string{
		"action":          ActionSave,
		"station_id":      f.StationID,
		"mode":            f.Mode,
		"interval_hours":  f.IntervalHours,
		"interval_days":   f.IntervalDays,
		"interval_months": f.IntervalMonths,
		"day_of_month":    f.DayOfMonth,
		"time_of_day":     f.TimeOfDay,
		"enabled":         f.Enabled,
	}
}

// FormFor renders settings back into the form the dashboard would submit for them.
func FormFor(s Settings) Form {
	f := Form{StationID: strconv.FormatUint(uint64(s.StationID), 10), Enabled: "0"}
	if s.Enabled {
		f.Enabled = "1"
	}

	switch sched := s.Schedule.(type) {
	case Daily:
		f.Mode = string(models.ModeDaily)
		f.IntervalDays = strconv.Itoa(sched.IntervalDays)
		f.TimeOfDay = sched.TimeOfDay
	case Monthly:
		f.Mode = string(models.ModeMonthly)
		f.IntervalMonths = strconv.Itoa(sched.IntervalMonths)
		f.DayOfMonth = strconv.Itoa(sched.DayOfMonth)
		f.TimeOfDay = sched.TimeOfDay
	case Hourly:
		f.Mode = string(models.ModeHourly)
		f.IntervalHours = strconv.Itoa(sched.IntervalHours)
	}
	return f
}
