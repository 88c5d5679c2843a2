package models

import "time"

type Mode string

const (
	ModeHourly  Mode = "hourly"
	ModeDaily   Mode = "daily"
	ModeMonthly Mode = "monthly"
)

type Station struct {
	ID             uint   `gorm:"primaryKey" json:"station_id"`
	Name           string `gorm:"not null" json:"name"`
	Location       string `json:"location"`
	DeviceSensorID string `json:"device_sensor_id"`
	DeviceBaseURL  string `json:"device_base_url"`

	Samples  []WaterSample     `gorm:"foreignKey:StationID;references:ID" json:"-"`
	Settings *AutoTestSettings `gorm:"foreignKey:StationID;references:ID" json:"-"`
}

// WaterSample is one sample posted by a station's device. Every measured field is nullable,
// a device may omit any of them.
type WaterSample struct {
	ID              uint      `gorm:"primaryKey" json:"waterdata_id"`
	StationID       uint      `gorm:"index;not null" json:"station_id"`
	SensorID        *string   `json:"sensor_id"`
	TDSValue        *float64  `gorm:"column:tds_value" json:"tds_value"`
	PHValue         *float64  `gorm:"column:ph_value" json:"ph_value"`
	TurbidityValue  *float64  `json:"turbidity_value"`
	LeadValue       *float64  `json:"lead_value"`
	ColorValue      *float64  `json:"color_value"`
	TDSStatus       *string   `gorm:"column:tds_status" json:"tds_status"`
	PHStatus        *string   `gorm:"column:ph_status" json:"ph_status"`
	TurbidityStatus *string   `json:"turbidity_status"`
	LeadStatus      *string   `json:"lead_status"`
	ColorStatus     *string   `json:"color_status"`
	ColorResult     *string   `json:"color_result"`
	Timestamp       time.Time `gorm:"index" json:"timestamp"`
}

func (WaterSample) TableName() string {
	return "water_data"
}

// TestRun is the history-list projection of a WaterSample.
type TestRun struct {
	ID        uint      `json:"waterdata_id"`
	Timestamp time.Time `json:"timestamp"`
}

// AutoTestSettings is the flattened persistence row of a station's automatic test schedule.
// Only the columns of the active Mode are set, the others stay NULL.
type AutoTestSettings struct {
	StationID      uint `gorm:"primaryKey;autoIncrement:false"`
	Mode           Mode `gorm:"type:varchar(10);not null;check:mode IN ('hourly','daily','monthly')"`
	IntervalHours  *int
	IntervalDays   *int
	IntervalMonths *int
	DayOfMonth     *int
	TimeOfDay      *string `gorm:"type:varchar(5)"`
	Enabled        bool
	UpdatedAt      time.Time
}

func (AutoTestSettings) TableName() string {
	return "station_autotest_settings"
}
