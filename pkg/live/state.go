// Package live keeps the current gauge state of every polled station.
//
// A Poller turns device responses into TickResults; Reduce folds a result into the station's
// Snapshot; the Store commits a snapshot only if it comes from a newer tick than the one
// already committed, so a slow tick can never overwrite fresher data.
package live

import (
	"fmt"
	"time"

	"liyu1981.xyz/water-quality-dashboard/pkg/device"
	"liyu1981.xyz/water-quality-dashboard/pkg/gauge"
)

type ConnectionState string

const (
	StateIdle       ConnectionState = "Idle"
	StateConnecting ConnectionState = "Connecting"
	StateOnline     ConnectionState = "Online"
	StateBusy       ConnectionState = "Busy"
	StateOffline    ConnectionState = "Offline"
)

// Snapshot is the whole live view of one station.
type Snapshot struct {
	StationID  uint                                `json:"station_id"`
	Seq        uint64                              `json:"seq"`
	State      ConnectionState                     `json:"state"`
	Message    string                              `json:"message"`
	LastUpdate time.Time                           `json:"last_update"`
	Readings   map[gauge.ParameterID]gauge.Reading `json:"readings"`
	Gauges     []gauge.View                        `json:"gauges"`
}

// TickResult is what one tick learned from the device.
type TickResult struct {
	Seq        uint64
	Fetch      device.FetchResult
	CapturedAt time.Time
}

// Initial is the snapshot shown before the first tick completes.
func Initial(stationID uint, variant gauge.Variant) Snapshot {
	readings := gauge.Uniform("", "Connecting...")
	return Snapshot{
		StationID: stationID,
		State:     StateIdle,
		Message:   "Connecting to device...",
		Readings:  readings,
		Gauges:    variant.RenderAll(readings),
	}
}

// Reduce folds one tick into the previous snapshot. It is pure: rendering is a projection
// of the readings chosen here.
func Reduce(prev Snapshot, res TickResult, variant gauge.Variant) Snapshot {
	next := prev
	next.Seq = res.Seq

	var readings map[gauge.ParameterID]gauge.Reading
	switch res.Fetch.Outcome {
	case device.OutcomeOK:
		next.State = StateOnline
		next.LastUpdate = res.CapturedAt
		next.Message = fmt.Sprintf("Live Data - Last Update: %s", res.CapturedAt.Format("15:04:05"))
		readings = variant.Readings(res.Fetch.Payload)
	case device.OutcomeBusy:
		next.State = StateBusy
		next.Message = "Device busy - waiting for test cycle to finish"
		readings = gauge.Uniform(variant.NoReading, variant.BusyStatus)
	default:
		next.State = StateOffline
		if res.Fetch.StatusCode != 0 {
			next.Message = fmt.Sprintf("Network Error: %d", res.Fetch.StatusCode)
		} else {
			next.Message = "Could not reach device. Check power / network."
		}
		readings = gauge.Uniform(variant.NoReading, variant.FailedStatus)
	}

	next.Readings = readings
	next.Gauges = variant.RenderAll(readings)
	return next
}
