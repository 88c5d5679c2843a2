// Package gauge maps raw device readings onto the dashboard's needle gauges.
//
// Everything here is pure: a Variant describes the arc and the parameter domains, Render
// projects one Reading into a View, and MapValueToRotation does the linear interpolation.
package gauge

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type ParameterID string

const (
	TDS       ParameterID = "tds"
	PH        ParameterID = "ph"
	Turbidity ParameterID = "turbidity"
	Lead      ParameterID = "lead"
	Color     ParameterID = "color"
)

// Order is the fixed rendering order of one tick.
var Order = []ParameterID{TDS, PH, Turbidity, Lead, Color}

const (
	// Placeholder is shown for a numeric value that does not parse.
	Placeholder = "--"
	// NotAvailable is shown when a reading carries no status label.
	NotAvailable = "N/A"
)

const (
	ClassSafe    = "status-safe"
	ClassNeutral = "status-neutral"
	ClassWarning = "status-warning"
	ClassFailed  = "status-failed"
)

type Parameter struct {
	ID          ParameterID
	Label       string
	Unit        string
	Min         float64
	Max         float64
	Precision   int
	Categorical bool
	// payload keys of the device /readings response
	ValueKey  string
	StatusKey string
}

// Arc is the angular span of the needle in degrees.
type Arc struct {
	Min float64
	Max float64
}

func (a Arc) Mid() float64 {
	return (a.Min + a.Max) / 2
}

// Reading is the raw pair a device reports for one parameter.
type Reading struct {
	Value  string `json:"value"`
	Status string `json:"status"`
}

// View is everything the page needs to draw one gauge.
type View struct {
	Parameter   ParameterID `json:"parameter"`
	Label       string      `json:"label"`
	Unit        string      `json:"unit"`
	Text        string      `json:"text"`
	Status      string      `json:"status"`
	StatusClass string      `json:"status_class"`
	Angle       float64     `json:"angle"`
}

// MapValueToRotation linearly maps value from [inMin, inMax] onto [outMin, outMax].
// Values outside the input domain saturate at the nearest bound. A degenerate domain or a
// non-finite value maps to outMin.
func MapValueToRotation(value, inMin, inMax, outMin, outMax float64) float64 {
	if inMax == inMin || math.IsNaN(value) || math.IsInf(value, 0) {
		return outMin
	}
	clamped := math.Max(inMin, math.Min(inMax, value))
	return (clamped-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

// StatusClass matches a status label case-insensitively. Unknown and empty labels fall
// into the failed class.
func StatusClass(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "safe":
		return ClassSafe
	case "neutral":
		return ClassNeutral
	case "warning":
		return ClassWarning
	default:
		return ClassFailed
	}
}

// ParseValue accepts the numeric forms a device sends: plain decimals with optional
// surrounding whitespace. Only finite numbers are accepted.
func ParseValue(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func FormatValue(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

func statusText(status string) string {
	if strings.TrimSpace(status) == "" {
		return NotAvailable
	}
	return status
}

func (p Parameter) validate() error {
	if p.Categorical {
		return nil
	}
	if p.Max == p.Min {
		return fmt.Errorf("parameter %s has a degenerate domain [%v, %v]", p.ID, p.Min, p.Max)
	}
	if p.Precision < 0 {
		return fmt.Errorf("parameter %s has a negative precision", p.ID)
	}
	return nil
}
