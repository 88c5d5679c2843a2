package gauge

import (
	"fmt"
	"strings"
)

const (
	VariantClassic = "classic"
	VariantArc     = "arc"
)

// Variant is one rendering of the dashboard. The two shipped variants differ in arc span,
// domains, precision and in how a busy or unreachable device is labelled.
type Variant struct {
	Name       string
	Arc        Arc
	Parameters map[ParameterID]Parameter
	// ColorAngles maps a lower-case status label to the color needle angle,
	// the "" entry is the fallback for every other label.
	ColorAngles map[string]float64
	// NoReading is the value shown on every gauge while the device is busy or offline.
	NoReading    string
	BusyStatus   string
	FailedStatus string
}

func payloadKeys(prefix string) (string, string) {
	return prefix + "_Value", prefix + "_Status"
}

func numeric(id ParameterID, label, unit, keyPrefix string, min, max float64, precision int) Parameter {
	valueKey, statusKey := payloadKeys(keyPrefix)
	return Parameter{
		ID:        id,
		Label:     label,
		Unit:      unit,
		Min:       min,
		Max:       max,
		Precision: precision,
		ValueKey:  valueKey,
		StatusKey: statusKey,
	}
}

func colorParameter(max float64) Parameter {
	return Parameter{
		ID:          Color,
		Label:       "Color",
		Unit:        "Analysis",
		Max:         max,
		Categorical: true,
		ValueKey:    "Color_Result",
		StatusKey:   "Color_Status",
	}
}

// Classic spans -120..120 degrees, shows two decimals for every numeric parameter and
// renders a busy device as still connecting.
func Classic() Variant {
	return Variant{
		Name: VariantClassic,
		Arc:  Arc{Min: -120, Max: 120},
		Parameters: map[ParameterID]Parameter{
			TDS:       numeric(TDS, "TDS", "mg/L", "TDS", 0, 1000, 2),
			PH:        numeric(PH, "pH", "", "PH", 0, 14, 2),
			Turbidity: numeric(Turbidity, "Turbidity", "NTU", "Turbidity", 0, 50, 2),
			Lead:      numeric(Lead, "Lead", "mg/L", "Lead", 0, 0.02, 2),
			Color:     colorParameter(0),
		},
		ColorAngles: map[string]float64{
			"safe":    0,
			"warning": 60,
			"failed":  100,
			"":        -60,
		},
		NoReading:    "---",
		BusyStatus:   "Connecting",
		FailedStatus: "Failed",
	}
}

// Arc260 spans -130..130 degrees with per-parameter precision and labels a busy device BUSY.
func Arc260() Variant {
	return Variant{
		Name: VariantArc,
		Arc:  Arc{Min: -130, Max: 130},
		Parameters: map[ParameterID]Parameter{
			TDS:       numeric(TDS, "TDS", "mg/L", "TDS", 0, 1000, 0),
			PH:        numeric(PH, "pH", "", "PH", 0, 14, 2),
			Turbidity: numeric(Turbidity, "Turbidity", "NTU", "Turbidity", 0, 10, 2),
			Lead:      numeric(Lead, "Lead", "mg/L", "Lead", 0, 0.012, 4),
			Color:     colorParameter(100),
		},
		ColorAngles: map[string]float64{
			"safe":    -130,
			"warning": 0,
			"failed":  130,
			"":        -130,
		},
		NoReading:    "--",
		BusyStatus:   "BUSY",
		FailedStatus: "Error",
	}
}

func VariantByName(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", VariantClassic:
		return Classic(), nil
	case VariantArc:
		return Arc260(), nil
	default:
		return Variant{}, fmt.Errorf("unknown gauge variant %q", name)
	}
}

// Validate rejects variants whose numeric domains cannot be mapped. It runs once at startup
// so MapValueToRotation never meets a degenerate domain at runtime.
func (v Variant) Validate() error {
	if v.Arc.Max <= v.Arc.Min {
		return fmt.Errorf("variant %s has an empty arc [%v, %v]", v.Name, v.Arc.Min, v.Arc.Max)
	}
	for _, id := range Order {
		p, ok := v.Parameters[id]
		if !ok {
			return fmt.Errorf("variant %s misses parameter %s", v.Name, id)
		}
		if err := p.validate(); err != nil {
			return fmt.Errorf("variant %s: %w", v.Name, err)
		}
	}
	if _, ok := v.ColorAngles[""]; !ok {
		return fmt.Errorf("variant %s has no fallback color angle", v.Name)
	}
	return nil
}

func (v Variant) colorAngle(status string) float64 {
	if angle, ok := v.ColorAngles[strings.ToLower(strings.TrimSpace(status))]; ok {
		return angle
	}
	return v.ColorAngles[""]
}

// Render projects one reading into the three things a gauge shows: readout text,
// status badge and needle angle.
func (v Variant) Render(id ParameterID, reading Reading) View {
	p := v.Parameters[id]

	view := View{
		Parameter:   id,
		Label:       p.Label,
		Unit:        p.Unit,
		Status:      statusText(reading.Status),
		StatusClass: StatusClass(reading.Status),
	}

	if p.Categorical {
		view.Text = reading.Value
		if strings.TrimSpace(view.Text) == "" {
			view.Text = Placeholder
		}
		view.Angle = v.colorAngle(reading.Status)
		return view
	}

	value, ok := ParseValue(reading.Value)
	if !ok {
		view.Text = Placeholder
		if reading.Value == v.NoReading {
			view.Text = v.NoReading
		}
		view.Angle = v.Arc.Min
		return view
	}

	view.Text = FormatValue(value, p.Precision)
	view.Angle = MapValueToRotation(value, p.Min, p.Max, v.Arc.Min, v.Arc.Max)
	return view
}

// RenderAll renders every parameter in Order.
func (v Variant) RenderAll(readings map[ParameterID]Reading) []View {
	views := make([]View, 0, len(Order))
	for _, id := range Order {
		views = append(views, v.Render(id, readings[id]))
	}
	return views
}

// Uniform returns the same reading for every parameter, used for busy and offline ticks.
func Uniform(value, status string) map[ParameterID]Reading {
	readings := make(map[ParameterID]Reading, len(Order))
	for _, id := range Order {
		readings[id] = Reading{Value: value, Status: status}
	}
	return readings
}
