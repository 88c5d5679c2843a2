package devicesim

import (
	"math"
	"math/rand"

	"liyu1981.xyz/water-quality-dashboard/pkg/gauge"
)

// Sample is one measurement cycle of the emulated device.
type Sample struct {
	SensorID    string
	TDS         float64
	PH          float64
	Turbidity   float64
	Lead        float64
	Color       float64
	ColorResult string
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// GenerateSample draws plausible drinking-water values, mostly inside the safe bands.
func GenerateSample(rnd *rand.Rand, sensorID string) Sample {
	color := round(rnd.Float64()*30, 2)
	return Sample{
		SensorID:    sensorID,
		TDS:         round(50+rnd.Float64()*600, 2),
		PH:          round(6.2+rnd.Float64()*2.6, 2),
		Turbidity:   round(rnd.Float64()*6, 2),
		Lead:        round(rnd.Float64()*0.015, 4),
		Color:       color,
		ColorResult: colorResult(color),
	}
}

func colorResult(color float64) string {
	switch {
	case color <= 5:
		return "Clear"
	case color <= 15:
		return "Slightly Colored"
	default:
		return "Colored"
	}
}

func TDSStatus(v float64) string {
	switch {
	case v <= 300:
		return "Safe"
	case v <= 600:
		return "Neutral"
	case v <= 1000:
		return "Warning"
	default:
		return "Failed"
	}
}

func PHStatus(v float64) string {
	switch {
	case v >= 6.5 && v <= 8.5:
		return "Safe"
	case v >= 6 && v <= 9:
		return "Warning"
	default:
		return "Failed"
	}
}

func TurbidityStatus(v float64) string {
	switch {
	case v <= 1:
		return "Safe"
	case v <= 5:
		return "Neutral"
	default:
		return "Warning"
	}
}

func LeadStatus(v float64) string {
	switch {
	case v <= 0.005:
		return "Safe"
	case v <= 0.01:
		return "Warning"
	default:
		return "Failed"
	}
}

func ColorStatus(v float64) string {
	switch {
	case v <= 5:
		return "Safe"
	case v <= 15:
		return "Neutral"
	default:
		return "Warning"
	}
}

// ReadingsPayload is the body of GET /readings. Values are sent as strings like the firmware does.
func (s Sample) ReadingsPayload() gauge.Payload {
	return gauge.Payload{
		"TDS_Value":        gauge.FormatValue(s.TDS, 2),
		"TDS_Status":       TDSStatus(s.TDS),
		"PH_Value":         gauge.FormatValue(s.PH, 2),
		"PH_Status":        PHStatus(s.PH),
		"Turbidity_Value":  gauge.FormatValue(s.Turbidity, 2),
		"Turbidity_Status": TurbidityStatus(s.Turbidity),
		"Lead_Value":       gauge.FormatValue(s.Lead, 4),
		"Lead_Status":      LeadStatus(s.Lead),
		"Color_Value":      gauge.FormatValue(s.Color, 2),
		"Color_Result":     s.ColorResult,
		"Color_Status":     ColorStatus(s.Color),
	}
}

// UploadBody is the JSON body the device posts to the dashboard after a cycle.
func (s Sample) UploadBody() map[string]any {
	return map[string]any{
		"sensorId":         s.SensorID,
		"tds_val":          s.TDS,
		"ph_val":           s.PH,
		"turbidity_val":    s.Turbidity,
		"lead_val":         s.Lead,
		"color_val":        s.Color,
		"tds_status":       TDSStatus(s.TDS),
		"ph_status":        PHStatus(s.PH),
		"turbidity_status": TurbidityStatus(s.Turbidity),
		"lead_status":      LeadStatus(s.Lead),
		"color_status":     ColorStatus(s.Color),
		"color_result":     s.ColorResult,
	}
}
