package gauge

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Payload is the decoded body of a device /readings response.
type Payload map[string]any

// lookup finds key case-insensitively: firmware revisions disagree on "PH_Value" vs "Ph_Value".
func (p Payload) lookup(key string) (string, bool) {
	if raw, ok := p[key]; ok {
		return stringify(raw), true
	}
	for k, raw := range p {
		if strings.EqualFold(k, key) {
			return stringify(raw), true
		}
	}
	return "", false
}

func stringify(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Readings extracts one Reading per parameter. The color gauge prefers the categorical
// Color_Result and falls back to Color_Value.
func (v Variant) Readings(payload Payload) map[ParameterID]Reading {
	readings := make(map[ParameterID]Reading, len(Order))
	for _, id := range Order {
		p := v.Parameters[id]
		value, ok := payload.lookup(p.ValueKey)
		if !ok && p.Categorical {
			value, _ = payload.lookup("Color_Value")
		}
		status, _ := payload.lookup(p.StatusKey)
		readings[id] = Reading{Value: value, Status: status}
	}
	return readings
}
