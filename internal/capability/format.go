package capability

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Placeholder rendered for a missing status value.
const Missing = "—"

// StatusRow is a formatted status field ready for display.
type StatusRow struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// FormatStatus renders the profile's status fields from a snapshot, in
// table order. Fields absent from the snapshot render as Missing.
func FormatStatus(p Profile, status map[string]any) []StatusRow {
	rows := make([]StatusRow, 0, len(p.StatusFields))
	for _, f := range p.StatusFields {
		format := f.Format
		if format == nil {
			format = plainValue
		}
		label := f.Label
		if label == "" {
			label = f.Key
		}
		rows = append(rows, StatusRow{Key: f.Key, Label: label, Value: format(status[f.Key], status)})
	}
	return rows
}

func plainValue(v any, _ map[string]any) string {
	switch x := v.(type) {
	case nil:
		return Missing
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case string:
		return x
	default:
		if n, ok := toFloat(v); ok {
			return formatNumber(n)
		}
		return fmt.Sprint(v)
	}
}

// suffixed renders the value followed by suffix, e.g. "65%".
func suffixed(suffix string) Formatter {
	return func(v any, _ map[string]any) string {
		if v == nil {
			return Missing
		}
		if n, ok := toFloat(v); ok {
			return formatNumber(n) + suffix
		}
		return fmt.Sprint(v) + suffix
	}
}

var (
	percent = suffixed("%")
	kelvin  = suffixed("K")
	celsius = suffixed("°C")
	ppm     = suffixed(" ppm")
)

// celsius1 renders a temperature with one decimal.
func celsius1(v any, _ map[string]any) string {
	n, ok := toFloat(v)
	if v == nil || !ok {
		return Missing
	}
	return fmt.Sprintf("%.1f°C", n)
}

// flag renders truthy values as on and everything else as off.
func flag(on, off string) Formatter {
	return func(v any, _ map[string]any) string {
		if truthy(v) {
			return on
		}
		return off
	}
}

func leakState(v any, _ map[string]any) string {
	if v == nil {
		return Missing
	}
	if n, ok := toFloat(v); ok && n == 1 {
		return "Leak detected"
	}
	return "Dry"
}

// plugPower renders numeric power as watts. Plugs that report power as
// "on"/"off" get watts derived from voltage and current (mA) instead.
func plugPower(v any, status map[string]any) string {
	if n, ok := toFloat(v); ok {
		return fmt.Sprintf("%.1f W", n)
	}
	volts, vok := toFloat(status["voltage"])
	milliamps, aok := toFloat(status["electricCurrent"])
	if vok && aok {
		return fmt.Sprintf("%.1f W", volts*milliamps/1000)
	}
	if s, ok := v.(string); ok {
		return s
	}
	return Missing
}

// toFloat reports false for values that are not finite numbers.
func toFloat(v any) (float64, bool) {
	n, ok := rawFloat(v)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func rawFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		n, err := x.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	default:
		if n, ok := toFloat(v); ok {
			return n != 0
		}
		return true
	}
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
