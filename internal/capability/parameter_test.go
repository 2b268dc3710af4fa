package capability

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

func TestResolveValue(t *testing.T) {
	curtain := Range{Min: 0, Max: 100, Default: 50, Map: curtainPosition}
	volume := Range{Min: 0, Max: 100, Default: 50}
	mode := Enum{Options: []Option{{"Toggle", 0}, {"Edge", 1}}, Default: 0}
	noDefault := Enum{Options: []Option{{"A", "a"}}}
	color := Text{Default: "255:255:255"}
	bare := Text{}
	jsonText := Text{Default: `{"mode":1,"fanGear":1}`, ParseAsJSON: true}
	jsonNoDefault := Text{ParseAsJSON: true}

	tests := []struct {
		name    string
		spec    Parameter
		current any
		want    any
	}{
		{"no parameter", nil, "ignored", DefaultParameter},

		{"range mapped", curtain, 64.6, "0,ff,65"},
		{"range mapped from string", curtain, "30", "0,ff,30"},
		{"range mapped from garbage", curtain, "abc", "0,ff,50"},
		{"range plain", volume, 25, float64(25)},
		{"range unset", volume, nil, float64(50)},
		{"range NaN uses default", volume, "NaN", float64(50)},
		{"range Inf uses default", volume, "Inf", float64(50)},
		{"range float NaN uses default", volume, math.NaN(), float64(50)},
		{"range above max clamped", volume, 250, float64(100)},
		{"range below min clamped", volume, -3, float64(0)},
		{"range mapped NaN", curtain, "NaN", "0,ff,50"},
		{"range mapped Inf", curtain, "Inf", "0,ff,50"},
		{"range mapped -Inf", curtain, "-Inf", "0,ff,50"},
		{"range mapped huge clamped", curtain, "1e300", "0,ff,100"},

		{"enum value", mode, 1, 1},
		{"enum unset uses default", mode, nil, 0},
		{"enum unset without default", noDefault, nil, DefaultParameter},

		{"text value", color, "0:0:255", "0:0:255"},
		{"text unset uses default", color, nil, "255:255:255"},
		{"text unset without default", bare, nil, DefaultParameter},
		{"text empty passes through", color, "", ""},

		{"json valid", jsonText, `{"mode":2}`, map[string]any{"mode": float64(2)}},
		{"json unset uses default", jsonText, nil, map[string]any{"mode": float64(1), "fanGear": float64(1)}},
		{"json empty uses default", jsonText, "", map[string]any{"mode": float64(1), "fanGear": float64(1)}},
		{"json malformed falls back to raw", jsonText, `{"mode":`, `{"mode":`},
		{"json scalar", jsonText, "7", float64(7)},
		{"json unset without default", jsonNoDefault, nil, map[string]any{}},
		{"json already decoded", jsonText, map[string]any{"mode": 3}, map[string]any{"mode": 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveValue(tt.spec, tt.current)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ResolveValue() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestResolveValue_RangeAlwaysMarshals(t *testing.T) {
	volume := Range{Min: 0, Max: 100, Default: 50}
	for _, in := range []any{"NaN", "Inf", "-Inf", "1e300", math.Inf(1), "abc", nil} {
		got := ResolveValue(volume, in)
		if _, err := json.Marshal(got); err != nil {
			t.Errorf("ResolveValue(%v) = %v does not marshal: %v", in, got, err)
		}
	}
}

func TestResolveValue_MalformedDefaultNeverPanics(t *testing.T) {
	spec := Text{Default: "{broken", ParseAsJSON: true}
	if got := ResolveValue(spec, nil); got != "{broken" {
		t.Errorf("ResolveValue() = %#v, want raw default", got)
	}
}

func TestResolveValue_EveryTableDefault(t *testing.T) {
	// Resolving each command's preselected value must yield something sendable.
	for _, p := range Profiles() {
		for _, c := range p.Commands {
			got := ResolveValue(c.Parameter, DefaultValue(c.Parameter))
			if got == nil {
				t.Errorf("%s/%s resolved to nil", p.Key, c.Label)
			}
			if text, ok := c.Parameter.(Text); ok && text.ParseAsJSON {
				if _, isString := got.(string); isString {
					t.Errorf("%s/%s default JSON %q did not decode", p.Key, c.Label, text.Default)
				}
			}
		}
	}
}
