package capability

import (
	"encoding/json"
	"math"
)

// ResolveValue turns a control's current value into the literal sent as the
// command parameter. It never fails; an unusable value degrades to the most
// specific default available:
//
//   - no parameter: DefaultParameter
//   - Range: the value as a finite number (spec default otherwise), clamped
//     to [Min, Max], then Map
//   - Enum: the value, else the spec default, else DefaultParameter
//   - Text: the value, else the spec default, else DefaultParameter; with
//     ParseAsJSON the chosen text is decoded, and malformed JSON is sent as
//     the raw string instead
func ResolveValue(p Parameter, current any) any {
	switch spec := p.(type) {
	case nil:
		return DefaultParameter

	case Range:
		n, ok := toFloat(current)
		if !ok {
			n = spec.Default
		}
		if spec.Max > spec.Min {
			n = math.Min(math.Max(n, spec.Min), spec.Max)
		}
		if spec.Map != nil {
			return spec.Map(n)
		}
		return n

	case Enum:
		if current != nil {
			return current
		}
		if spec.Default != nil {
			return spec.Default
		}
		return DefaultParameter

	case Text:
		raw, isString := current.(string)
		if current != nil && !isString {
			// Structured values (already-decoded JSON) pass through.
			return current
		}
		if spec.ParseAsJSON {
			src := firstNonEmpty(raw, spec.Default, "{}")
			var decoded any
			if err := json.Unmarshal([]byte(src), &decoded); err == nil {
				return decoded
			}
			return firstNonEmpty(raw, spec.Default, DefaultParameter)
		}
		if isString {
			return raw
		}
		return firstNonEmpty(spec.Default, DefaultParameter)
	}

	return DefaultParameter
}

// DefaultValue is the control value a UI should preselect for p, or nil.
func DefaultValue(p Parameter) any {
	switch spec := p.(type) {
	case Range:
		return spec.Default
	case Enum:
		return spec.Default
	case Text:
		if spec.Default != "" {
			return spec.Default
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
