package normalize

import (
	"encoding/json"
	"strconv"
)

// coerceFloat converts a raw payload value to a float. Malformed values
// are treated as absent, never as an error: the degrade-to-neutral
// policy lives here so scoring code can trust its inputs.
func coerceFloat(v any) *float64 {
	switch value := v.(type) {
	case nil:
		return nil
	case float64:
		return &value
	case float32:
		f := float64(value)
		return &f
	case int:
		f := float64(value)
		return &f
	case int64:
		f := float64(value)
		return &f
	case json.Number:
		f, err := value.Float64()
		if err != nil {
			return nil
		}
		return &f
	case string:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// floatOrZero unwraps a coerced value with zero as the neutral default.
func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// coerceString returns the string form of a payload value, or "" when
// the value is absent or not a string.
func coerceString(v any) string {
	s, _ := v.(string)
	return s
}

// firstValue returns the first present key from the payload. Provider
// payloads alias field names (bid vs bid_price), resolved once here.
func firstValue(payload map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := payload[key]; ok && v != nil {
			return v
		}
	}
	return nil
}
