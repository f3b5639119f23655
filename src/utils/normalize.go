package utils

import (
	"encoding/json"
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------

// NormalizeNumber converts a decoded provider payload value to a float64.
// The feed emits "-" for suspended or illiquid securities and mixes string
// and numeric encodings per field, so anything that does not parse becomes
// 0.0 rather than failing the whole pull.
func NormalizeNumber(raw interface{}) float64 {
	switch v := raw.(type) {
	case nil:
		return 0.0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0.0
		}
		return f
	case string:
		s := strings.TrimSpace(v)
		if s == "" || s == "-" {
			return 0.0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0.0
		}
		return f
	default:
		return 0.0
	}
}

// -----------------------------------------------------------------------------

// NormalizeString returns the value if it decoded as a string, else "".
func NormalizeString(raw interface{}) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return ""
}
