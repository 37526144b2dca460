package calculator

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToScalar collapses a loosely typed numeric value into a float64, returning 0 for
// anything that is not a single finite number.
func ToScalar(v any) float64 {
	return ToScalarOr(v, 0)
}

// ToScalarOr is ToScalar with an explicit fallback.
func ToScalarOr(v any, def float64) float64 {
	f, ok := scalar(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// Nullable returns a pointer to v, or nil when v is null or infinite.
func Nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ToSafeInt truncates v toward zero, returning def when v is not a finite number.
func ToSafeInt(v any, def int64) int64 {
	f, ok := scalar(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return def
	}
	return int64(f)
}

func scalar(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		return 0, false
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case *float64:
		if n == nil {
			return 0, false
		}
		return *n, true
	case []float64:
		if len(n) != 1 {
			return 0, false
		}
		return n[0], true
	case []any:
		if len(n) != 1 {
			return 0, false
		}
		return scalar(n[0])
	default:
		return 0, false
	}
}
