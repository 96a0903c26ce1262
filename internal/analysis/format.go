package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// pct returns 100*part/whole rounded to one decimal place. A zero (or
// negative-zero, NaN) whole yields 0.0 so callers never divide by zero.
func pct(part, whole float64) float64 {
	if whole == 0 || math.IsNaN(whole) {
		return 0.0
	}
	return math.Round(1000.0*part/whole) / 10.0
}

// formatPct renders a percentage with exactly one decimal place.
func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// formatQuality renders a quality score with exactly three decimal places.
func formatQuality(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// formatCount renders a count with thousands separators, e.g. 1234567 ->
// "1,234,567". JSON numbers arrive as float64; the fractional part is
// truncated because these are always whole counts.
func formatCount(v float64) string {
	n := int64(v)
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// The backend omits fields freely, so every read goes through a defaulting
// accessor. A present-but-wrong-typed value also falls back to the default.

func getString(m map[string]any, key, def string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return def
}

func getFloat(m map[string]any, key string, def float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return def
}

// lookupFloat reports whether the key holds a usable number.
func lookupFloat(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

func getBool(m map[string]any, key string, def bool) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return def
}

func getStrings(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			out = append(out, s)
		} else {
			out = append(out, fmt.Sprint(e))
		}
	}
	return out
}
