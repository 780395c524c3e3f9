// Package config holds value conversions shared by the configuration stores.
//
// Values arrive from TOML (int64, float64, []any), from environment
// variables (string) or from code (int, bool). The helpers accept all of them.
package config

import (
	"strconv"
	"strings"
	"time"
)

// AsString returns v as a string, or "" if it is not one.
func AsString(v any) string {
	s, _ := v.(string)
	return s
}

// AsInt converts numeric values and numeric strings to int.
func AsInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// AsFloat converts numeric values and numeric strings to float64.
func AsFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// AsBool converts booleans and boolean strings ("true", "1", "yes").
func AsBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true", "yes", "on":
			return true
		}
	}
	return false
}

// AsStringSlice converts string slices, TOML arrays and comma-separated strings.
func AsStringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		result := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	case string:
		if s == "" {
			return nil
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	default:
		return nil
	}
}

// ParseDuration reads a duration string ("30s") or a number of seconds.
// Returns 0 when the value is absent or malformed.
func ParseDuration(v any) time.Duration {
	switch d := v.(type) {
	case string:
		if parsed, err := time.ParseDuration(strings.TrimSpace(d)); err == nil {
			return parsed
		}
		if secs := AsFloat(d); secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
		return 0
	case time.Duration:
		return d
	default:
		if secs := AsFloat(v); secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
		return 0
	}
}
