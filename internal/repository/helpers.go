package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// asMap coerces a SurrealDB result row into a field map.
func asMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

// fieldString reads a string field, tolerating absence.
func fieldString(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// fieldInt reads an integer field across the numeric types the driver may
// decode into.
func fieldInt(m map[string]interface{}, key string) int {
	switch n := m[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// fieldDecimal reads a fixed-precision amount stored as a string.
func fieldDecimal(m map[string]interface{}, key string) (decimal.Decimal, error) {
	s := fieldString(m, key)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s %q: %w", key, s, err)
	}
	return d, nil
}

// fieldTimeMs reads a millisecond epoch timestamp.
func fieldTimeMs(m map[string]interface{}, key string) time.Time {
	switch n := m[key].(type) {
	case int64:
		return time.UnixMilli(n).UTC()
	case uint64:
		return time.UnixMilli(int64(n)).UTC()
	case float64:
		return time.UnixMilli(int64(n)).UTC()
	case time.Time:
		return n.UTC()
	default:
		return time.Time{}
	}
}

// fieldStringMap reads a string-to-string object field.
func fieldStringMap(m map[string]interface{}, key string) map[string]string {
	out := make(map[string]string)
	raw, ok := m[key].(map[string]interface{})
	if !ok {
		return out
	}
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
