// ABOUTME: Timestamp coercion for heterogeneous store-native representations
// ABOUTME: Normalizes every backend timestamp to time.Time before it reaches the engine

package store

import (
	"fmt"
	"time"
)

// coerceTimestamp converts a store-native timestamp value into a time.Time.
//
// Records written by different client versions carry different
// representations: native timestamps surface as time.Time, older writers
// stored RFC 3339 strings, and the earliest ones stored epoch milliseconds.
// All ordering decisions happen client-side, so everything must be coerced
// to one canonical type here and never compared raw.
func coerceTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing timestamp string %q: %w", t, err)
		}
		return parsed, nil
	case int64:
		return time.UnixMilli(t), nil
	case float64:
		return time.UnixMilli(int64(t)), nil
	case nil:
		return time.Time{}, fmt.Errorf("missing timestamp")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}
