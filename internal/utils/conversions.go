package utils

import "strconv"

// ToInt64 converts the loosely typed numeric values found in decoded JSON and
// JWT claims (float64, json.Number, numeric strings) into an int64.
func ToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case interface{ Int64() (int64, error) }:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}
