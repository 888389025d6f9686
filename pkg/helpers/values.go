package helpers

import "strings"

// Ptr is used for optional request fields such as temperature.
func Ptr[T any](val T) *T {
	return &val
}

func Value[T any](val *T) T {
	var zero T
	return ValueOr(val, zero)
}

func ValueOr[T any](val *T, fallback T) T {
	if val == nil {
		return fallback
	}
	return *val
}

// FirstNonEmpty returns the first value that is not blank, or "".
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
