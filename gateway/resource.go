package gateway

import (
	"fmt"
	"net/url"
)

// Resource formats a path template. String arguments are escaped as single
// path segments; other arguments are formatted as-is.
//
//	Resource("/api/doctor/specialization/%s/", "Ear, Nose & Throat")
func Resource(format string, args ...any) string {
	escaped := make([]any, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			escaped[i] = url.PathEscape(s)
			continue
		}
		escaped[i] = a
	}
	return fmt.Sprintf(format, escaped...)
}

// WithQuery appends encoded query values to a path.
func WithQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
