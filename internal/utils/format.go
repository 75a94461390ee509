package utils

import (
	"strconv"
	"time"
)

const DateTimeSec = "2006-01-02 15:04:05"

// TimeOrDash formats a time value using the given layout, or returns "-" if zero.
func TimeOrDash(t time.Time, layout string) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(layout)
}

// IntOrEmpty renders an optional integer, using "" for nil.
func IntOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
