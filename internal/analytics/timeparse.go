package analytics

import (
	"strings"
	"time"
)

// Layouts tried in order. The first two are the shapes the application
// itself writes; the rest cover what the SQL drivers emit when a typed
// timestamp column is read back as text.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// ParseTimestamp parses a stored date-time string. Stores touched by
// several generations of tooling hold a mix of formats plus the
// occasional garbage value, so a failed parse reports ok=false instead
// of an error; one bad row must never abort a whole metric.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
