package domain

import (
	"strings"
	"time"
)

// PublicTimeLayout renders instants in UTC with millisecond precision and a
// literal Z suffix, e.g. 2022-02-01T12:00:00.000Z.
const PublicTimeLayout = "2006-01-02T15:04:05.000Z"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(PublicTimeLayout)
}

// ParseTimestamp reads an ISO-8601 instant. Inputs without a zone are UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
