package core

import (
	"fmt"
	"time"
)

// timestampLayout is the wire format required by §6: ISO-8601, UTC, millisecond
// precision, explicit Z suffix (e.g. "2026-02-09T12:00:00.000Z").
const timestampLayout = "2006-01-02T15:04:05.000Z"

// ParseTimestamp parses a §6 wire timestamp into a UTC time.Time truncated to
// millisecond precision.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		// Tolerate RFC3339Nano input (e.g. no trailing zero millis) from
		// hand-written fixtures, then re-normalize below.
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
	}
	return t.UTC().Truncate(time.Millisecond), nil
}

// FormatTimestamp renders t in the §6 wire format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Millisecond).Format(timestampLayout)
}
