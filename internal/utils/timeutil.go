package utils

import "time"

// DisplayTimeFormat is the layout used for human-facing timestamps.
const DisplayTimeFormat = "2006-01-02 15:04"

// ToLocalTime converts a stored UTC instant into the display timezone.
// Stored values stay UTC; this runs only at the presentation boundary.
func ToLocalTime(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc)
}

// FormatLocal renders a UTC instant in the display timezone.
func FormatLocal(t time.Time, loc *time.Location) string {
	return ToLocalTime(t, loc).Format(DisplayTimeFormat)
}
