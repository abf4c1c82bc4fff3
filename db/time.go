package db

import "time"

// TimeFormatLayout is the storage layout for all timestamps: RFC3339, UTC,
// second precision. Matches the strftime('%Y-%m-%dT%H:%M:%SZ','now') defaults
// the SQL schema uses.
const TimeFormatLayout = "2006-01-02T15:04:05Z"

// TimeFormat renders t for storage.
func TimeFormat(t time.Time) string {
	return t.UTC().Format(TimeFormatLayout)
}

// TimeParse parses a stored timestamp. Empty input yields the zero time.
func TimeParse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(TimeFormatLayout, s)
}
