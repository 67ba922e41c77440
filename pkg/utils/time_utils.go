package utils

import (
	"time"
)

// GetCurrentTimeMillis returns current time in milliseconds since epoch
func GetCurrentTimeMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// MillisToTime converts milliseconds since epoch to time.Time
func MillisToTime(millis int64) time.Time {
	return time.Unix(0, millis*int64(time.Millisecond))
}

// TimeToMillis converts time.Time to milliseconds since epoch
func TimeToMillis(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

// StartOfDay returns midnight of the given time in its location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfDayMillis returns midnight of the given time in epoch milliseconds
func StartOfDayMillis(t time.Time) int64 {
	return TimeToMillis(StartOfDay(t))
}

// TrailingWindowMillis returns the epoch-millisecond timestamp of the given
// number of days before t
func TrailingWindowMillis(t time.Time, days int) int64 {
	return TimeToMillis(t.Add(-time.Duration(days) * 24 * time.Hour))
}

// DayKey formats a time as a calendar-day key (ISO date, local time)
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatTime formats time in ISO 8601 format
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ParseTime parses ISO 8601 formatted time string
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(time.RFC3339, timeStr)
}
