package utils

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	now := time.Date(2024, 1, 15, 17, 42, 9, 123456789, loc)
	start := StartOfDay(now)

	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 || start.Nanosecond() != 0 {
		t.Errorf("StartOfDay returned non-midnight time: %v", start)
	}
	if start.Year() != 2024 || start.Month() != time.January || start.Day() != 15 {
		t.Errorf("StartOfDay changed the calendar day: %v", start)
	}
	if start.Location() != loc {
		t.Errorf("StartOfDay changed the location: %v", start.Location())
	}
}

func TestDayKey(t *testing.T) {
	ts := time.Date(2024, 1, 15, 23, 59, 59, 0, time.UTC)
	if got := DayKey(ts); got != "2024-01-15" {
		t.Errorf("DayKey = %q, want 2024-01-15", got)
	}
}

func TestMillisRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Millisecond)
	millis := TimeToMillis(now)
	back := MillisToTime(millis)

	if !back.Equal(now) {
		t.Errorf("round trip mismatch: %v != %v", back, now)
	}
}

func TestTrailingWindowMillis(t *testing.T) {
	ts := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	got := TrailingWindowMillis(ts, 7)
	want := TimeToMillis(time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC))

	if got != want {
		t.Errorf("TrailingWindowMillis = %d, want %d", got, want)
	}
}
