package minizip

import (
	"testing"
	"time"
)

func TestDOSDateTimeRoundTrip(t *testing.T) {
	cases := []time.Time{
		time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.July, 30, 13, 45, 32, 0, time.UTC),
		time.Date(2107, time.December, 31, 23, 59, 58, 0, time.UTC),
	}
	for _, want := range cases {
		date, tm := timeToDOSDateTime(want)
		got, ok := dosDateTimeToTime(date, tm)
		if !ok {
			t.Fatalf("dosDateTimeToTime(%v) reported invalid", want)
		}
		if !got.Equal(want) {
			t.Errorf("round trip %v -> %v", want, got)
		}
	}
}

func TestTimeToDOSDateTimeToleratedYearRanges(t *testing.T) {
	// Year 26 means 2026 per the [0,79] range.
	low := time.Date(26, time.March, 5, 10, 0, 0, 0, time.UTC)
	date, tm := timeToDOSDateTime(low)
	got, ok := dosDateTimeToTime(date, tm)
	if !ok || got.Year() != 2026 {
		t.Fatalf("year 26 did not normalize to 2026: %v ok=%v", got, ok)
	}

	// Year 126 means 2026 per the [80,207] range.
	mid := time.Date(126, time.March, 5, 10, 0, 0, 0, time.UTC)
	date, tm = timeToDOSDateTime(mid)
	got, ok = dosDateTimeToTime(date, tm)
	if !ok || got.Year() != 2026 {
		t.Fatalf("year 126 did not normalize to 2026: %v ok=%v", got, ok)
	}
}

func TestTimeToDOSDateTimeOutOfRange(t *testing.T) {
	future := time.Date(3000, time.January, 1, 0, 0, 0, 0, time.UTC)
	date, tm := timeToDOSDateTime(future)
	if date != 0 || tm != 0 {
		t.Errorf("expected zeroed output for out-of-range year, got date=%d time=%d", date, tm)
	}
}

func TestDOSDateTimeInvalid(t *testing.T) {
	// Month 0 is invalid.
	if _, ok := dosDateTimeToTime(0x0000, 0); ok {
		t.Error("expected invalid for month 0")
	}
}

func TestNTFSTicksRoundTrip(t *testing.T) {
	want := time.Date(2026, time.July, 30, 12, 0, 0, 0, time.UTC)
	ticks := timeToNTFSTicks(want)
	got := ntfsTicksToTime(ticks)
	if !got.Equal(want) {
		t.Errorf("NTFS round trip %v -> %v", want, got)
	}
}
