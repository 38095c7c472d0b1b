package domain

import (
	"errors"
	"testing"
	"time"
)

// helper: build a time in given tz and return its UTC
func mustLocalUTC(t *testing.T, tz string, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(tz)
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	lt := time.Date(y, m, d, hh, mm, 0, 0, loc)
	return lt.UTC()
}

func TestLocalToUTC_Paris(t *testing.T) {
	got, err := LocalToUTC("Europe/Paris", "2025-06-16 14:00")
	if err != nil {
		t.Fatalf("LocalToUTC: %v", err)
	}
	// CEST is UTC+2 in June.
	want := time.Date(2025, time.June, 16, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestLocalToUTC_RoundTrip(t *testing.T) {
	cases := []struct {
		tz string
		s  string
	}{
		{"Europe/Paris", "2025-06-16 14:00"},
		{"America/New_York", "2025-01-02 23:59"},
		{"Asia/Tokyo", "2024-12-31 00:00"},
		{"UTC", "2025-03-01 12:30"},
	}
	for _, c := range cases {
		abs, err := LocalToUTC(c.tz, c.s)
		if err != nil {
			t.Fatalf("%s %s: %v", c.tz, c.s, err)
		}
		if got := UTCToLocal(c.tz, abs); got != c.s {
			t.Fatalf("%s: round-trip got %s, want %s", c.tz, got, c.s)
		}
	}
}

func TestLocalToUTC_Invalid(t *testing.T) {
	cases := []struct {
		name string
		tz   string
		s    string
	}{
		{"unknown tz", "Mars/Olympus", "2025-06-16 14:00"},
		{"bad pattern", "Europe/Paris", "16/06/2025 14:00"},
		{"missing time", "Europe/Paris", "2025-06-16"},
		{"bad calendar date", "Europe/Paris", "2025-02-30 10:00"},
		{"bad hour", "Europe/Paris", "2025-06-16 25:00"},
	}
	for _, c := range cases {
		if _, err := LocalToUTC(c.tz, c.s); err == nil {
			t.Fatalf("%s: expected error for %q in %q", c.name, c.s, c.tz)
		}
	}
}

func TestUTCToLocal_UnknownTZ(t *testing.T) {
	got := UTCToLocal("Nowhere/Void", time.Now())
	if got != InvalidTimeDisplay {
		t.Fatalf("want sentinel %q, got %q", InvalidTimeDisplay, got)
	}
}

func TestNextDailyOccurrence_LaterToday(t *testing.T) {
	// 08:00 local, asking for 09:00 → today's 09:00
	now := mustLocalUTC(t, "Europe/Paris", 2025, time.June, 16, 8, 0)
	got, err := NextDailyOccurrence("Europe/Paris", "09:00", now)
	if err != nil {
		t.Fatalf("NextDailyOccurrence: %v", err)
	}
	want := mustLocalUTC(t, "Europe/Paris", 2025, time.June, 16, 9, 0)
	if !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestNextDailyOccurrence_AlreadyPassed(t *testing.T) {
	// 10:00 local, asking for 09:00 → tomorrow's 09:00
	now := mustLocalUTC(t, "Europe/Paris", 2025, time.June, 16, 10, 0)
	got, err := NextDailyOccurrence("Europe/Paris", "09:00", now)
	if err != nil {
		t.Fatalf("NextDailyOccurrence: %v", err)
	}
	want := mustLocalUTC(t, "Europe/Paris", 2025, time.June, 17, 9, 0)
	if !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestNextDailyOccurrence_BadClock(t *testing.T) {
	now := time.Now()
	if _, err := NextDailyOccurrence("Europe/Paris", "9:00", now); !errors.Is(err, ErrBadClock) {
		t.Fatalf("expected ErrBadClock, got %v", err)
	}
	if _, err := NextDailyOccurrence("Mars/Olympus", "09:00", now); err == nil {
		t.Fatal("expected error for unknown tz")
	}
}

func TestNextCalendarDay_AcrossDST(t *testing.T) {
	// Paris springs forward on 2025-03-30: 02:00 → 03:00.
	// 09:00 on the 29th re-arms to 09:00 on the 30th, 23 elapsed hours.
	fired := mustLocalUTC(t, "Europe/Paris", 2025, time.March, 29, 9, 0)
	got, err := NextCalendarDay("Europe/Paris", fired)
	if err != nil {
		t.Fatalf("NextCalendarDay: %v", err)
	}
	want := mustLocalUTC(t, "Europe/Paris", 2025, time.March, 30, 9, 0)
	if !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	if elapsed := got.Sub(fired); elapsed != 23*time.Hour {
		t.Fatalf("want 23h elapsed across spring-forward, got %v", elapsed)
	}
	if local := UTCToLocal("Europe/Paris", got); local != "2025-03-30 09:00" {
		t.Fatalf("wall clock drifted: %s", local)
	}
}

func TestValidateTZ(t *testing.T) {
	tz, err := ValidateTZ("Europe/Paris")
	if err != nil || tz != "Europe/Paris" {
		t.Fatalf("want Europe/Paris, got %q err %v", tz, err)
	}
	if _, err := ValidateTZ("Not/AZone"); err == nil {
		t.Fatal("expected error for unknown tz")
	}
}
