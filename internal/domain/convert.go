package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// DateTimeLayout is the wall-clock format users type and see.
const DateTimeLayout = "2006-01-02 15:04"

// InvalidTimeDisplay is what UTCToLocal renders when the timezone is
// unusable. It is a display sentinel, not an error: the sweep formats
// times for many users and must not fail on one bad row.
const InvalidTimeDisplay = "invalid time"

var (
	ErrBadDateTime = errors.New("expected YYYY-MM-DD HH:MM")
	ErrBadClock    = errors.New("expected HH:MM")
)

var (
	dateTimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}$`)
	clockRe    = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// ValidateTZ checks that tz is a valid IANA location and returns its
// canonical name.
func ValidateTZ(tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}

// LocalToUTC interprets s ("YYYY-MM-DD HH:MM") as wall-clock time in tz
// and returns the absolute instant in UTC. Ambiguous local times around
// DST transitions resolve however ParseInLocation resolves them; the
// result is deterministic.
func LocalToUTC(tz, s string) (time.Time, error) {
	if !dateTimeRe.MatchString(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDateTime, s)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(DateTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// UTCToLocal formats an absolute instant as wall-clock time in tz.
// Unknown timezones yield InvalidTimeDisplay instead of an error.
func UTCToLocal(tz string, t time.Time) string {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return InvalidTimeDisplay
	}
	return t.In(loc).Format(DateTimeLayout)
}

// NextDailyOccurrence returns the next instant at or after now whose
// wall clock in tz equals s ("HH:MM"). If today's slot has already
// passed, it rolls forward one calendar day in local time, which keeps
// the wall clock stable across DST changes.
func NextDailyOccurrence(tz, s string, now time.Time) (time.Time, error) {
	if !clockRe.MatchString(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := time.ParseInLocation("15:04", s, loc)
	if err != nil {
		return time.Time{}, err
	}

	localNow := now.In(loc)
	next := time.Date(localNow.Year(), localNow.Month(), localNow.Day(),
		clock.Hour(), clock.Minute(), 0, 0, loc)
	if next.Before(localNow) {
		next = time.Date(next.Year(), next.Month(), next.Day()+1,
			clock.Hour(), clock.Minute(), 0, 0, loc)
	}
	return next.UTC(), nil
}

// NextCalendarDay returns the instant one local calendar day after t,
// same wall clock in tz. This is calendar arithmetic, not +24h: across
// a DST boundary the elapsed time is 23 or 25 hours.
func NextCalendarDay(tz string, t time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	lt := t.In(loc)
	next := time.Date(lt.Year(), lt.Month(), lt.Day()+1,
		lt.Hour(), lt.Minute(), lt.Second(), 0, loc)
	return next.UTC(), nil
}
