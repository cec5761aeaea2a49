// Package timeutil implements the pure, deterministic time-and-recurrence
// engine (§4.1 C1): local-time slot enumeration, recurrence expansion,
// the overlap predicate, and timezone-correct materialization to UTC.
// Every function here except BookingReference (which reads crypto/rand) is
// side-effect free; parsing functions fail closed on invalid input with
// apierr.KindBadInput.
package timeutil

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strconv"
	"strings"
	"time"

	"caretime/apierr"
)

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date, failing BadInput on malformed input.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apierr.Newf(apierr.KindBadInput, "invalid date %q: %v", s, err)
	}
	return t, nil
}

// FormatDate renders a date back to YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseHM parses an HH:MM 24-hour wall-clock value into minutes since
// midnight, failing BadInput on malformed input.
func ParseHM(hm string) (int, error) {
	parts := strings.Split(hm, ":")
	if len(parts) != 2 {
		return 0, apierr.Newf(apierr.KindBadInput, "invalid time %q: expected HH:MM", hm)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, apierr.Newf(apierr.KindBadInput, "invalid time %q: expected HH:MM", hm)
	}
	return h*60 + m, nil
}

// FormatHM renders minutes-since-midnight back to HH:MM.
func FormatHM(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// EnumerateSlots returns the local slot start times (minutes since midnight)
// for a template window, per §4.1: s0=start, s(i+1)=s(i)+slotMin+breakMin,
// while s(i)+slotMin <= end. Empty when end<=start or the first slot can't fit.
func EnumerateSlots(startMin, endMin, slotMin, breakMin int) []int {
	if endMin <= startMin || slotMin <= 0 {
		return nil
	}
	var starts []int
	for s := startMin; s+slotMin <= endMin; s += slotMin + breakMin {
		starts = append(starts, s)
	}
	return starts
}

// ExpandRecurrence returns the target dates for a recurring availability
// template (§4.1). pattern is one of "daily", "weekly", "monthly"; "none"
// (or empty) yields just startDate. Monthly recurrence preserves
// day-of-month and SKIPS an occurrence whose target month lacks that day
// (e.g. a Jan 31 start produces no February occurrence) — this tie-break
// is the one §4.1 asks implementations to document.
func ExpandRecurrence(startDate, endDate time.Time, pattern string) ([]time.Time, error) {
	if endDate.Before(startDate) {
		return nil, apierr.New(apierr.KindBadInput, "recurrence end date precedes start date")
	}
	if pattern == "" || pattern == "none" {
		return []time.Time{startDate}, nil
	}

	var dates []time.Time
	day := startDate.Day()
	cur := startDate
	for !cur.After(endDate) {
		switch pattern {
		case "daily":
			dates = append(dates, cur)
			cur = cur.AddDate(0, 0, 1)
		case "weekly":
			dates = append(dates, cur)
			cur = cur.AddDate(0, 0, 7)
		case "monthly":
			dates = append(dates, cur)
			cur = nextMonthlyOccurrence(cur, day)
		default:
			return nil, apierr.Newf(apierr.KindBadInput, "unknown recurrence pattern %q", pattern)
		}
	}
	return dates, nil
}

// nextMonthlyOccurrence advances cur by one calendar month, preserving
// day-of-month; if the target month is too short to contain that day, the
// occurrence is skipped entirely (the returned time lands on the following
// valid month instead of rolling over into an unintended day).
func nextMonthlyOccurrence(cur time.Time, day int) time.Time {
	y, m, _ := cur.Date()
	for {
		m++
		if m > 12 {
			m = 1
			y++
		}
		lastDay := daysInMonth(y, m)
		if day <= lastDay {
			return time.Date(y, m, day, 0, 0, 0, 0, cur.Location())
		}
		// target month too short for this day-of-month: skip and keep looking
	}
}

func daysInMonth(year int, month time.Month) int {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	lastOfThis := firstOfNext.AddDate(0, 0, -1)
	return lastOfThis.Day()
}

// Conflict implements the half-open overlap predicate (§4.1, GLOSSARY):
// [aStart,aEnd) and [bStart,bEnd) overlap iff aStart<bEnd && bStart<aEnd.
// Adjacent intervals (aEnd==bStart) do not conflict.
func Conflict(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ToUTC interprets a local wall-clock date+time in the given IANA zone and
// returns the absolute UTC instant (§4.1). DST policy: a wall time skipped
// by a spring-forward transition is read with the offset in force before
// the gap, so it shifts forward by the gap's length (02:30 in a 02:00-03:00
// gap becomes 03:30); a wall time repeated by a fall-back transition
// resolves to the earlier of its two instants.
func ToUTC(date time.Time, minutesSinceMidnight int, tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, apierr.Newf(apierr.KindBadInput, "invalid timezone %q: %v", tz, err)
	}
	y, m, d := date.Date()
	h, mi := minutesSinceMidnight/60, minutesSinceMidnight%60
	local := time.Date(y, m, d, h, mi, 0, 0, loc)
	_, off := local.Zone()
	_, prevOff := local.Add(-24 * time.Hour).Zone()
	if local.Hour() != h || local.Minute() != mi {
		// skipped wall time: apply the pre-gap offset
		local = time.Date(y, m, d, h, mi, 0, 0, time.FixedZone("", prevOff))
	} else if prevOff > off {
		// possibly repeated wall time: prefer the earlier instant
		if earlier := local.Add(-time.Duration(prevOff-off) * time.Second); earlier.Hour() == h && earlier.Minute() == mi {
			local = earlier
		}
	}
	return local.UTC(), nil
}

// BookingReference mints an opaque, URL-safe, globally-unique-with-
// overwhelming-probability booking token: a YYYYMMDD time prefix plus 40
// bits of base32 entropy (§4.1). Store-side uniqueness constraints, not
// this function, are the uniqueness guarantee of record.
func BookingReference(now time.Time) (string, error) {
	buf := make([]byte, 5) // 40 bits, well over the 22-bit floor §4.1 asks for
	if _, err := rand.Read(buf); err != nil {
		return "", apierr.Internal(err)
	}
	entropy := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf)
	return fmt.Sprintf("%s-%s", now.Format("20060102"), entropy), nil
}
