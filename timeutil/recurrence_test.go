package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerateSlots(t *testing.T) {
	cases := []struct {
		name                        string
		start, end, slot, breakMin int
		want                        []int
	}{
		{"fits exactly", 9 * 60, 10 * 60, 30, 0, []int{540, 570}},
		{"with break", 9 * 60, 10 * 60, 20, 10, []int{540, 570}},
		{"end before start", 10 * 60, 9 * 60, 30, 0, nil},
		{"cannot fit first slot", 9 * 60, 9*60 + 10, 30, 0, nil},
		{"single slot fits exactly to the minute", 9 * 60, 9*60 + 30, 30, 0, []int{540}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := EnumerateSlots(tc.start, tc.end, tc.slot, tc.breakMin)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExpandRecurrenceDaily(t *testing.T) {
	start, _ := ParseDate("2030-03-04")
	end, _ := ParseDate("2030-03-06")
	dates, err := ExpandRecurrence(start, end, "daily")
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, "2030-03-04", FormatDate(dates[0]))
	assert.Equal(t, "2030-03-06", FormatDate(dates[2]))
}

func TestExpandRecurrenceWeekly(t *testing.T) {
	start, _ := ParseDate("2030-03-04")
	end, _ := ParseDate("2030-03-25")
	dates, err := ExpandRecurrence(start, end, "weekly")
	require.NoError(t, err)
	require.Len(t, dates, 4)
	assert.Equal(t, "2030-03-25", FormatDate(dates[3]))
}

func TestExpandRecurrenceMonthlySkipsShortMonths(t *testing.T) {
	start, _ := ParseDate("2030-01-31")
	end, _ := ParseDate("2030-05-01")
	dates, err := ExpandRecurrence(start, end, "monthly")
	require.NoError(t, err)
	// Jan 31 -> Feb has no 31st (skipped) -> Mar 31 -> Apr has no 31st (skipped)
	want := []string{"2030-01-31", "2030-03-31"}
	var got []string
	for _, d := range dates {
		got = append(got, FormatDate(d))
	}
	assert.Equal(t, want, got)
}

func TestExpandRecurrenceRejectsInvertedRange(t *testing.T) {
	start, _ := ParseDate("2030-03-10")
	end, _ := ParseDate("2030-03-01")
	_, err := ExpandRecurrence(start, end, "daily")
	require.Error(t, err)
}

func TestConflictHalfOpen(t *testing.T) {
	base := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	a1, a2 := base, base.Add(30*time.Minute)
	// adjacent: b starts exactly when a ends -> no conflict
	b1, b2 := a2, a2.Add(30*time.Minute)
	assert.False(t, Conflict(a1, a2, b1, b2))

	// overlapping by a minute
	c1, c2 := a2.Add(-time.Minute), a2.Add(29*time.Minute)
	assert.True(t, Conflict(a1, a2, c1, c2))
}

func TestToUTCPlainOffset(t *testing.T) {
	date, _ := ParseDate("2030-06-15")
	got, err := ToUTC(date, 9*60, "America/New_York")
	require.NoError(t, err)
	// mid-June in New York is EDT (UTC-4)
	assert.Equal(t, time.Date(2030, 6, 15, 13, 0, 0, 0, time.UTC), got)
}

func TestToUTCSpringForwardSkipsForward(t *testing.T) {
	// 2030-03-10 is the US spring-forward date; 02:30 local does not exist.
	date, _ := ParseDate("2030-03-10")
	got, err := ToUTC(date, 2*60+30, "America/New_York")
	require.NoError(t, err)
	// The skipped hour means 02:30 normalizes to 03:30 EDT == 07:30 UTC.
	assert.Equal(t, time.Date(2030, 3, 10, 7, 30, 0, 0, time.UTC), got)
}

func TestToUTCFallBackPicksEarlierInstant(t *testing.T) {
	// 2030-11-03 is the US fall-back date; 01:30 local occurs twice.
	date, _ := ParseDate("2030-11-03")
	got, err := ToUTC(date, 1*60+30, "America/New_York")
	require.NoError(t, err)
	// The earlier occurrence is still EDT (UTC-4) => 05:30 UTC.
	assert.Equal(t, time.Date(2030, 11, 3, 5, 30, 0, 0, time.UTC), got)
}

func TestBookingReferenceIsURLSafeAndPrefixed(t *testing.T) {
	ref, err := BookingReference(time.Date(2030, 2, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, ref, "20300215-")
	for _, r := range ref {
		assert.NotContains(t, " /+=", string(r))
	}
}
