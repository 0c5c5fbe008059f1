package streak

import (
	"testing"
	"time"
)

func daysAgo(n int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -n)
}

func TestCurrent(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name string
		days []time.Time
		want int
	}{
		{"no activity", nil, 0},
		{"only today", []time.Time{daysAgo(0)}, 1},
		{"only yesterday keeps streak alive", []time.Time{daysAgo(1)}, 1},
		{"two day gap breaks streak", []time.Time{daysAgo(2)}, 0},
		{"three consecutive days", []time.Time{daysAgo(0), daysAgo(1), daysAgo(2)}, 3},
		{"gap behind today is not bridged", []time.Time{daysAgo(0), daysAgo(2)}, 1},
		{"gap behind yesterday is not bridged", []time.Time{daysAgo(1), daysAgo(3)}, 1},
		{"gap after yesterday stops the count", []time.Time{daysAgo(1), daysAgo(4)}, 1},
		{"today missing but run continues", []time.Time{daysAgo(1), daysAgo(2), daysAgo(3)}, 3},
		{"old burst does not count", []time.Time{daysAgo(10), daysAgo(11), daysAgo(12)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Current(DaySet(tt.days), now)
			if got != tt.want {
				t.Errorf("Current() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCurrentCountsCalendarDaysOnce(t *testing.T) {
	now := time.Now().UTC()
	// Several entries inside the same day must count as one. Anchor the
	// entries to midday so hour offsets cannot cross a UTC midnight.
	noon := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC)
	times := []time.Time{noon, noon.Add(-time.Hour), noon.Add(-2 * time.Hour)}
	if got := Current(DaySet(times), now); got != 1 {
		t.Errorf("Current() = %d, want 1 for repeated same-day activity", got)
	}
}

func TestCurrentIgnoresLookbackWindow(t *testing.T) {
	// The calculator itself must give the same answer for a bounded and an
	// unbounded input set, as long as the consecutive run is the same.
	now := time.Now().UTC()
	bounded := []time.Time{daysAgo(0), daysAgo(1)}
	unbounded := append([]time.Time{daysAgo(90), daysAgo(120)}, bounded...)

	if a, b := Current(DaySet(bounded), now), Current(DaySet(unbounded), now); a != b {
		t.Errorf("bounded=%d unbounded=%d, want equal", a, b)
	}
}

func TestDayOfNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	local := time.Date(2025, 3, 1, 2, 30, 0, 0, loc) // 2025-02-28 21:00 UTC
	if d := DayOf(local); d.Date != 28 || d.Month != time.February {
		t.Errorf("DayOf() = %+v, want 2025-02-28", d)
	}
}
