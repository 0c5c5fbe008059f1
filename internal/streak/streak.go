package streak

import "time"

// Day is a calendar day truncated to midnight UTC. All streak math works on
// Day values so that two activities inside the same day count once.
type Day struct {
	Year  int
	Month time.Month
	Date  int
}

// DayOf collapses a timestamp to its UTC calendar day.
func DayOf(t time.Time) Day {
	y, m, d := t.UTC().Date()
	return Day{Year: y, Month: m, Date: d}
}

func (d Day) prev() Day {
	return DayOf(time.Date(d.Year, d.Month, d.Date, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1))
}

// DaySet builds the set of calendar days covered by the given timestamps.
func DaySet(times []time.Time) map[Day]bool {
	days := make(map[Day]bool, len(times))
	for _, t := range times {
		days[DayOf(t)] = true
	}
	return days
}

// Current walks backward from asOf and counts consecutive days with activity.
// The day of asOf itself may be missing without breaking the streak ("haven't
// logged today yet"); a gap of two or more days ends the walk. Callers usually
// bound days to a 60-day lookback, but the result does not depend on it.
func Current(days map[Day]bool, asOf time.Time) int {
	// The grace applies only at the head: if today is empty the streak may
	// start yesterday, but any later gap ends the walk.
	cursor := DayOf(asOf)
	if !days[cursor] {
		cursor = cursor.prev()
		if !days[cursor] {
			return 0
		}
	}
	count := 0
	for days[cursor] {
		count++
		cursor = cursor.prev()
	}
	return count
}
