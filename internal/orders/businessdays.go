package orders

import "time"

// BusinessDaysBetween counts the Monday-Friday calendar days from start to end,
// both inclusive. Time of day is discarded; end is read in start's location.
func BusinessDaysBetween(start, end time.Time) int {
	from := civilDay(start)
	to := civilDay(end.In(start.Location()))
	if to < from {
		return 0
	}

	span := int(to-from) + 1
	count := (span / 7) * 5
	weekday := start.Weekday()
	for i := 0; i < span%7; i++ {
		switch (weekday + time.Weekday(i)) % 7 {
		case time.Saturday, time.Sunday:
		default:
			count++
		}
	}
	return count
}

// civilDay numbers the calendar date of t, independent of DST shifts.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
