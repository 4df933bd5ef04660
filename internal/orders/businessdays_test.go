package orders

import (
	"testing"
	"time"
)

func naiveBusinessDays(start, end time.Time) int {
	y, m, d := start.Date()
	cur := time.Date(y, m, d, 0, 0, 0, 0, start.Location())
	y, m, d = end.In(start.Location()).Date()
	last := time.Date(y, m, d, 0, 0, 0, 0, start.Location())
	count := 0
	for !cur.After(last) {
		if wd := cur.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
		cur = cur.AddDate(0, 0, 1)
	}
	return count
}

func TestBusinessDaysBetween(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{name: "same weekday", start: monday, end: monday, want: 1},
		{name: "same saturday", start: saturday, end: saturday, want: 0},
		{name: "same sunday", start: sunday, end: sunday, want: 0},
		{name: "end before start", start: friday, end: monday, want: 0},
		{name: "monday to friday", start: monday, end: friday, want: 5},
		{name: "friday to next monday", start: friday, end: monday.AddDate(0, 0, 7), want: 2},
		{name: "weekend only", start: saturday, end: sunday, want: 0},
		{name: "four weeks and a day", start: monday, end: monday.AddDate(0, 0, 28), want: 21},
		{
			name:  "time of day ignored",
			start: time.Date(2025, 3, 3, 23, 59, 0, 0, time.UTC),
			end:   time.Date(2025, 3, 4, 0, 1, 0, 0, time.UTC),
			want:  2,
		},
		{
			name:  "later time on the same day",
			start: time.Date(2025, 3, 3, 18, 0, 0, 0, time.UTC),
			end:   time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC),
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BusinessDaysBetween(tt.start, tt.end); got != tt.want {
				t.Fatalf("BusinessDaysBetween(%s, %s) = %d, want %d", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestBusinessDaysBetweenFullWeekIsFive(t *testing.T) {
	for i := 0; i < 7; i++ {
		start := monday.AddDate(0, 0, i)
		if got := BusinessDaysBetween(start, start.AddDate(0, 0, 6)); got != 5 {
			t.Fatalf("week starting %s: got %d, want 5", start.Weekday(), got)
		}
	}
}

func TestBusinessDaysBetweenMatchesDayByDayCount(t *testing.T) {
	base := time.Date(2024, 12, 20, 9, 30, 0, 0, time.UTC)
	for s := 0; s < 14; s++ {
		for span := -3; span < 40; span++ {
			start := base.AddDate(0, 0, s)
			end := start.AddDate(0, 0, span)
			want := 0
			if span >= 0 {
				want = naiveBusinessDays(start, end)
			}
			if got := BusinessDaysBetween(start, end); got != want {
				t.Fatalf("start=%s span=%d: got %d want %d", start.Format(time.DateOnly), span, got, want)
			}
		}
	}
}

func TestBusinessDaysBetweenUsesStartLocation(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	// 01:00 UTC on Tuesday is still Monday evening in BRT.
	start := time.Date(2025, 3, 3, 10, 0, 0, 0, saoPaulo)
	end := time.Date(2025, 3, 4, 1, 0, 0, 0, time.UTC)
	if got := BusinessDaysBetween(start, end); got != 1 {
		t.Fatalf("expected end to be read in start location, got %d", got)
	}
}
