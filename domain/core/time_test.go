package core

import (
	"testing"
	"time"
)

func TestWindowContains(t *testing.T) {
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	w := NewWindow(end, 14)

	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{"inside", end.AddDate(0, 0, -7), true},
		{"start boundary", end.AddDate(0, 0, -14), true},
		{"end boundary", end, true},
		{"before start", end.AddDate(0, 0, -15), false},
		{"after end", end.AddDate(0, 0, 1), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := w.Contains(NewTimestamp(test.ts)); got != test.want {
				t.Errorf("Contains(%s) = %v, want %v", test.ts, got, test.want)
			}
		})
	}
}

func TestWindowDays(t *testing.T) {
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	for _, days := range []int{6, 14, 30} {
		if got := NewWindow(end, days).Days(); got != days {
			t.Errorf("NewWindow(end, %d).Days() = %d", days, got)
		}
	}
}
