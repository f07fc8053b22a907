package core

import (
	"time"
)

// Timestamp represents a point in time with timezone awareness
type Timestamp time.Time

// NewTimestamp creates a new timestamp from time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// IsZero checks if the timestamp is zero
func (t Timestamp) IsZero() bool {
	return time.Time(t).IsZero()
}

// Before returns true if t is before u
func (t Timestamp) Before(u Timestamp) bool {
	return time.Time(t).Before(time.Time(u))
}

// After returns true if t is after u
func (t Timestamp) After(u Timestamp) bool {
	return time.Time(t).After(time.Time(u))
}

// Window is a closed date range used for before/after spend comparisons.
type Window struct {
	Start Timestamp `json:"start"`
	End   Timestamp `json:"end"`
}

// NewWindow builds a window ending at the given anchor and spanning days back.
func NewWindow(end time.Time, days int) Window {
	return Window{
		Start: NewTimestamp(end.AddDate(0, 0, -days)),
		End:   NewTimestamp(end),
	}
}

// Contains reports whether ts falls inside the window (inclusive).
func (w Window) Contains(ts Timestamp) bool {
	t := ts.Time()
	return !t.Before(w.Start.Time()) && !t.After(w.End.Time())
}

// Days returns the window span in whole days.
func (w Window) Days() int {
	return int(w.End.Time().Sub(w.Start.Time()).Hours() / 24)
}

// JSON marshaling for Timestamp
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm)
	return nil
}

// String returns the RFC3339 representation
func (t Timestamp) String() string { return t.Time().Format(time.RFC3339) }
