package model

import (
	"fmt"
	"time"
)

// DateWindow is a candidate contiguous date range for a trip. Start and End
// are civil dates normalized to UTC midnight; End is always Start plus
// Nights days. Windows are value types and never mutated after creation.
type DateWindow struct {
	Start  time.Time
	End    time.Time
	Nights int
}

// NewDateWindow builds a window of nights days starting at start. The start
// date is normalized to UTC midnight.
func NewDateWindow(start time.Time, nights int) (DateWindow, error) {
	if nights < 1 {
		return DateWindow{}, fmt.Errorf("window must span at least one night, got %d", nights)
	}
	s := Midnight(start)
	return DateWindow{Start: s, End: s.AddDate(0, 0, nights), Nights: nights}, nil
}

// Midnight truncates t to its UTC civil date.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Key returns a stable identifier for the window, usable as a map key in
// serialized form.
func (w DateWindow) Key() string {
	return w.Start.Format("2006-01-02") + "/" + fmt.Sprint(w.Nights)
}

func (w DateWindow) String() string {
	return fmt.Sprintf("%s to %s (%d nights)", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"), w.Nights)
}

// Contains reports whether the civil date d falls inside [Start, End).
func (w DateWindow) Contains(d time.Time) bool {
	d = Midnight(d)
	return !d.Before(w.Start) && d.Before(w.End)
}

// Days yields every civil date in [Start, End).
func (w DateWindow) Days() []time.Time {
	days := make([]time.Time, 0, w.Nights)
	for d := w.Start; d.Before(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Weekdays counts the Monday-to-Friday days inside the window. Weekends are
// free and never consume time off.
func (w DateWindow) Weekdays() int {
	n := 0
	for _, d := range w.Days() {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

// TimeOffCost is the number of weekdays inside a window that are not already
// designated non-working. It is derived, never stored independently.
type TimeOffCost int

// StaticTimeOffCost computes the calendar-agnostic cost: every weekday in the
// window counts. The availability filter refines this with holiday markers.
func StaticTimeOffCost(w DateWindow) TimeOffCost {
	return TimeOffCost(w.Weekdays())
}

// RefinedTimeOffCost subtracts days the calendar marks as non-working
// (holidays, company closures) from the static weekday count.
func RefinedTimeOffCost(w DateWindow, nonWorking []time.Time) TimeOffCost {
	free := make(map[time.Time]struct{}, len(nonWorking))
	for _, d := range nonWorking {
		free[Midnight(d)] = struct{}{}
	}
	n := 0
	for _, d := range w.Days() {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if _, ok := free[d]; ok {
			continue
		}
		n++
	}
	return TimeOffCost(n)
}
