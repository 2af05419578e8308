package model

import "time"

// BusyInterval is an opaque busy period reported by the calendar source.
// Hard marks a non-movable commitment; tentative entries are soft and do not
// disqualify a window.
type BusyInterval struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Hard    bool      `json:"hard"`
	Summary string    `json:"summary,omitempty"`
}

// Overlaps reports whether the interval intersects [from, to).
func (b BusyInterval) Overlaps(from, to time.Time) bool {
	return b.Start.Before(to) && b.End.After(from)
}

// OverlapsWorkday reports whether the interval touches a weekday inside the
// window. Weekend-only commitments never cost availability.
func (b BusyInterval) OverlapsWorkday(w DateWindow) bool {
	for _, d := range w.Days() {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if b.Overlaps(d, d.AddDate(0, 0, 1)) {
			return true
		}
	}
	return false
}
