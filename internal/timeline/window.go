package timeline

import (
	"time"

	"timeline-planner/internal/model"
)

// DayWindow tracks how many days before and after today are materialized on
// the timeline. Offsets only grow during a session; shrinking would discard
// already-loaded state mid-scroll.
type DayWindow struct {
	today       time.Time
	daysBack    int
	daysForward int
}

// NewDayWindow builds a window centered on today. Negative offsets are
// treated as zero.
func NewDayWindow(today time.Time, daysBack, daysForward int) *DayWindow {
	if daysBack < 0 {
		daysBack = 0
	}
	if daysForward < 0 {
		daysForward = 0
	}
	return &DayWindow{
		today:       model.Day(today),
		daysBack:    daysBack,
		daysForward: daysForward,
	}
}

// Today returns the window's anchor day.
func (w *DayWindow) Today() time.Time { return w.today }

// Start returns the first visible day.
func (w *DayWindow) Start() time.Time {
	return w.today.AddDate(0, 0, -w.daysBack)
}

// End returns the day after the last visible one, so [Start, End) covers the
// window and matches the repository's half-open range queries.
func (w *DayWindow) End() time.Time {
	return w.today.AddDate(0, 0, w.daysForward+1)
}

// Len returns the number of visible days.
func (w *DayWindow) Len() int {
	return w.daysBack + w.daysForward + 1
}

// VisibleDays returns the contiguous sequence of days from Start to the last
// visible day.
func (w *DayWindow) VisibleDays() []time.Time {
	days := make([]time.Time, 0, w.Len())
	for d := w.Start(); d.Before(w.End()); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ExpandBack grows the window n days into the past and returns the newly
// exposed half-open range so callers can fetch only the delta. n <= 0 is a
// no-op with an empty range.
func (w *DayWindow) ExpandBack(n int) (start, end time.Time) {
	end = w.Start()
	if n <= 0 {
		return end, end
	}
	w.daysBack += n
	return w.Start(), end
}

// ExpandForward grows the window n days into the future and returns the
// newly exposed half-open range. n <= 0 is a no-op with an empty range.
func (w *DayWindow) ExpandForward(n int) (start, end time.Time) {
	start = w.End()
	if n <= 0 {
		return start, start
	}
	w.daysForward += n
	return start, w.End()
}

// DayAt maps a window-relative index (0 = Start) to its calendar day.
func (w *DayWindow) DayAt(i int) time.Time {
	return w.Start().AddDate(0, 0, i)
}

// IndexOf maps a calendar day to its window-relative index, or -1 when the
// day is outside the window.
func (w *DayWindow) IndexOf(date time.Time) int {
	d := model.Day(date)
	i := int(d.Sub(w.Start()).Hours() / 24)
	if i < 0 || i >= w.Len() {
		return -1
	}
	return i
}

// Contains reports whether the day is currently materialized.
func (w *DayWindow) Contains(date time.Time) bool {
	return w.IndexOf(date) >= 0
}
