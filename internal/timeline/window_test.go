package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWindowVisibleDays(t *testing.T) {
	w := NewDayWindow(date(2024, 6, 10), 2, 3)

	days := w.VisibleDays()
	require.Len(t, days, 6)
	assert.Equal(t, date(2024, 6, 8), days[0])
	assert.Equal(t, date(2024, 6, 13), days[len(days)-1])

	for i := 1; i < len(days); i++ {
		assert.Equal(t, days[i-1].AddDate(0, 0, 1), days[i], "days must be contiguous")
	}
}

func TestWindowExpandBackReturnsDelta(t *testing.T) {
	w := NewDayWindow(date(2024, 6, 10), 2, 3)

	start, end := w.ExpandBack(4)
	assert.Equal(t, date(2024, 6, 4), start)
	assert.Equal(t, date(2024, 6, 8), end)
	assert.Equal(t, date(2024, 6, 4), w.Start())
	assert.Equal(t, 10, w.Len())
}

func TestWindowExpandForwardReturnsDelta(t *testing.T) {
	w := NewDayWindow(date(2024, 6, 10), 2, 3)

	start, end := w.ExpandForward(2)
	assert.Equal(t, date(2024, 6, 14), start)
	assert.Equal(t, date(2024, 6, 16), end)
	assert.Equal(t, 8, w.Len())
}

func TestWindowExpandNonPositiveIsNoop(t *testing.T) {
	w := NewDayWindow(date(2024, 6, 10), 2, 3)

	start, end := w.ExpandBack(0)
	assert.False(t, start.Before(end))
	start, end = w.ExpandForward(-5)
	assert.False(t, start.Before(end))
	assert.Equal(t, 6, w.Len())
}

func TestWindowIndexRoundTrip(t *testing.T) {
	w := NewDayWindow(date(2024, 6, 10), 2, 3)

	for i := 0; i < w.Len(); i++ {
		assert.Equal(t, i, w.IndexOf(w.DayAt(i)))
	}
	assert.Equal(t, -1, w.IndexOf(date(2024, 6, 7)))
	assert.Equal(t, -1, w.IndexOf(date(2024, 6, 14)))
	assert.True(t, w.Contains(date(2024, 6, 10)))
}

func TestWindowTruncatesToday(t *testing.T) {
	w := NewDayWindow(time.Date(2024, 6, 10, 17, 45, 3, 0, time.UTC), 0, 0)
	assert.Equal(t, date(2024, 6, 10), w.Today())
	assert.Equal(t, 1, w.Len())
}
