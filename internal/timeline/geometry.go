package timeline

// Timeline geometry: the grid is a row of day columns of fixed width, each
// stacking task rows of fixed height. Pointer positions resolve to cells by
// integer division; out-of-range positions clamp instead of failing, so a
// degenerate drag can never error out of the state machine.

// DefaultScrollThreshold is how close to a viewport edge, in pixels, the
// pointer must be before the timeline auto-scrolls.
const DefaultScrollThreshold = 48

// Point is a pointer position in screen coordinates.
type Point struct {
	X, Y int
}

// CellSize is the fixed per-day column width and per-task row height.
type CellSize struct {
	Width, Height int
}

// Cell addresses one slot of the grid: a day column and a row within it.
type Cell struct {
	Column, Row int
}

// Grid describes the visible drag surface.
type Grid struct {
	Origin  Point    // top-left of column 0 in screen coordinates
	Cell    CellSize
	Columns int // number of visible columns, backlog included
}

// ResolveCell converts a pointer position into a candidate cell. The column
// clamps into [0, Columns); the row clamps at zero and is further clamped
// against the target bucket's task count by the caller, which knows it.
func ResolveCell(p Point, g Grid) Cell {
	col := 0
	if g.Cell.Width > 0 {
		col = floorDiv(p.X-g.Origin.X, g.Cell.Width)
	}
	row := 0
	if g.Cell.Height > 0 {
		row = floorDiv(p.Y-g.Origin.Y, g.Cell.Height)
	}
	return Cell{
		Column: clamp(col, 0, g.Columns-1),
		Row:    max(row, 0),
	}
}

// ScrollDirection reports whether a pointer x position is inside the edge
// auto-scroll zone: -1 near the left edge, +1 near the right, 0 otherwise.
func ScrollDirection(x, viewportWidth, threshold int) int {
	switch {
	case viewportWidth <= 2*threshold:
		return 0
	case x < threshold:
		return -1
	case x > viewportWidth-threshold:
		return 1
	}
	return 0
}

// floorDiv divides rounding toward negative infinity, so positions left of
// the origin resolve to negative cells rather than sticking at zero before
// the clamp.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
