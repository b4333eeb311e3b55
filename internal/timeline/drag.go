package timeline

import (
	"time"

	"github.com/google/uuid"

	"timeline-planner/internal/model"
)

// DragState is the phase of the reorder state machine.
type DragState int

const (
	StateIdle DragState = iota
	StateDragging
	StateReleasing
	StateCommitting
)

func (s DragState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateReleasing:
		return "releasing"
	case StateCommitting:
		return "committing"
	}
	return "unknown"
}

// Event is a discrete gesture fed into the controller by a UI layer.
type Event interface{ isDragEvent() }

// StartEvent begins a drag of the given task.
type StartEvent struct{ TaskID uuid.UUID }

// MoveEvent reports a new pointer position during a drag.
type MoveEvent struct{ Pos Point }

// EndEvent releases the drag at its last resolved slot.
type EndEvent struct{}

// CancelEvent aborts the drag, reverting all shadow mutations.
type CancelEvent struct{}

func (StartEvent) isDragEvent()  {}
func (MoveEvent) isDragEvent()   {}
func (EndEvent) isDragEvent()    {}
func (CancelEvent) isDragEvent() {}

// Effect is a side effect the UI layer must carry out.
type Effect interface{ isDragEffect() }

// ScrollEffect asks the viewport to auto-scroll one step in Direction
// (-1 left, +1 right) while translating the dragged task to match.
type ScrollEffect struct{ Direction int }

// AnimateEffect asks the UI to settle the dragged task into its final cell.
type AnimateEffect struct {
	TaskID uuid.UUID
	Target Cell
}

// CommitEffect carries the changed-task batch to be persisted. Emitting it
// is fire-and-forget from the state machine's point of view.
type CommitEffect struct{ Batch []OrderUpdate }

func (ScrollEffect) isDragEffect()  {}
func (AnimateEffect) isDragEffect() {}
func (CommitEffect) isDragEffect()  {}

// Controller is the drag/reorder state machine. During a drag it owns a
// shadow clone of the canonical index and mutates only that; every move
// event resolves synchronously in memory, so a tick never blocks. Column 0
// of the grid is the backlog, columns 1.. map through the day window.
type Controller struct {
	canonical *OrderIndex
	window    *DayWindow

	grid            Grid
	viewportWidth   int
	scrollThreshold int

	state    DragState
	taskID   uuid.UUID
	shadow   *OrderIndex
	snapshot *OrderIndex
	lastCell Cell
}

// NewController builds an idle controller over the canonical index.
func NewController(canonical *OrderIndex, window *DayWindow, grid Grid, viewportWidth int) *Controller {
	return &Controller{
		canonical:       canonical,
		window:          window,
		grid:            grid,
		viewportWidth:   viewportWidth,
		scrollThreshold: DefaultScrollThreshold,
	}
}

// State returns the current machine state.
func (c *Controller) State() DragState { return c.state }

// TaskID returns the task being dragged, or uuid.Nil when idle.
func (c *Controller) TaskID() uuid.UUID {
	if c.state == StateIdle {
		return uuid.Nil
	}
	return c.taskID
}

// Index returns the index a renderer should display: the live shadow during
// a drag, the canonical index otherwise.
func (c *Controller) Index() *OrderIndex {
	if c.state == StateDragging && c.shadow != nil {
		return c.shadow
	}
	return c.canonical
}

// SetGrid updates the drag surface geometry, e.g. after a viewport scroll
// shifts the origin or an expanded window adds columns.
func (c *Controller) SetGrid(g Grid) { c.grid = g }

// SetViewportWidth updates the width the edge auto-scroll zones are measured
// against, e.g. after a terminal resize. A zero width disables auto-scroll.
func (c *Controller) SetViewportWidth(w int) { c.viewportWidth = w }

// Handle runs one event through the state machine and returns the side
// effects for the UI layer to perform.
func (c *Controller) Handle(ev Event) ([]Effect, error) {
	switch ev := ev.(type) {
	case StartEvent:
		return nil, c.start(ev.TaskID)
	case MoveEvent:
		return c.move(ev.Pos)
	case EndEvent:
		return c.end()
	case CancelEvent:
		return nil, c.cancel()
	}
	return nil, nil
}

func (c *Controller) start(id uuid.UUID) error {
	if c.state != StateIdle {
		return ErrDragActive
	}
	if _, ok := c.canonical.PlacementOf(id); !ok {
		return ErrTaskNotFound
	}
	c.taskID = id
	c.shadow = c.canonical.Clone()
	c.snapshot = c.canonical.Clone()
	c.state = StateDragging
	return nil
}

func (c *Controller) move(p Point) ([]Effect, error) {
	if c.state != StateDragging {
		return nil, ErrNoDrag
	}

	var effects []Effect
	if dir := ScrollDirection(p.X, c.viewportWidth, c.scrollThreshold); dir != 0 {
		effects = append(effects, ScrollEffect{Direction: dir})
	}

	cell := ResolveCell(p, c.grid)
	target := c.columnDate(cell.Column)

	placement, ok := c.shadow.PlacementOf(c.taskID)
	if !ok {
		return effects, ErrTaskNotFound
	}

	if model.SameDay(placement.Date, target) {
		// Same bucket: every slot up to the count is occupied, so the move
		// is a pairwise swap with the occupant of the candidate slot.
		slot := clamp(cell.Row, 0, c.shadow.CountOn(target)-1)
		c.lastCell = Cell{Column: cell.Column, Row: slot}
		if err := c.shadow.SwapWithin(c.taskID, slot); err != nil {
			return effects, err
		}
		return effects, nil
	}

	// Cross-bucket: remove from the old day, insert at the clamped slot.
	slot := clamp(cell.Row, 0, c.shadow.CountOn(target))
	c.lastCell = Cell{Column: cell.Column, Row: slot}
	if err := c.shadow.InsertAt(c.taskID, target, slot); err != nil {
		return effects, err
	}
	return effects, nil
}

func (c *Controller) end() ([]Effect, error) {
	if c.state != StateDragging {
		return nil, ErrNoDrag
	}

	c.state = StateReleasing
	effects := []Effect{AnimateEffect{TaskID: c.taskID, Target: c.lastCell}}

	c.state = StateCommitting
	batch := c.shadow.ChangedSince(c.snapshot)
	if len(batch) > 0 {
		effects = append(effects, CommitEffect{Batch: batch})
	}

	c.shadow = nil
	c.snapshot = nil
	c.state = StateIdle
	return effects, nil
}

func (c *Controller) cancel() error {
	if c.state != StateDragging {
		return ErrNoDrag
	}
	c.shadow = nil
	c.snapshot = nil
	c.state = StateIdle
	return nil
}

// columnDate maps a grid column to its day bucket; column 0 is the backlog.
func (c *Controller) columnDate(col int) *time.Time {
	if col <= 0 {
		return nil
	}
	i := col - 1
	if i >= c.window.Len() {
		i = c.window.Len() - 1
	}
	d := c.window.DayAt(i)
	return &d
}
