package timeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"timeline-planner/internal/model"
)

// Session owns one user's view of the timeline: the canonical order index,
// the day window, the drag controller and the reconciler. It is explicitly
// constructed and passed by reference; there is no package-level state, so
// independent sessions (and tests) run fully isolated. A session belongs to
// a single event loop and is not safe for concurrent use.
type Session struct {
	store  Store
	window *DayWindow
	index  *OrderIndex
	rec    *Reconciler
	drag   *Controller
}

// NewSession builds a session around the given store and drag surface.
func NewSession(store Store, today time.Time, daysBack, daysForward int, grid Grid, viewportWidth int) *Session {
	window := NewDayWindow(today, daysBack, daysForward)
	index := NewOrderIndex()
	grid.Columns = window.Len() + 1 // +1 for the backlog column
	return &Session{
		store:  store,
		window: window,
		index:  index,
		rec:    NewReconciler(store),
		drag:   NewController(index, window, grid, viewportWidth),
	}
}

// Window exposes the day window for rendering and scroll bookkeeping.
func (s *Session) Window() *DayWindow { return s.window }

// Drag exposes the drag controller so a UI layer can feed gesture events.
func (s *Session) Drag() *Controller { return s.drag }

// Load fetches the full window range plus the backlog and rebuilds the
// canonical index from scratch.
func (s *Session) Load(ctx context.Context) error {
	tasks, err := s.store.ListRange(ctx, s.window.Start(), s.window.End())
	if err != nil {
		return fmt.Errorf("fetch window range: %w", err)
	}
	backlog, err := s.store.ListBacklog(ctx)
	if err != nil {
		return fmt.Errorf("fetch backlog: %w", err)
	}
	s.index.Rebuild(append(tasks, backlog...))
	return nil
}

// ExpandBack grows the window into the past and fetches only the newly
// exposed days.
func (s *Session) ExpandBack(ctx context.Context, n int) error {
	start, end := s.window.ExpandBack(n)
	return s.fetchInto(ctx, start, end)
}

// ExpandForward grows the window into the future and fetches only the newly
// exposed days.
func (s *Session) ExpandForward(ctx context.Context, n int) error {
	start, end := s.window.ExpandForward(n)
	return s.fetchInto(ctx, start, end)
}

func (s *Session) fetchInto(ctx context.Context, start, end time.Time) error {
	if !start.Before(end) {
		return nil
	}
	s.syncGridColumns()
	tasks, err := s.store.ListRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("fetch expanded range: %w", err)
	}
	s.index.Merge(tasks)
	return nil
}

func (s *Session) syncGridColumns() {
	g := s.drag.grid
	g.Columns = s.window.Len() + 1
	s.drag.SetGrid(g)
}

// TasksOnDay returns the display order for one day from whichever index is
// live (the drag shadow during a drag, the canonical index otherwise).
func (s *Session) TasksOnDay(date time.Time) []model.Task {
	d := model.Day(date)
	return s.drag.Index().TasksOnDay(&d)
}

// TasksCount returns the number of tasks in a day bucket.
func (s *Session) TasksCount(date time.Time) int {
	d := model.Day(date)
	return s.drag.Index().CountOn(&d)
}

// Backlog returns the ordered backlog bucket.
func (s *Session) Backlog() []model.Task {
	return s.drag.Index().TasksOnDay(nil)
}

// Task looks up a task in the live index.
func (s *Session) Task(id uuid.UUID) (model.Task, bool) {
	return s.drag.Index().Task(id)
}

// CommitBatch persists a changed-order batch produced by a drag, applying it
// optimistically and rolling back on failure.
func (s *Session) CommitBatch(ctx context.Context, batch []OrderUpdate) error {
	return s.rec.Commit(ctx, s.index, batch)
}

// MoveTask relocates a task without a gesture (bot commands, tests): it
// stages the move on a clone, diffs and commits through the same optimistic
// path a drag uses. A nil date moves the task to the backlog.
func (s *Session) MoveTask(ctx context.Context, id uuid.UUID, date *time.Time, slot int) error {
	if s.drag.State() != StateIdle {
		return ErrDragActive
	}
	staged := s.index.Clone()
	if err := staged.InsertAt(id, date, slot); err != nil {
		return err
	}
	return s.CommitBatch(ctx, staged.ChangedSince(s.index))
}
