package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"timeline-planner/internal/model"
	"timeline-planner/internal/service"
	"timeline-planner/internal/timeline"
	"timeline-planner/internal/ui/styles"
)

const (
	colWidth   = 24 // fixed per-day column width in cells
	headerRows = 2
	expandStep = 7 // days fetched when scrolling past a window edge
)

// App is the bubbletea timeline view: a backlog column followed by one
// column per visible day. Mouse press/drag/release and the keyboard
// pick-up/drop flow both feed the same drag state machine.
type App struct {
	session *timeline.Session
	taskSvc *service.TaskService
	styles  *styles.Styles
	keys    KeyMap

	width, height int
	scrollCol     int // leftmost visible grid column (0 = backlog)
	cursor        timeline.Cell
	status        string
	statusIsErr   bool
}

func NewApp(session *timeline.Session, taskSvc *service.TaskService) *App {
	return &App{
		session: session,
		taskSvc: taskSvc,
		styles:  styles.New(),
		keys:    defaultKeyMap(),
		status:  "space: pick up/drop · esc: cancel · c: complete · q: quit",
	}
}

func (a *App) Init() tea.Cmd {
	return nil
}

// grid maps the session's materialized columns into screen coordinates,
// accounting for the current horizontal scroll.
func (a *App) grid() timeline.Grid {
	return timeline.Grid{
		Origin:  timeline.Point{X: -a.scrollCol * colWidth, Y: headerRows},
		Cell:    timeline.CellSize{Width: colWidth, Height: 1},
		Columns: a.session.Window().Len() + 1,
	}
}

func (a *App) syncGrid() {
	a.session.Drag().SetGrid(a.grid())
}

func (a *App) visibleCols() int {
	n := a.width / colWidth
	if n < 1 {
		n = 1
	}
	return n
}

func (a *App) dragging() bool {
	return a.session.Drag().State() == timeline.StateDragging
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.session.Drag().SetViewportWidth(msg.Width)
		a.syncGrid()

	case tea.MouseMsg:
		a.handleMouse(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			if !a.dragging() {
				return a, tea.Quit
			}
		case key.Matches(msg, a.keys.Cancel):
			a.cancelDrag()
		case key.Matches(msg, a.keys.Left):
			a.moveCursor(-1, 0)
		case key.Matches(msg, a.keys.Right):
			a.moveCursor(1, 0)
		case key.Matches(msg, a.keys.Up):
			a.moveCursor(0, -1)
		case key.Matches(msg, a.keys.Down):
			a.moveCursor(0, 1)
		case key.Matches(msg, a.keys.Carry):
			a.toggleCarry()
		case key.Matches(msg, a.keys.Complete):
			a.completeUnderCursor()
		case key.Matches(msg, a.keys.Past):
			a.expand(-expandStep)
		case key.Matches(msg, a.keys.Future):
			a.expand(expandStep)
		case key.Matches(msg, a.keys.Reload):
			a.reload()
		}
	}
	return a, nil
}

func (a *App) handleMouse(msg tea.MouseMsg) {
	pos := timeline.Point{X: msg.X, Y: msg.Y}
	switch {
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		cell := timeline.ResolveCell(pos, a.grid())
		if id, ok := a.taskAt(cell); ok {
			a.cursor = cell
			a.feed(timeline.StartEvent{TaskID: id})
		}
	case msg.Action == tea.MouseActionMotion && a.dragging():
		a.feed(timeline.MoveEvent{Pos: pos})
	case msg.Action == tea.MouseActionRelease && a.dragging():
		a.feed(timeline.EndEvent{})
	}
}

// moveCursor navigates the grid; while carrying a task it synthesizes a move
// event at the target cell's center so keyboard and mouse drags share one
// code path.
func (a *App) moveCursor(dx, dy int) {
	cols := a.session.Window().Len() + 1
	col := clampInt(a.cursor.Column+dx, 0, cols-1)
	row := a.cursor.Row + dy
	if row < 0 {
		row = 0
	}
	if !a.dragging() {
		if n := a.bucketLen(col); n > 0 && row > n-1 {
			row = n - 1
		} else if n == 0 {
			row = 0
		}
	}
	a.cursor = timeline.Cell{Column: col, Row: row}
	a.ensureVisible(col)

	if a.dragging() {
		g := a.grid()
		a.feed(timeline.MoveEvent{Pos: timeline.Point{
			X: g.Origin.X + col*colWidth + colWidth/2,
			Y: g.Origin.Y + row,
		}})
	}
}

func (a *App) toggleCarry() {
	if a.dragging() {
		a.feed(timeline.EndEvent{})
		return
	}
	if id, ok := a.taskAt(a.cursor); ok {
		a.feed(timeline.StartEvent{TaskID: id})
		a.setStatus("carrying — arrows to move, space to drop, esc to cancel", false)
	}
}

func (a *App) cancelDrag() {
	if !a.dragging() {
		return
	}
	if _, err := a.session.Drag().Handle(timeline.CancelEvent{}); err == nil {
		a.setStatus("drag cancelled", false)
	}
}

// feed runs one event through the controller and carries out its effects.
func (a *App) feed(ev timeline.Event) {
	effects, err := a.session.Drag().Handle(ev)
	if err != nil {
		a.setStatus(err.Error(), true)
		return
	}
	for _, eff := range effects {
		switch eff := eff.(type) {
		case timeline.ScrollEffect:
			a.scrollBy(eff.Direction)
		case timeline.AnimateEffect:
			a.cursor = eff.Target
		case timeline.CommitEffect:
			if err := a.session.CommitBatch(context.Background(), eff.Batch); err != nil {
				a.setStatus(fmt.Sprintf("save failed, changes reverted: %v", err), true)
			} else {
				a.setStatus(fmt.Sprintf("saved %d task(s)", len(eff.Batch)), false)
			}
		}
	}
}

func (a *App) scrollBy(dir int) {
	cols := a.session.Window().Len() + 1
	next := a.scrollCol + dir
	if next < 0 || next > cols-a.visibleCols() {
		// Hit a materialized edge: grow the window, then scroll into it.
		a.expand(dir * expandStep)
		cols = a.session.Window().Len() + 1
		if dir < 0 {
			// Expanding back shifts every day column right.
			a.scrollCol += expandStep
			a.cursor.Column += expandStep
			next = a.scrollCol + dir
		}
	}
	a.scrollCol = clampInt(next, 0, cols-a.visibleCols())
	a.syncGrid()
}

func (a *App) ensureVisible(col int) {
	if col < a.scrollCol {
		a.scrollCol = col
	} else if col >= a.scrollCol+a.visibleCols() {
		a.scrollCol = col - a.visibleCols() + 1
	}
	a.syncGrid()
}

func (a *App) expand(n int) {
	ctx := context.Background()
	var err error
	if n < 0 {
		err = a.session.ExpandBack(ctx, -n)
	} else {
		err = a.session.ExpandForward(ctx, n)
	}
	if err != nil {
		a.setStatus(err.Error(), true)
	}
	a.syncGrid()
}

func (a *App) reload() {
	if a.dragging() {
		return
	}
	if err := a.session.Load(context.Background()); err != nil {
		a.setStatus(fmt.Sprintf("reload failed: %v", err), true)
		return
	}
	a.setStatus("reloaded", false)
}

func (a *App) completeUnderCursor() {
	if a.dragging() {
		return
	}
	id, ok := a.taskAt(a.cursor)
	if !ok {
		return
	}
	if err := a.taskSvc.Complete(context.Background(), id); err != nil {
		a.setStatus(fmt.Sprintf("complete failed: %v", err), true)
		return
	}
	a.reload()
}

// bucketDate maps a grid column to its day; column 0 is the backlog.
func (a *App) bucketDate(col int) *time.Time {
	if col <= 0 {
		return nil
	}
	d := a.session.Window().DayAt(col - 1)
	return &d
}

func (a *App) bucketTasks(col int) []model.Task {
	d := a.bucketDate(col)
	if d == nil {
		return a.session.Backlog()
	}
	return a.session.TasksOnDay(*d)
}

func (a *App) bucketLen(col int) int {
	return len(a.bucketTasks(col))
}

func (a *App) taskAt(cell timeline.Cell) (uuid.UUID, bool) {
	tasks := a.bucketTasks(cell.Column)
	if cell.Row < 0 || cell.Row >= len(tasks) {
		return uuid.Nil, false
	}
	return tasks[cell.Row].ID, true
}

func (a *App) setStatus(text string, isErr bool) {
	a.status = text
	a.statusIsErr = isErr
}

func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	draggedID := a.session.Drag().TaskID()
	today := a.session.Window().Today()

	var columns []string
	last := a.scrollCol + a.visibleCols()
	total := a.session.Window().Len() + 1
	for col := a.scrollCol; col < last && col < total; col++ {
		columns = append(columns, a.renderColumn(col, today, draggedID))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	status := a.styles.StatusBar.Render(a.status)
	if a.statusIsErr {
		status = a.styles.StatusError.Render(a.status)
	}
	return body + "\n" + status
}

func (a *App) renderColumn(col int, today time.Time, draggedID uuid.UUID) string {
	var b strings.Builder

	date := a.bucketDate(col)
	switch {
	case date == nil:
		b.WriteString(a.styles.BacklogHead.Render(pad("Backlog", colWidth)))
	case date.Equal(today):
		b.WriteString(a.styles.TodayHeader.Render(pad(date.Format("Mon 02 Jan"), colWidth)))
	default:
		b.WriteString(a.styles.DayHeader.Render(pad(date.Format("Mon 02 Jan"), colWidth)))
	}
	b.WriteString("\n")
	b.WriteString(a.styles.ColumnBorder.Render(pad(strings.Repeat("─", colWidth-2), colWidth)))
	b.WriteString("\n")

	tasks := a.bucketTasks(col)
	rows := a.height - headerRows - 1
	for row := 0; row < rows; row++ {
		if row >= len(tasks) {
			if row == 0 && len(tasks) == 0 {
				b.WriteString(a.styles.EmptySlot.Render(pad("  ·", colWidth)))
			} else {
				b.WriteString(pad("", colWidth))
			}
			b.WriteString("\n")
			continue
		}
		b.WriteString(a.renderTask(tasks[row], col, row, draggedID))
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) renderTask(task model.Task, col, row int, draggedID uuid.UUID) string {
	marker := "•"
	if task.IsImportant {
		marker = "★"
	}
	label := fmt.Sprintf(" %s %s", marker, task.Name)
	label = pad(truncate(label, colWidth-1), colWidth)

	style := a.styles.Task
	switch {
	case task.ID == draggedID:
		style = a.styles.TaskDragged
	case task.IsComplete:
		style = a.styles.TaskDone
	}
	if a.cursor.Column == col && a.cursor.Row == row && task.ID != draggedID {
		style = style.Inherit(a.styles.Cursor)
	}
	return style.Render(label)
}

// pad fits s to an exact display width, counting wide runes as two cells so
// multi-byte names never misalign columns.
func pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		// A wide rune straddling the cut can leave the result one cell
		// short, so measure again before padding.
		s = runewidth.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-runewidth.StringWidth(s))
}

func truncate(s string, maxWidth int) string {
	return runewidth.Truncate(s, maxWidth, "…")
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
