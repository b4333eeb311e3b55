package styles

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the timeline view.
type Styles struct {
	DayHeader    lipgloss.Style
	TodayHeader  lipgloss.Style
	BacklogHead  lipgloss.Style
	Task         lipgloss.Style
	TaskDone     lipgloss.Style
	TaskDragged  lipgloss.Style
	Cursor       lipgloss.Style
	EmptySlot    lipgloss.Style
	StatusBar    lipgloss.Style
	StatusError  lipgloss.Style
	ColumnBorder lipgloss.Style
}

func New() *Styles {
	dim := lipgloss.Color("#565f89")
	fg := lipgloss.Color("#c0caf5")
	primary := lipgloss.Color("#7aa2f7")
	warning := lipgloss.Color("#e0af68")
	errcol := lipgloss.Color("#f7768e")
	selection := lipgloss.Color("#33467c")

	return &Styles{
		DayHeader:    lipgloss.NewStyle().Foreground(fg).Bold(true),
		TodayHeader:  lipgloss.NewStyle().Foreground(primary).Bold(true).Underline(true),
		BacklogHead:  lipgloss.NewStyle().Foreground(warning).Bold(true),
		Task:         lipgloss.NewStyle().Foreground(fg),
		TaskDone:     lipgloss.NewStyle().Foreground(dim).Strikethrough(true),
		TaskDragged:  lipgloss.NewStyle().Foreground(primary).Background(selection).Bold(true),
		Cursor:       lipgloss.NewStyle().Background(selection),
		EmptySlot:    lipgloss.NewStyle().Foreground(dim),
		StatusBar:    lipgloss.NewStyle().Foreground(dim),
		StatusError:  lipgloss.NewStyle().Foreground(errcol).Bold(true),
		ColumnBorder: lipgloss.NewStyle().Foreground(dim),
	}
}
