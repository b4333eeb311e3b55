package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"

	"timeline-planner/internal/model"
	"timeline-planner/internal/repository"
)

// AgendaService builds human-readable day summaries for notifications and
// bot replies. Tasks come back in timeline order, so the text mirrors what
// the timeline shows.
type AgendaService struct {
	taskRepo    *repository.TaskRepository
	elementRepo *repository.ElementRepository
}

func NewAgendaService(taskRepo *repository.TaskRepository, elementRepo *repository.ElementRepository) *AgendaService {
	return &AgendaService{taskRepo: taskRepo, elementRepo: elementRepo}
}

// DailyAgenda renders the agenda for one day as Telegram HTML.
func (s *AgendaService) DailyAgenda(ctx context.Context, day time.Time) (string, error) {
	tasks, err := s.taskRepo.ListOnDay(ctx, day)
	if err != nil {
		return "", err
	}
	elementNames, err := s.elementNames(ctx)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Agenda</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", day.Format("Mon, 02 Jan 2006")))

	if len(tasks) == 0 {
		builder.WriteString("— nothing planned\n")
	}
	for _, task := range tasks {
		builder.WriteString(formatTaskLine(task, elementNames))
	}

	backlog, err := s.taskRepo.ListBacklog(ctx)
	if err != nil {
		return "", err
	}
	open := 0
	for _, task := range backlog {
		if !task.IsComplete {
			open++
		}
	}
	if open > 0 {
		builder.WriteString(fmt.Sprintf("\n🗄 %d task(s) waiting in the backlog\n", open))
	}

	return strings.TrimSpace(builder.String()), nil
}

// BacklogSummary renders the undated bucket.
func (s *AgendaService) BacklogSummary(ctx context.Context) (string, error) {
	tasks, err := s.taskRepo.ListBacklog(ctx)
	if err != nil {
		return "", err
	}
	elementNames, err := s.elementNames(ctx)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("🗄 <b>Backlog</b>\n\n")
	if len(tasks) == 0 {
		builder.WriteString("— empty\n")
	}
	for _, task := range tasks {
		builder.WriteString(formatTaskLine(task, elementNames))
	}
	return strings.TrimSpace(builder.String()), nil
}

func (s *AgendaService) elementNames(ctx context.Context) (map[uuid.UUID]string, error) {
	elements, err := s.elementRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(elements))
	for _, e := range elements {
		names[e.ID] = e.Name
	}
	return names, nil
}

func formatTaskLine(task model.Task, elementNames map[uuid.UUID]string) string {
	var sb strings.Builder

	icon := "🟢"
	switch {
	case task.IsComplete:
		icon = "✅"
	case task.IsImportant:
		icon = "⭐"
	case task.IsInstance():
		icon = "♻️"
	}

	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(task.Name))))

	if task.ElementID != nil {
		if name, ok := elementNames[*task.ElementID]; ok && strings.TrimSpace(name) != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(strings.TrimSpace(name))))
		}
	}

	if task.StartTime != "" {
		sb.WriteString(fmt.Sprintf(" · %s", task.StartTime))
	}
	if task.DurationHours > 0 || task.DurationMinutes > 0 {
		sb.WriteString(fmt.Sprintf(" · %dh%02dm", task.DurationHours, task.DurationMinutes))
	}

	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(task.Description))))
	}

	sb.WriteByte('\n')
	return sb.String()
}
