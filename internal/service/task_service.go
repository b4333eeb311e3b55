package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"timeline-planner/internal/model"
	"timeline-planner/internal/recur"
	"timeline-planner/internal/repository"
	"timeline-planner/internal/timeline"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Name            string
	Description     string
	Element         string
	Date            *time.Time
	StartTime       string
	DurationHours   int
	DurationMinutes int
	IsImportant     bool
	Repeat          model.RepeatRule
	RepeatEndDate   *time.Time
	Todos           datatypes.JSON
}

// TaskService wraps task-related business logic. Recurrence expansion runs
// here, synchronously at creation time; the drag loop never touches it.
type TaskService struct {
	taskRepo    *repository.TaskRepository
	elementRepo *repository.ElementRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, elementRepo *repository.ElementRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, elementRepo: elementRepo}
}

// Create validates the input, stores the task and, for repeating tasks,
// materializes all future instances in the same transaction.
func (s *TaskService) Create(ctx context.Context, input TaskInput) (*model.Task, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	var elementID *uuid.UUID
	if input.Element != "" {
		element, err := s.elementRepo.GetOrCreate(ctx, input.Element)
		if err != nil {
			return nil, err
		}
		if element != nil {
			elementID = &element.ID
		}
	}

	task := model.Task{
		ID:              uuid.New(),
		Name:            input.Name,
		Description:     input.Description,
		ElementID:       elementID,
		StartTime:       input.StartTime,
		DurationHours:   input.DurationHours,
		DurationMinutes: input.DurationMinutes,
		IsImportant:     input.IsImportant,
		Repeat:          input.Repeat,
		Todos:           input.Todos,
	}
	if input.Date != nil {
		d := model.Day(*input.Date)
		task.Date = &d
	}
	if input.RepeatEndDate != nil {
		e := model.Day(*input.RepeatEndDate)
		task.RepeatEndDate = &e
	}

	if err := recur.Validate(&task); err != nil {
		return nil, err
	}

	if !task.IsTemplate() {
		if err := s.taskRepo.Create(ctx, &task); err != nil {
			return nil, err
		}
		return &task, nil
	}

	// The template stays on the timeline as the first occurrence; the
	// expander yields every later date up to the end date.
	dates := recur.Expand(*task.Date, task.Repeat, *task.RepeatEndDate)
	instances := recur.Instantiate(&task, dates)
	if err := s.taskRepo.CreateWithInstances(ctx, &task, instances); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update edits display fields in place. Placement (date, order) belongs to
// the drag engine and repeat settings are fixed at creation, so neither is
// touched here.
func (s *TaskService) Update(ctx context.Context, id uuid.UUID, input TaskInput) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		task.Name = input.Name
	}
	task.Description = input.Description
	task.StartTime = input.StartTime
	task.DurationHours = input.DurationHours
	task.DurationMinutes = input.DurationMinutes
	task.IsImportant = input.IsImportant
	if input.Todos != nil {
		task.Todos = input.Todos
	}
	if input.Element != "" {
		element, err := s.elementRepo.GetOrCreate(ctx, input.Element)
		if err != nil {
			return nil, err
		}
		if element != nil {
			task.ElementID = &element.ID
		}
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Postpone moves a task the given number of days forward, appending it to the
// end of the target day through the engine's commit path. A backlog task is
// postponed relative to today.
func (s *TaskService) Postpone(ctx context.Context, id uuid.UUID, days int) error {
	if days < 1 {
		return fmt.Errorf("postpone days must be positive")
	}
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	base := model.Day(time.Now())
	if task.Date != nil {
		base = *task.Date
	}
	target := base.AddDate(0, 0, days)

	session := timeline.NewSession(s.taskRepo, base, 0, days, timeline.Grid{}, 0)
	if err := session.Load(ctx); err != nil {
		return err
	}
	return session.MoveTask(ctx, id, &target, session.TasksCount(target))
}

// Complete marks a task done. Completed tasks stay in their bucket but are
// soft-excluded from active views.
func (s *TaskService) Complete(ctx context.Context, id uuid.UUID) error {
	return s.taskRepo.SetComplete(ctx, id, true)
}

// Delete removes a task. With cascadeFuture set, future-dated instances of
// the same repeat series are removed too.
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID, cascadeFuture bool) error {
	return s.taskRepo.Delete(ctx, id, cascadeFuture)
}

// Get fetches a single task.
func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, id)
}

// Elements lists active categorization tags.
func (s *TaskService) Elements(ctx context.Context) ([]model.Element, error) {
	return s.elementRepo.ListActive(ctx)
}
