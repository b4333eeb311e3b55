package recur

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"timeline-planner/internal/model"
)

// Validation errors for repeat input, reported before any instance exists.
var (
	ErrUnknownRule    = errors.New("unknown repeat rule")
	ErrMissingDate    = errors.New("repeating task requires a date")
	ErrMissingEndDate = errors.New("repeating task requires a repeat end date")
	ErrEndBeforeStart = errors.New("repeat end date is before the task date")
)

// Validate checks a template's repeat input. A task with no repeat rule is
// always valid.
func Validate(t *model.Task) error {
	if t.Repeat == model.RepeatNone {
		return nil
	}
	if !t.Repeat.Valid() {
		return ErrUnknownRule
	}
	if t.Date == nil {
		return ErrMissingDate
	}
	if t.RepeatEndDate == nil {
		return ErrMissingEndDate
	}
	if t.RepeatEndDate.Before(*t.Date) {
		return ErrEndBeforeStart
	}
	return nil
}

// Expand returns the concrete dates on which instances of a template should
// be created: starting one interval after start (exclusive) and stepping by
// the rule while the result is on or before end. Month and year intervals
// follow time.AddDate normalization, so Jan 31 + one month lands in March.
func Expand(start time.Time, rule model.RepeatRule, end time.Time) []time.Time {
	if !rule.Valid() {
		return nil
	}
	start = model.Day(start)
	end = model.Day(end)

	var dates []time.Time
	for d := rule.Next(start); !d.After(end); d = rule.Next(d) {
		dates = append(dates, d)
	}
	return dates
}

// Instantiate materializes one concrete task per date from a template.
// Instances copy the displayable fields and todos, get fresh IDs, clear the
// repeat rule and point back at the template via RepeatParentID. SortOrder is
// left zero; the repository appends each instance to its day on insert.
func Instantiate(template *model.Task, dates []time.Time) []model.Task {
	instances := make([]model.Task, 0, len(dates))
	for _, d := range dates {
		date := d
		instances = append(instances, model.Task{
			ID:              uuid.New(),
			Name:            template.Name,
			Description:     template.Description,
			Date:            &date,
			IsImportant:     template.IsImportant,
			DurationHours:   template.DurationHours,
			DurationMinutes: template.DurationMinutes,
			StartTime:       template.StartTime,
			ElementID:       template.ElementID,
			Repeat:          model.RepeatNone,
			RepeatParentID:  &template.ID,
			Todos:           append([]byte(nil), template.Todos...),
		})
	}
	return instances
}
