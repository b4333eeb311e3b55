package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RepeatRule describes how a template task repeats.
type RepeatRule string

const (
	RepeatNone     RepeatRule = ""
	RepeatDaily    RepeatRule = "daily"
	RepeatWeekly   RepeatRule = "weekly"
	RepeatBiweekly RepeatRule = "biweekly"
	RepeatMonthly  RepeatRule = "monthly"
	RepeatYearly   RepeatRule = "yearly"
)

// Valid reports whether the rule is one of the known repeat intervals.
func (r RepeatRule) Valid() bool {
	switch r {
	case RepeatDaily, RepeatWeekly, RepeatBiweekly, RepeatMonthly, RepeatYearly:
		return true
	}
	return false
}

// Next returns the date one repeat interval after t.
// Month and year steps follow time.AddDate normalization.
func (r RepeatRule) Next(t time.Time) time.Time {
	switch r {
	case RepeatDaily:
		return t.AddDate(0, 0, 1)
	case RepeatWeekly:
		return t.AddDate(0, 0, 7)
	case RepeatBiweekly:
		return t.AddDate(0, 0, 14)
	case RepeatMonthly:
		return t.AddDate(0, 1, 0)
	case RepeatYearly:
		return t.AddDate(1, 0, 0)
	}
	return t
}

// Task is the schedulable unit on the timeline.
// A nil Date puts the task in the backlog bucket. SortOrder positions the
// task within its bucket; ties are broken by ID so (SortOrder, ID) is always
// a strict total order.
type Task struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string    `gorm:"not null"`
	Description     string
	Date            *time.Time `gorm:"index"`
	SortOrder       int        `gorm:"column:sort_order;index"`
	IsComplete      bool       `gorm:"default:false"`
	IsImportant     bool       `gorm:"default:false"`
	DurationHours   int
	DurationMinutes int
	StartTime       string     // "HH:MM", empty when unset
	ElementID       *uuid.UUID `gorm:"index"`
	Repeat          RepeatRule // set only on templates
	RepeatEndDate   *time.Time
	RepeatParentID  *uuid.UUID `gorm:"index"`
	Todos           datatypes.JSON
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsTemplate reports whether the task is a repeat template.
func (t *Task) IsTemplate() bool {
	return t.Repeat != RepeatNone
}

// IsInstance reports whether the task was generated from a template.
func (t *Task) IsInstance() bool {
	return t.RepeatParentID != nil
}

// BacklogKey is the bucket key for tasks without a date.
const BacklogKey = "backlog"

// dayKeyFormat is the canonical day-bucket key layout.
const dayKeyFormat = "2006-01-02"

// Day truncates t to midnight UTC, the canonical date-only representation.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey returns the bucket key for a task date; nil maps to the backlog.
func DayKey(t *time.Time) string {
	if t == nil {
		return BacklogKey
	}
	return t.Format(dayKeyFormat)
}

// SameDay reports whether two nullable dates land in the same bucket.
func SameDay(a, b *time.Time) bool {
	return DayKey(a) == DayKey(b)
}
