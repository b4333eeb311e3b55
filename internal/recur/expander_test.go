package recur

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"timeline-planner/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpandWeekly(t *testing.T) {
	dates := Expand(day(2024, 1, 1), model.RepeatWeekly, day(2024, 1, 22))

	require.Len(t, dates, 3)
	assert.Equal(t, day(2024, 1, 8), dates[0])
	assert.Equal(t, day(2024, 1, 15), dates[1])
	assert.Equal(t, day(2024, 1, 22), dates[2])
}

func TestExpandEndDateInclusive(t *testing.T) {
	dates := Expand(day(2024, 3, 1), model.RepeatDaily, day(2024, 3, 3))
	require.Len(t, dates, 2)
	assert.Equal(t, day(2024, 3, 2), dates[0])
	assert.Equal(t, day(2024, 3, 3), dates[1])
}

func TestExpandEndEqualsStart(t *testing.T) {
	dates := Expand(day(2024, 1, 1), model.RepeatDaily, day(2024, 1, 1))
	assert.Empty(t, dates)
}

func TestExpandMonthlyNormalizes(t *testing.T) {
	// time.AddDate semantics: Jan 31 + 1 month rolls into March.
	dates := Expand(day(2024, 1, 31), model.RepeatMonthly, day(2024, 3, 5))
	require.Len(t, dates, 1)
	assert.Equal(t, day(2024, 3, 2), dates[0])
}

func TestExpandUnknownRule(t *testing.T) {
	assert.Nil(t, Expand(day(2024, 1, 1), model.RepeatRule("hourly"), day(2024, 1, 5)))
}

func TestInstantiateCopiesFields(t *testing.T) {
	elementID := uuid.New()
	end := day(2024, 1, 22)
	start := day(2024, 1, 1)
	template := &model.Task{
		ID:              uuid.New(),
		Name:            "water plants",
		Description:     "the big ones first",
		Date:            &start,
		IsImportant:     true,
		DurationHours:   1,
		DurationMinutes: 30,
		StartTime:       "09:15",
		ElementID:       &elementID,
		Repeat:          model.RepeatWeekly,
		RepeatEndDate:   &end,
		Todos:           datatypes.JSON(`["kitchen","balcony"]`),
	}

	dates := Expand(*template.Date, template.Repeat, *template.RepeatEndDate)
	instances := Instantiate(template, dates)
	require.Len(t, instances, 3)

	for i, inst := range instances {
		assert.NotEqual(t, template.ID, inst.ID)
		assert.Equal(t, dates[i], *inst.Date)
		assert.Equal(t, model.RepeatNone, inst.Repeat)
		assert.Nil(t, inst.RepeatEndDate)
		require.NotNil(t, inst.RepeatParentID)
		assert.Equal(t, template.ID, *inst.RepeatParentID)
		assert.Equal(t, template.Name, inst.Name)
		assert.Equal(t, template.ElementID, inst.ElementID)
		assert.Equal(t, template.StartTime, inst.StartTime)
		assert.True(t, inst.IsImportant)
		assert.JSONEq(t, string(template.Todos), string(inst.Todos))
	}
}

func TestValidate(t *testing.T) {
	start := day(2024, 5, 1)
	end := day(2024, 4, 1)

	tests := []struct {
		name string
		task model.Task
		want error
	}{
		{"no repeat", model.Task{}, nil},
		{"missing date", model.Task{Repeat: model.RepeatDaily, RepeatEndDate: &start}, ErrMissingDate},
		{"missing end date", model.Task{Repeat: model.RepeatDaily, Date: &start}, ErrMissingEndDate},
		{"end before start", model.Task{Repeat: model.RepeatDaily, Date: &start, RepeatEndDate: &end}, ErrEndBeforeStart},
		{"unknown rule", model.Task{Repeat: model.RepeatRule("fortnightly"), Date: &start, RepeatEndDate: &start}, ErrUnknownRule},
		{"valid", model.Task{Repeat: model.RepeatDaily, Date: &start, RepeatEndDate: &start}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.task)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}
