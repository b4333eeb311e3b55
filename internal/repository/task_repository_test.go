package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"timeline-planner/internal/model"
	"timeline-planner/internal/timeline"
)

// testDB opens a fresh named in-memory database so tests stay isolated while
// gorm's connection pool still sees the same schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func taskNames(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name
	}
	return out
}

func TestCreateAppendsToDayBucket(t *testing.T) {
	repo := NewTaskRepository(testDB(t))
	ctx := context.Background()
	d := dayPtr(2024, 6, 10)

	first := model.Task{Name: "first", Date: d}
	second := model.Task{Name: "second", Date: d}
	undated := model.Task{Name: "undated"}

	require.NoError(t, repo.Create(ctx, &first))
	require.NoError(t, repo.Create(ctx, &second))
	require.NoError(t, repo.Create(ctx, &undated))

	assert.Equal(t, 0, first.SortOrder)
	assert.Equal(t, 1, second.SortOrder)
	assert.Equal(t, 0, undated.SortOrder, "backlog keeps its own counter")
	assert.NotEqual(t, uuid.Nil, first.ID)
}

func TestListRangeOrdersForDisplay(t *testing.T) {
	repo := NewTaskRepository(testDB(t))
	ctx := context.Background()

	mon := dayPtr(2024, 6, 10)
	tue := dayPtr(2024, 6, 11)
	for _, task := range []model.Task{
		{Name: "tue-a", Date: tue},
		{Name: "mon-a", Date: mon},
		{Name: "mon-b", Date: mon},
		{Name: "backlog", Date: nil},
		{Name: "outside", Date: dayPtr(2024, 7, 1)},
	} {
		task := task
		require.NoError(t, repo.Create(ctx, &task))
	}

	got, err := repo.ListRange(ctx, day(2024, 6, 10), day(2024, 6, 12))
	require.NoError(t, err)
	assert.Equal(t, []string{"mon-a", "mon-b", "tue-a"}, taskNames(got))

	backlog, err := repo.ListBacklog(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"backlog"}, taskNames(backlog))

	onDay, err := repo.ListOnDay(ctx, day(2024, 6, 10))
	require.NoError(t, err)
	assert.Equal(t, []string{"mon-a", "mon-b"}, taskNames(onDay))
}

func TestUpdateOrdersBatch(t *testing.T) {
	repo := NewTaskRepository(testDB(t))
	ctx := context.Background()

	mon := dayPtr(2024, 6, 10)
	tue := dayPtr(2024, 6, 11)
	a := model.Task{Name: "a", Date: mon}
	b := model.Task{Name: "b", Date: mon}
	require.NoError(t, repo.Create(ctx, &a))
	require.NoError(t, repo.Create(ctx, &b))

	batch := []timeline.OrderUpdate{
		{ID: a.ID, Date: tue, Order: 0},
		{ID: b.ID, Date: mon, Order: 0},
	}
	require.NoError(t, repo.UpdateOrders(ctx, batch))

	moved, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.Date)
	assert.True(t, moved.Date.Equal(*tue))
	assert.Equal(t, 0, moved.SortOrder)

	stayed, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stayed.SortOrder)
}

func TestUpdateOrdersUnknownTaskRollsBack(t *testing.T) {
	repo := NewTaskRepository(testDB(t))
	ctx := context.Background()

	mon := dayPtr(2024, 6, 10)
	a := model.Task{Name: "a", Date: mon}
	require.NoError(t, repo.Create(ctx, &a))

	err := repo.UpdateOrders(ctx, []timeline.OrderUpdate{
		{ID: a.ID, Date: mon, Order: 7},
		{ID: uuid.New(), Date: mon, Order: 0},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// The first update in the batch must not survive the failed transaction.
	got, ferr := repo.FindByID(ctx, a.ID)
	require.NoError(t, ferr)
	assert.Equal(t, 0, got.SortOrder)
}

func TestUpdateOrdersMovesToBacklog(t *testing.T) {
	repo := NewTaskRepository(testDB(t))
	ctx := context.Background()

	a := model.Task{Name: "a", Date: dayPtr(2024, 6, 10)}
	require.NoError(t, repo.Create(ctx, &a))

	require.NoError(t, repo.UpdateOrders(ctx, []timeline.OrderUpdate{
		{ID: a.ID, Date: nil, Order: 0},
	}))

	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Date)
}

func TestSetComplete(t *testing.T) {
	repo := NewTaskRepository(testDB(t))
	ctx := context.Background()

	a := model.Task{Name: "a"}
	require.NoError(t, repo.Create(ctx, &a))

	require.NoError(t, repo.SetComplete(ctx, a.ID, true))
	got, err := repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsComplete)

	assert.ErrorIs(t, repo.SetComplete(ctx, uuid.New(), true), gorm.ErrRecordNotFound)
}

func TestCreateWithInstances(t *testing.T) {
	repo := NewTaskRepository(testDB(t))
	ctx := context.Background()

	template := model.Task{
		Name:          "standup",
		Date:          dayPtr(2024, 6, 10),
		Repeat:        model.RepeatDaily,
		RepeatEndDate: dayPtr(2024, 6, 12),
	}
	template.ID = uuid.New()
	instances := []model.Task{
		{ID: uuid.New(), Name: "standup", Date: dayPtr(2024, 6, 11), RepeatParentID: &template.ID},
		{ID: uuid.New(), Name: "standup", Date: dayPtr(2024, 6, 12), RepeatParentID: &template.ID},
	}

	require.NoError(t, repo.CreateWithInstances(ctx, &template, instances))

	got, err := repo.ListRange(ctx, day(2024, 6, 10), day(2024, 6, 13))
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestDeleteCascadesFutureInstances(t *testing.T) {
	repo := NewTaskRepository(testDB(t))
	ctx := context.Background()

	template := model.Task{
		ID:            uuid.New(),
		Name:          "workout",
		Date:          dayPtr(2024, 6, 10),
		Repeat:        model.RepeatDaily,
		RepeatEndDate: dayPtr(2024, 6, 13),
	}
	instances := []model.Task{
		{ID: uuid.New(), Name: "workout", Date: dayPtr(2024, 6, 11), RepeatParentID: &template.ID},
		{ID: uuid.New(), Name: "workout", Date: dayPtr(2024, 6, 12), RepeatParentID: &template.ID},
		{ID: uuid.New(), Name: "workout", Date: dayPtr(2024, 6, 13), RepeatParentID: &template.ID},
	}
	require.NoError(t, repo.CreateWithInstances(ctx, &template, instances))

	// Deleting the Jun 12 instance with cascade removes Jun 13 but keeps
	// Jun 11 and the template.
	require.NoError(t, repo.Delete(ctx, instances[1].ID, true))

	got, err := repo.ListRange(ctx, day(2024, 6, 10), day(2024, 6, 14))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = repo.FindByID(ctx, instances[0].ID)
	assert.NoError(t, err)
	_, err = repo.FindByID(ctx, instances[2].ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteWithoutCascadeKeepsSiblings(t *testing.T) {
	repo := NewTaskRepository(testDB(t))
	ctx := context.Background()

	template := model.Task{ID: uuid.New(), Name: "call", Date: dayPtr(2024, 6, 10)}
	sibling := model.Task{ID: uuid.New(), Name: "call", Date: dayPtr(2024, 6, 11), RepeatParentID: &template.ID}
	require.NoError(t, repo.Create(ctx, &template))
	require.NoError(t, repo.Create(ctx, &sibling))

	require.NoError(t, repo.Delete(ctx, template.ID, false))

	_, err := repo.FindByID(ctx, sibling.ID)
	assert.NoError(t, err)
}

func TestFindByIDNotFound(t *testing.T) {
	repo := NewTaskRepository(testDB(t))
	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
