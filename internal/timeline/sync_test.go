package timeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeline-planner/internal/model"
)

// fakeStore is an in-memory Store that records every call and can be told
// to fail the next write.
type fakeStore struct {
	tasks      map[uuid.UUID]model.Task
	rangeCalls [][2]time.Time
	batches    [][]OrderUpdate
	failWrite  error
}

func newFakeStore(tasks ...model.Task) *fakeStore {
	s := &fakeStore{tasks: make(map[uuid.UUID]model.Task)}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return s
}

func (s *fakeStore) ListRange(_ context.Context, start, end time.Time) ([]model.Task, error) {
	s.rangeCalls = append(s.rangeCalls, [2]time.Time{start, end})
	var out []model.Task
	for _, t := range s.tasks {
		if t.Date == nil {
			continue
		}
		if !t.Date.Before(start) && t.Date.Before(end) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) ListBacklog(_ context.Context) ([]model.Task, error) {
	var out []model.Task
	for _, t := range s.tasks {
		if t.Date == nil {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateOrders(_ context.Context, batch []OrderUpdate) error {
	if s.failWrite != nil {
		err := s.failWrite
		s.failWrite = nil
		return err
	}
	for _, u := range batch {
		t, ok := s.tasks[u.ID]
		if !ok {
			return errors.New("unknown task")
		}
		t.Date = u.Date
		t.SortOrder = u.Order
		s.tasks[t.ID] = t
	}
	s.batches = append(s.batches, batch)
	return nil
}

func TestReconcilerCommitAppliesAndPersists(t *testing.T) {
	dx := dayPtr(2024, 6, 10)
	dy := dayPtr(2024, 6, 11)
	a := mkTask("a", dx, 0)
	b := mkTask("b", dx, 1)

	store := newFakeStore(a, b)
	x := NewOrderIndex()
	x.Rebuild([]model.Task{a, b})

	batch := []OrderUpdate{
		{ID: a.ID, Date: dy, Order: 0},
		{ID: b.ID, Date: dx, Order: 0},
	}
	require.NoError(t, NewReconciler(store).Commit(context.Background(), x, batch))

	assert.Equal(t, []string{"a"}, names(x.TasksOnDay(dy)))
	assert.Equal(t, []string{"b"}, names(x.TasksOnDay(dx)))
	require.Len(t, store.batches, 1)
	assert.Equal(t, batch, store.batches[0])
	assert.Equal(t, 0, store.tasks[b.ID].SortOrder, "store must see the new orders")
}

func TestReconcilerRollsBackOnStoreFailure(t *testing.T) {
	dx := dayPtr(2024, 6, 10)
	dy := dayPtr(2024, 6, 11)
	a := mkTask("a", dx, 0)
	b := mkTask("b", dx, 1)
	all := []model.Task{a, b}

	store := newFakeStore(a, b)
	store.failWrite = errors.New("database is locked")

	x := NewOrderIndex()
	x.Rebuild(all)
	before := placements(x, all)

	err := NewReconciler(store).Commit(context.Background(), x, []OrderUpdate{
		{ID: a.ID, Date: dy, Order: 0},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persist order batch")

	// The optimistic application is undone wholesale.
	assert.Equal(t, before, placements(x, all))
	assert.Equal(t, []string{"a", "b"}, names(x.TasksOnDay(dx)))
	assert.Empty(t, store.batches)
}

func TestReconcilerEmptyBatchSkipsStore(t *testing.T) {
	store := newFakeStore()
	x := NewOrderIndex()

	require.NoError(t, NewReconciler(store).Commit(context.Background(), x, nil))
	assert.Empty(t, store.batches)
}
