package timeline

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"timeline-planner/internal/model"
)

// Engine errors.
var (
	ErrTaskNotFound = errors.New("task not found in order index")
	ErrDragActive   = errors.New("another drag is already in progress")
	ErrNoDrag       = errors.New("no drag in progress")
)

// Placement locates a task on the timeline: its day bucket (nil = backlog)
// and its integer order within that bucket.
type Placement struct {
	Date  *time.Time
	Order int
}

// OrderIndex buckets tasks per day and keeps each bucket sorted by
// (SortOrder, ID). The canonical index is replaced wholesale on fetch;
// during a drag the controller mutates a Clone and either discards it or
// promotes its changes through the reconciler.
type OrderIndex struct {
	days map[string][]*model.Task
	byID map[uuid.UUID]*model.Task
}

// NewOrderIndex returns an empty index.
func NewOrderIndex() *OrderIndex {
	return &OrderIndex{
		days: make(map[string][]*model.Task),
		byID: make(map[uuid.UUID]*model.Task),
	}
}

// Rebuild replaces the whole index with the given tasks. Full replace keeps
// the index trivially consistent with the store after every fetch.
func (x *OrderIndex) Rebuild(tasks []model.Task) {
	x.days = make(map[string][]*model.Task)
	x.byID = make(map[uuid.UUID]*model.Task)
	x.Merge(tasks)
}

// Merge adds tasks to the index, replacing any with the same ID. Used when
// an expanded window fetches only the newly exposed range.
func (x *OrderIndex) Merge(tasks []model.Task) {
	for i := range tasks {
		t := tasks[i] // copy; the index owns its task storage
		if old, ok := x.byID[t.ID]; ok {
			x.removeFromDay(model.DayKey(old.Date), t.ID)
		}
		x.byID[t.ID] = &t
		key := model.DayKey(t.Date)
		x.days[key] = append(x.days[key], &t)
	}
	for key := range x.days {
		x.sortDay(key)
	}
}

func (x *OrderIndex) sortDay(key string) {
	bucket := x.days[key]
	sort.SliceStable(bucket, func(i, j int) bool {
		if bucket[i].SortOrder != bucket[j].SortOrder {
			return bucket[i].SortOrder < bucket[j].SortOrder
		}
		return bucket[i].ID.String() < bucket[j].ID.String()
	})
}

func (x *OrderIndex) removeFromDay(key string, id uuid.UUID) {
	bucket := x.days[key]
	for i, t := range bucket {
		if t.ID == id {
			x.days[key] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}

// TasksOnDay returns copies of the tasks in a day bucket, in display order.
// A nil date selects the backlog.
func (x *OrderIndex) TasksOnDay(date *time.Time) []model.Task {
	bucket := x.days[model.DayKey(date)]
	out := make([]model.Task, len(bucket))
	for i, t := range bucket {
		out[i] = *t
	}
	return out
}

// CountOn returns the number of tasks in a day bucket.
func (x *OrderIndex) CountOn(date *time.Time) int {
	return len(x.days[model.DayKey(date)])
}

// Len returns the total number of indexed tasks.
func (x *OrderIndex) Len() int { return len(x.byID) }

// Task returns a copy of the indexed task.
func (x *OrderIndex) Task(id uuid.UUID) (model.Task, bool) {
	t, ok := x.byID[id]
	if !ok {
		return model.Task{}, false
	}
	return *t, true
}

// PlacementOf returns the day and order of a task.
func (x *OrderIndex) PlacementOf(id uuid.UUID) (Placement, bool) {
	t, ok := x.byID[id]
	if !ok {
		return Placement{}, false
	}
	return Placement{Date: t.Date, Order: t.SortOrder}, true
}

// slotOf returns the task's position within its bucket.
func (x *OrderIndex) slotOf(id uuid.UUID) (key string, slot int, ok bool) {
	t, found := x.byID[id]
	if !found {
		return "", 0, false
	}
	key = model.DayKey(t.Date)
	for i, bt := range x.days[key] {
		if bt.ID == id {
			return key, i, true
		}
	}
	return "", 0, false
}

// InsertAt moves a task into the bucket for date (nil = backlog) at the
// given slot. The old bucket closes its gap by decrementing every follower;
// the new bucket shifts everything at or after the slot up by one. Slots
// beyond the bucket length clamp to append.
func (x *OrderIndex) InsertAt(id uuid.UUID, date *time.Time, slot int) error {
	t, ok := x.byID[id]
	if !ok {
		return ErrTaskNotFound
	}

	oldKey, oldSlot, _ := x.slotOf(id)
	old := x.days[oldKey]
	x.days[oldKey] = append(old[:oldSlot], old[oldSlot+1:]...)
	for _, follower := range x.days[oldKey][oldSlot:] {
		follower.SortOrder--
	}

	newKey := model.DayKey(date)
	bucket := x.days[newKey]
	if slot < 0 {
		slot = 0
	}
	if slot > len(bucket) {
		slot = len(bucket)
	}

	if slot < len(bucket) {
		t.SortOrder = bucket[slot].SortOrder
		for _, follower := range bucket[slot:] {
			follower.SortOrder++
		}
	} else if len(bucket) > 0 {
		t.SortOrder = bucket[len(bucket)-1].SortOrder + 1
	} else {
		t.SortOrder = 0
	}

	if date == nil {
		t.Date = nil
	} else {
		d := model.Day(*date)
		t.Date = &d
	}

	bucket = append(bucket, nil)
	copy(bucket[slot+1:], bucket[slot:])
	bucket[slot] = t
	x.days[newKey] = bucket
	return nil
}

// SwapWithin exchanges the task with the occupant of the given slot in its
// own bucket. A pairwise swap touches exactly two tasks, keeping per-tick
// drag work O(1). Swapping a task with itself is a no-op.
func (x *OrderIndex) SwapWithin(id uuid.UUID, slot int) error {
	key, cur, ok := x.slotOf(id)
	if !ok {
		return ErrTaskNotFound
	}
	bucket := x.days[key]
	if slot < 0 {
		slot = 0
	}
	if slot >= len(bucket) {
		slot = len(bucket) - 1
	}
	if slot == cur {
		return nil
	}
	a, b := bucket[cur], bucket[slot]
	a.SortOrder, b.SortOrder = b.SortOrder, a.SortOrder
	bucket[cur], bucket[slot] = b, a
	return nil
}

// Remove deletes a task from the index, closing the gap in its bucket.
func (x *OrderIndex) Remove(id uuid.UUID) {
	key, slot, ok := x.slotOf(id)
	if !ok {
		return
	}
	bucket := x.days[key]
	x.days[key] = append(bucket[:slot], bucket[slot+1:]...)
	for _, follower := range x.days[key][slot:] {
		follower.SortOrder--
	}
	delete(x.byID, id)
}

// Clone returns a deep copy. The drag controller works on a clone so the
// canonical index stays untouched until a commit is confirmed.
func (x *OrderIndex) Clone() *OrderIndex {
	c := NewOrderIndex()
	for key, bucket := range x.days {
		dst := make([]*model.Task, len(bucket))
		for i, t := range bucket {
			cp := *t
			dst[i] = &cp
			c.byID[cp.ID] = &cp
		}
		c.days[key] = dst
	}
	return c
}

// RestoreFrom replaces the index contents with a deep copy of snapshot.
// This is the rollback primitive: after a failed commit the canonical index
// returns exactly to its pre-batch state.
func (x *OrderIndex) RestoreFrom(snapshot *OrderIndex) {
	c := snapshot.Clone()
	x.days = c.days
	x.byID = c.byID
}

// ChangedSince diffs the index against a snapshot and returns one update per
// task whose bucket or order differs. After a drag this is exactly the
// affected tasks of the source and destination days.
func (x *OrderIndex) ChangedSince(snapshot *OrderIndex) []OrderUpdate {
	var batch []OrderUpdate
	for id, t := range x.byID {
		prev, ok := snapshot.byID[id]
		if ok && prev.SortOrder == t.SortOrder && model.SameDay(prev.Date, t.Date) {
			continue
		}
		batch = append(batch, OrderUpdate{ID: id, Date: t.Date, Order: t.SortOrder})
	}
	sort.Slice(batch, func(i, j int) bool {
		return batch[i].ID.String() < batch[j].ID.String()
	})
	return batch
}

// ApplyUpdates applies a committed batch to the index, re-bucketing tasks
// whose day changed and re-sorting every touched bucket.
func (x *OrderIndex) ApplyUpdates(batch []OrderUpdate) {
	touched := make(map[string]struct{})
	for _, u := range batch {
		t, ok := x.byID[u.ID]
		if !ok {
			continue
		}
		oldKey := model.DayKey(t.Date)
		newKey := model.DayKey(u.Date)
		if oldKey != newKey {
			x.removeFromDay(oldKey, u.ID)
			x.days[newKey] = append(x.days[newKey], t)
			touched[oldKey] = struct{}{}
		}
		if u.Date == nil {
			t.Date = nil
		} else {
			d := model.Day(*u.Date)
			t.Date = &d
		}
		t.SortOrder = u.Order
		touched[newKey] = struct{}{}
	}
	for key := range touched {
		x.sortDay(key)
	}
}
