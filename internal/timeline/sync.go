package timeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"timeline-planner/internal/model"
)

// OrderUpdate is one element of the batch handed to the backing store after
// a drag settles: the task, its (possibly new) day and its new order.
type OrderUpdate struct {
	ID    uuid.UUID
	Date  *time.Time
	Order int
}

// Store is the backing-store contract the engine consumes. Fetches cover a
// half-open date range; the backlog is fetched separately since its tasks
// have no date to range over.
type Store interface {
	ListRange(ctx context.Context, start, end time.Time) ([]model.Task, error)
	ListBacklog(ctx context.Context) ([]model.Task, error)
	UpdateOrders(ctx context.Context, batch []OrderUpdate) error
}

// Reconciler persists committed order batches and keeps the canonical index
// consistent with the store: the batch is applied optimistically before the
// store call and rolled back wholesale if it fails. There is no automatic
// retry; the next fetch re-derives correct state.
type Reconciler struct {
	store Store
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store}
}

// Commit applies the batch to the canonical index, then persists it as one
// unit. On store failure the index is restored to its exact pre-batch state
// and the error is returned for the caller to surface.
func (r *Reconciler) Commit(ctx context.Context, canonical *OrderIndex, batch []OrderUpdate) error {
	if len(batch) == 0 {
		return nil
	}

	snapshot := canonical.Clone()
	canonical.ApplyUpdates(batch)

	if err := r.store.UpdateOrders(ctx, batch); err != nil {
		canonical.RestoreFrom(snapshot)
		return fmt.Errorf("persist order batch: %w", err)
	}
	return nil
}
