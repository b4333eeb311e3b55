package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"timeline-planner/internal/model"
	"timeline-planner/internal/timeline"
)

// TaskRepository handles task persistence. It implements timeline.Store, so
// a scheduling session can fetch ranges and persist order batches directly
// against it.
type TaskRepository struct {
	db *gorm.DB
}

var _ timeline.Store = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts one task, appending it to the end of its day bucket.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createAppended(tx, task)
	})
}

// CreateWithInstances inserts a template task and its generated instances in
// one transaction, so a store error mid-batch leaves nothing behind.
func (r *TaskRepository) CreateWithInstances(ctx context.Context, template *model.Task, instances []model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createAppended(tx, template); err != nil {
			return err
		}
		for i := range instances {
			if err := createAppended(tx, &instances[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func createAppended(tx *gorm.DB, task *model.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	next, err := nextOrder(tx, task.Date)
	if err != nil {
		return err
	}
	task.SortOrder = next
	if err := tx.Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// nextOrder returns one past the highest sort order in a day bucket.
func nextOrder(tx *gorm.DB, date *time.Time) (int, error) {
	var max *int
	q := tx.Model(&model.Task{})
	if date == nil {
		q = q.Where("date IS NULL")
	} else {
		q = q.Where("date = ?", model.Day(*date))
	}
	if err := q.Select("MAX(sort_order)").Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("next order: %w", err)
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

// ListRange returns tasks with date in [start, end), ordered for display.
func (r *TaskRepository) ListRange(ctx context.Context, start, end time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", model.Day(start), model.Day(end)).
		Order("date ASC, sort_order ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list range: %w", err)
	}
	return tasks, nil
}

// ListBacklog returns the undated bucket in display order.
func (r *TaskRepository) ListBacklog(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("date IS NULL").
		Order("sort_order ASC, id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list backlog: %w", err)
	}
	return tasks, nil
}

// ListOnDay returns a single day bucket in display order.
func (r *TaskRepository) ListOnDay(ctx context.Context, day time.Time) ([]model.Task, error) {
	d := model.Day(day)
	return r.ListRange(ctx, d, d.AddDate(0, 0, 1))
}

func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateOrders persists a drag batch in one transaction. Only date and
// sort_order are touched; everything else belongs to direct edits.
func (r *TaskRepository) UpdateOrders(ctx context.Context, batch []timeline.OrderUpdate) error {
	if len(batch) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range batch {
			var date interface{}
			if u.Date != nil {
				date = model.Day(*u.Date)
			}
			res := tx.Model(&model.Task{}).
				Where("id = ?", u.ID).
				Updates(map[string]interface{}{"date": date, "sort_order": u.Order})
			if res.Error != nil {
				return fmt.Errorf("update order for %s: %w", u.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("update order for %s: %w", u.ID, gorm.ErrRecordNotFound)
			}
		}
		return nil
	})
}

// Save persists direct edits to display fields.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// SetComplete flips the completion flag.
func (r *TaskRepository) SetComplete(ctx context.Context, id uuid.UUID, done bool) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Update("is_complete", done)
	if res.Error != nil {
		return fmt.Errorf("complete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a task. With cascadeFuture set, future-dated sibling
// instances sharing the same repeat parent go with it.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID, cascadeFuture bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.First(&task, "id = ?", id).Error; err != nil {
			return fmt.Errorf("find task: %w", err)
		}

		if err := tx.Delete(&model.Task{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}

		if !cascadeFuture {
			return nil
		}

		parentID := task.ID
		if task.RepeatParentID != nil {
			parentID = *task.RepeatParentID
		}
		q := tx.Where("repeat_parent_id = ?", parentID)
		if task.Date != nil {
			q = q.Where("date > ?", model.Day(*task.Date))
		}
		if err := q.Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("cascade delete instances: %w", err)
		}
		return nil
	})
}
