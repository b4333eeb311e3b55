package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"timeline-planner/internal/model"
)

// ElementRepository manages categorization tags.
type ElementRepository struct {
	db *gorm.DB
}

func NewElementRepository(db *gorm.DB) *ElementRepository {
	return &ElementRepository{db: db}
}

func (r *ElementRepository) GetOrCreate(ctx context.Context, name string) (*model.Element, error) {
	if name == "" {
		return nil, nil
	}

	var element model.Element
	db := r.db.WithContext(ctx)
	err := db.Where("name = ?", name).First(&element).Error
	switch {
	case err == nil:
		return &element, nil
	case err == gorm.ErrRecordNotFound:
		element = model.Element{ID: uuid.New(), Name: name}
		if err := db.Create(&element).Error; err != nil {
			return nil, fmt.Errorf("create element: %w", err)
		}
		return &element, nil
	default:
		return nil, fmt.Errorf("find element: %w", err)
	}
}

// ListActive returns non-archived elements sorted by name.
func (r *ElementRepository) ListActive(ctx context.Context) ([]model.Element, error) {
	var elements []model.Element
	if err := r.db.WithContext(ctx).
		Where("is_archived = ?", false).
		Order("name ASC").
		Find(&elements).Error; err != nil {
		return nil, err
	}
	return elements, nil
}

func (r *ElementRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Element, error) {
	var element model.Element
	if err := r.db.WithContext(ctx).First(&element, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &element, nil
}

// Archive soft-hides an element and its tasks from active views.
func (r *ElementRepository) Archive(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Element{}).
		Where("id = ?", id).
		Update("is_archived", true)
	if res.Error != nil {
		return fmt.Errorf("archive element: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
