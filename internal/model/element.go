package model

import (
	"time"

	"github.com/google/uuid"
)

// Element is a categorization tag for tasks (work, health, study, etc.).
// The scheduling engine treats it as opaque; archiving an element hides
// its tasks from active views without deleting them.
type Element struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"uniqueIndex"`
	Color      string
	IsArchived bool `gorm:"default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Tasks      []Task `gorm:"foreignKey:ElementID"`
}
