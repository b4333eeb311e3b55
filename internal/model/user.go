package model

import "time"

// User stores Telegram metadata for agenda subscribers. Tasks themselves are
// shared by the whole team; users only receive broadcasts and issue commands.
type User struct {
	ID         uint  `gorm:"primaryKey"`
	TelegramID int64 `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	Username   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
