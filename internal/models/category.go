package models

import (
	"time"
)

// Category groups posts by subject. A post belongs to at most one category;
// deleting a category clears the reference on its posts rather than deleting them.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"unique;not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
