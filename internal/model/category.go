package model

import "time"

// DefaultCategoryColor is applied when a category is created without an
// explicit color.
const DefaultCategoryColor = "#007bff"

// Category groups tasks by area (work, health, study, etc.). Names are
// unique per user, not globally.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;index:idx_user_category_name,unique" json:"name"`
	Color       string    `gorm:"size:7;default:#007bff" json:"color"`
	Description string    `gorm:"size:500" json:"description"`
	UserID      uint      `gorm:"index:idx_user_category_name,unique" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`

	// TaskCount is derived from the tasks table, never stored.
	TaskCount int64  `gorm:"-" json:"task_count"`
	Tasks     []Task `gorm:"foreignKey:CategoryID" json:"-"`
}
