package model

import "time"

// Task statuses. The API accepts any member at any time; only entering
// StatusCompleted has a side effect (stamping CompletedAt).
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Task is a single item owned by one user, optionally filed under one
// of that user's categories.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"size:1000" json:"description"`
	Status      string     `gorm:"size:20;default:pending" json:"status"`
	Priority    string     `gorm:"size:10;default:medium" json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	UserID      uint       `gorm:"index" json:"user_id"`
	CategoryID  *uint      `gorm:"index" json:"category_id"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"-"`

	// CategoryName mirrors the preloaded category for responses.
	CategoryName *string `gorm:"-" json:"category_name"`
}

// ResolveCategoryName copies the preloaded category's name into the
// serialized field.
func (t *Task) ResolveCategoryName() {
	if t.Category != nil {
		name := t.Category.Name
		t.CategoryName = &name
	}
}

// MarkCompleted sets the completed status and stamps the completion
// time. Leaving the completed status later does not clear the stamp.
func (t *Task) MarkCompleted(now time.Time) {
	t.Status = StatusCompleted
	t.CompletedAt = &now
}
