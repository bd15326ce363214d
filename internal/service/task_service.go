package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"task-manager/internal/apperr"
	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/validation"
)

// TaskCreateInput represents data required to create a task. Status and
// priority fall back to their defaults when empty.
type TaskCreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	CategoryID  *uint  `json:"category_id"`
}

// TaskUpdateInput is a partial update: only fields present in the
// request mutate the task. DueDate and CategoryID are raw JSON so that
// an explicit null (clear the field) can be told apart from absence.
type TaskUpdateInput struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *string         `json:"status"`
	Priority    *string         `json:"priority"`
	DueDate     json.RawMessage `json:"due_date"`
	CategoryID  json.RawMessage `json:"category_id"`
}

// TaskStats aggregates one user's tasks by status and priority.
type TaskStats struct {
	TotalTasks          int64   `json:"total_tasks"`
	PendingTasks        int64   `json:"pending_tasks"`
	InProgressTasks     int64   `json:"in_progress_tasks"`
	CompletedTasks      int64   `json:"completed_tasks"`
	CompletionRate      float64 `json:"completion_rate"`
	HighPriorityTasks   int64   `json:"high_priority_tasks"`
	UrgentPriorityTasks int64   `json:"urgent_priority_tasks"`
}

// TaskService wraps task-related business logic. Every operation is
// scoped to the calling user.
type TaskService struct {
	db         *gorm.DB
	tasks      *repository.TaskRepository
	categories *repository.CategoryRepository
	now        func() time.Time
}

func NewTaskService(db *gorm.DB, tasks *repository.TaskRepository, categories *repository.CategoryRepository) *TaskService {
	return &TaskService{db: db, tasks: tasks, categories: categories, now: time.Now}
}

// Create validates the payload, checks category ownership and persists
// the task with defaults applied, all inside one transaction.
func (s *TaskService) Create(ctx context.Context, userID uint, input TaskCreateInput) (*model.Task, error) {
	if err := validation.ValidateTask(validation.TaskData{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
	}, s.now()); err != nil {
		return nil, err
	}

	task := model.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      defaultString(input.Status, model.StatusPending),
		Priority:    defaultString(input.Priority, model.PriorityMedium),
		UserID:      userID,
		CategoryID:  input.CategoryID,
	}

	if input.DueDate != "" {
		due, err := validation.ParseDueDate(input.DueDate)
		if err != nil {
			return nil, apperr.Validationf("due date format is not valid (YYYY-MM-DD)")
		}
		task.DueDate = &due
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.CategoryID != nil {
			category, err := s.categories.WithTx(tx).FindByID(ctx, userID, *input.CategoryID)
			if err != nil {
				if repository.IsNotFound(err) {
					return apperr.NotFound("category not found")
				}
				return fmt.Errorf("check category: %w", err)
			}
			task.Category = category
		}
		return s.tasks.WithTx(tx).Create(ctx, &task)
	})
	if err != nil {
		return nil, err
	}

	task.ResolveCategoryName()
	return &task, nil
}

// Get returns one task; a missing task and another user's task are the
// same 404.
func (s *TaskService) Get(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, userID, taskID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("task not found")
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// List returns the user's tasks newest-first with optional AND-combined
// equality filters.
func (s *TaskService) List(ctx context.Context, userID uint, filter repository.TaskFilter) ([]model.Task, error) {
	tasks, err := s.tasks.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update applies a partial update. Setting status to completed stamps
// CompletedAt; moving away from completed leaves the stamp in place.
func (s *TaskService) Update(ctx context.Context, userID, taskID uint, input TaskUpdateInput) (*model.Task, error) {
	var task *model.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)

		var err error
		task, err = tasks.FindByID(ctx, userID, taskID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("task not found")
			}
			return fmt.Errorf("get task: %w", err)
		}

		if input.Title != nil {
			if strings.TrimSpace(*input.Title) == "" {
				return apperr.Validationf("task title is required")
			}
			if utf8.RuneCountInString(*input.Title) > 200 {
				return apperr.Validationf("task title must be at most 200 characters")
			}
			task.Title = *input.Title
		}
		if input.Description != nil {
			if utf8.RuneCountInString(*input.Description) > 1000 {
				return apperr.Validationf("task description must be at most 1000 characters")
			}
			task.Description = *input.Description
		}
		if input.Status != nil {
			if !validation.ValidStatus(*input.Status) {
				return apperr.Validationf("status is not valid")
			}
			if *input.Status == model.StatusCompleted {
				task.MarkCompleted(s.now())
			} else {
				task.Status = *input.Status
			}
		}
		if input.Priority != nil {
			if !validation.ValidPriority(*input.Priority) {
				return apperr.Validationf("priority is not valid")
			}
			task.Priority = *input.Priority
		}

		if len(input.CategoryID) > 0 {
			if isJSONNull(input.CategoryID) {
				task.CategoryID = nil
				task.Category = nil
			} else {
				var categoryID uint
				if err := json.Unmarshal(input.CategoryID, &categoryID); err != nil {
					return apperr.Validationf("category_id is not valid")
				}
				category, err := s.categories.WithTx(tx).FindByID(ctx, userID, categoryID)
				if err != nil {
					if repository.IsNotFound(err) {
						return apperr.NotFound("category not found")
					}
					return fmt.Errorf("check category: %w", err)
				}
				task.CategoryID = &category.ID
				task.Category = category
			}
		}

		if len(input.DueDate) > 0 {
			if isJSONNull(input.DueDate) {
				task.DueDate = nil
			} else {
				var raw string
				if err := json.Unmarshal(input.DueDate, &raw); err != nil {
					return apperr.Validationf("due date format is not valid")
				}
				if raw == "" {
					// An empty string clears the field, same as null.
					task.DueDate = nil
				} else {
					due, err := validation.ParseDueDate(raw)
					if err != nil {
						return apperr.Validationf("due date format is not valid")
					}
					task.DueDate = &due
				}
			}
		}

		task.UpdatedAt = s.now()
		return tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	task.CategoryName = nil
	task.ResolveCategoryName()
	return task, nil
}

// Delete removes a task unconditionally for its owner.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		if _, err := tasks.FindByID(ctx, userID, taskID); err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("task not found")
			}
			return fmt.Errorf("get task: %w", err)
		}
		return tasks.Delete(ctx, userID, taskID)
	})
}

// Stats aggregates the caller's tasks. The completion rate is a
// percentage rounded to two decimals, and zero when there are no tasks.
func (s *TaskService) Stats(ctx context.Context, userID uint) (TaskStats, error) {
	statusCounts, err := s.tasks.StatusCounts(ctx, userID)
	if err != nil {
		return TaskStats{}, err
	}
	priorityCounts, err := s.tasks.PriorityCounts(ctx, userID)
	if err != nil {
		return TaskStats{}, err
	}

	stats := TaskStats{
		PendingTasks:        statusCounts[model.StatusPending],
		InProgressTasks:     statusCounts[model.StatusInProgress],
		CompletedTasks:      statusCounts[model.StatusCompleted],
		HighPriorityTasks:   priorityCounts[model.PriorityHigh],
		UrgentPriorityTasks: priorityCounts[model.PriorityUrgent],
	}
	for _, n := range statusCounts {
		stats.TotalTasks += n
	}
	if stats.TotalTasks > 0 {
		rate := float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100
		stats.CompletionRate = math.Round(rate*100) / 100
	}
	return stats, nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
