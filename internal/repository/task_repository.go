package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-manager/internal/model"
)

// TaskFilter narrows a task listing. Zero values mean "no filter"; the
// filters combine with AND.
type TaskFilter struct {
	Status     string
	Priority   string
	CategoryID *uint
}

// TaskRepository handles CRUD for tasks. Every lookup is scoped to the
// owning user.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given
// transaction handle.
func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
		return nil, err
	}
	task.ResolveCategoryName()
	return &task, nil
}

// List returns the user's tasks newest-first, optionally filtered.
func (r *TaskRepository) List(ctx context.Context, userID uint, filter TaskFilter) ([]model.Task, error) {
	query := r.db.WithContext(ctx).Preload("Category").Where("user_id = ?", userID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	var tasks []model.Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].ResolveCategoryName()
	}
	return tasks, nil
}

// ListOpen returns tasks that are neither completed nor cancelled,
// newest-first.
func (r *TaskRepository) ListOpen(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, []string{model.StatusPending, model.StatusInProgress}).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(task).Error; err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).
		Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// StatusCounts returns the number of tasks per status for one user.
func (r *TaskRepository) StatusCounts(ctx context.Context, userID uint) (map[string]int64, error) {
	return r.groupedCounts(ctx, userID, "status")
}

// PriorityCounts returns the number of tasks per priority for one user.
func (r *TaskRepository) PriorityCounts(ctx context.Context, userID uint) (map[string]int64, error) {
	return r.groupedCounts(ctx, userID, "priority")
}

func (r *TaskRepository) groupedCounts(ctx context.Context, userID uint, column string) (map[string]int64, error) {
	var rows []struct {
		Value string
		N     int64
	}
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select(column+" as value, count(*) as n").
		Where("user_id = ?", userID).
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count tasks by %s: %w", column, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Value] = row.N
	}
	return counts, nil
}
