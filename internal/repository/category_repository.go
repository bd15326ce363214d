package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"task-manager/internal/model"
)

// CategoryRepository manages task categories. Every lookup is scoped to
// the owning user; there is deliberately no lookup by primary key alone.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given
// transaction handle.
func (r *CategoryRepository) WithTx(tx *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: tx}
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if IsDuplicate(err) {
			return err
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, userID, categoryID uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, categoryID).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, userID uint, name string) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).Where("user_id = ? AND name = ?", userID, name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) ListByUser(ctx context.Context, userID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *model.Category) error {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		if IsDuplicate(err) {
			return err
		}
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, userID, categoryID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, categoryID).
		Delete(&model.Category{}).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// CountTasks returns how many tasks reference the category.
func (r *CategoryRepository) CountTasks(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count category tasks: %w", err)
	}
	return count, nil
}

// TaskCounts returns the per-category task counts for one user in a
// single grouped query.
func (r *CategoryRepository) TaskCounts(ctx context.Context, userID uint) (map[uint]int64, error) {
	var rows []struct {
		CategoryID uint
		N          int64
	}
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("category_id, count(*) as n").
		Where("user_id = ? AND category_id IS NOT NULL", userID).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count tasks per category: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.N
	}
	return counts, nil
}
