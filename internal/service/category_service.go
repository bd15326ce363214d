package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"task-manager/internal/apperr"
	"task-manager/internal/model"
	"task-manager/internal/repository"
	"task-manager/internal/validation"
)

// CategoryCreateInput is the payload for creating a category.
type CategoryCreateInput struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// CategoryUpdateInput is a partial update: only fields present in the
// request mutate the category.
type CategoryUpdateInput struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
}

// CategoryService provides owner-scoped category operations.
type CategoryService struct {
	db         *gorm.DB
	categories *repository.CategoryRepository
	tasks      *repository.TaskRepository
}

func NewCategoryService(db *gorm.DB, categories *repository.CategoryRepository, tasks *repository.TaskRepository) *CategoryService {
	return &CategoryService{db: db, categories: categories, tasks: tasks}
}

// Create validates input and persists the category. Name uniqueness per
// user is pre-checked for a friendly message and enforced by the unique
// index for racing requests.
func (s *CategoryService) Create(ctx context.Context, userID uint, input CategoryCreateInput) (*model.Category, error) {
	data, err := validation.ValidateCategory(input.Name, input.Color, input.Description)
	if err != nil {
		return nil, err
	}

	category := model.Category{
		Name:        data.Name,
		Color:       data.Color,
		Description: data.Description,
		UserID:      userID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := s.categories.WithTx(tx)

		if _, err := categories.FindByName(ctx, userID, data.Name); err == nil {
			return apperr.Conflict("this category name already exists")
		} else if !repository.IsNotFound(err) {
			return fmt.Errorf("check category name: %w", err)
		}

		if err := categories.Create(ctx, &category); err != nil {
			if repository.IsDuplicate(err) {
				return apperr.Conflict("this category name already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &category, nil
}

// List returns the user's categories ordered by name, each carrying its
// derived task count.
func (s *CategoryService) List(ctx context.Context, userID uint) ([]model.Category, error) {
	categories, err := s.categories.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	counts, err := s.categories.TaskCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		categories[i].TaskCount = counts[categories[i].ID]
	}
	return categories, nil
}

// Update applies a partial update, guarding the per-user name
// uniqueness when the name changes.
func (s *CategoryService) Update(ctx context.Context, userID, categoryID uint, input CategoryUpdateInput) (*model.Category, error) {
	var category *model.Category

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := s.categories.WithTx(tx)

		var err error
		category, err = categories.FindByID(ctx, userID, categoryID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("category not found")
			}
			return fmt.Errorf("get category: %w", err)
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return apperr.Validationf("category name is required")
			}
			if utf8.RuneCountInString(name) > 50 {
				return apperr.Validationf("category name must be at most 50 characters")
			}
			existing, err := categories.FindByName(ctx, userID, name)
			switch {
			case err == nil && existing.ID != categoryID:
				return apperr.Conflict("this category name already exists")
			case err != nil && !repository.IsNotFound(err):
				return fmt.Errorf("check category name: %w", err)
			}
			category.Name = name
		}
		if input.Color != nil {
			if !validation.ValidColor(*input.Color) {
				return apperr.Validationf("color must be a #rrggbb hex color code")
			}
			category.Color = *input.Color
		}
		if input.Description != nil {
			if utf8.RuneCountInString(*input.Description) > 500 {
				return apperr.Validationf("category description must be at most 500 characters")
			}
			category.Description = *input.Description
		}

		if err := categories.Update(ctx, category); err != nil {
			if repository.IsDuplicate(err) {
				return apperr.Conflict("this category name already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	count, err := s.categories.CountTasks(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	category.TaskCount = count
	return category, nil
}

// Delete removes a category only when no tasks reference it; otherwise
// it fails with a conflict naming the dependent count.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := s.categories.WithTx(tx)

		if _, err := categories.FindByID(ctx, userID, categoryID); err != nil {
			if repository.IsNotFound(err) {
				return apperr.NotFound("category not found")
			}
			return fmt.Errorf("get category: %w", err)
		}

		count, err := categories.CountTasks(ctx, categoryID)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflictf("cannot delete category: %d task(s) still belong to it", count)
		}

		return categories.Delete(ctx, userID, categoryID)
	})
}

// Tasks returns one category together with its tasks, newest-first.
func (s *CategoryService) Tasks(ctx context.Context, userID, categoryID uint) (*model.Category, []model.Task, error) {
	category, err := s.categories.FindByID(ctx, userID, categoryID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, nil, apperr.NotFound("category not found")
		}
		return nil, nil, fmt.Errorf("get category: %w", err)
	}

	count, err := s.categories.CountTasks(ctx, categoryID)
	if err != nil {
		return nil, nil, err
	}
	category.TaskCount = count

	tasks, err := s.tasks.List(ctx, userID, repository.TaskFilter{CategoryID: &categoryID})
	if err != nil {
		return nil, nil, fmt.Errorf("list category tasks: %w", err)
	}
	return category, tasks, nil
}
