package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"task-manager/internal/model"
)

// newTestDB opens a uniquely named shared in-memory database so every
// pooled connection sees the same tables.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Category{}, &model.Task{}))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()

	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "digest",
		IsActive:     true,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func TestUserRepositoryUniqueness(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	require.NoError(t, users.Create(ctx, &model.User{Username: "alice", Email: "alice@x.com", PasswordHash: "d"}))

	t.Run("duplicate username", func(t *testing.T) {
		err := users.Create(ctx, &model.User{Username: "alice", Email: "other@x.com", PasswordHash: "d"})
		require.Error(t, err)
		assert.True(t, IsDuplicate(err))
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := users.Create(ctx, &model.User{Username: "bob", Email: "alice@x.com", PasswordHash: "d"})
		require.Error(t, err)
		assert.True(t, IsDuplicate(err))
	})
}

func TestUserRepositoryLookups(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	created := createTestUser(t, db, "alice")

	byName, err := users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byEmail, err := users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := users.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = users.FindByUsername(ctx, "nobody")
	assert.True(t, IsNotFound(err))
}

func TestCategoryUniquePerUserNotGlobal(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	categories := NewCategoryRepository(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	require.NoError(t, categories.Create(ctx, &model.Category{Name: "Work", UserID: alice.ID}))

	t.Run("same name same user conflicts", func(t *testing.T) {
		err := categories.Create(ctx, &model.Category{Name: "Work", UserID: alice.ID})
		require.Error(t, err)
		assert.True(t, IsDuplicate(err))
	})

	t.Run("same name other user is fine", func(t *testing.T) {
		assert.NoError(t, categories.Create(ctx, &model.Category{Name: "Work", UserID: bob.ID}))
	})
}

func TestCategoryOwnerScoping(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	categories := NewCategoryRepository(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	category := &model.Category{Name: "Work", UserID: alice.ID}
	require.NoError(t, categories.Create(ctx, category))

	_, err := categories.FindByID(ctx, alice.ID, category.ID)
	assert.NoError(t, err)

	_, err = categories.FindByID(ctx, bob.ID, category.ID)
	assert.True(t, IsNotFound(err), "another user's category must behave like a missing one")
}

func TestCategoryListOrderedByName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	categories := NewCategoryRepository(db)

	alice := createTestUser(t, db, "alice")
	for _, name := range []string{"Work", "Errands", "Health"} {
		require.NoError(t, categories.Create(ctx, &model.Category{Name: name, UserID: alice.ID}))
	}

	listed, err := categories.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "Errands", listed[0].Name)
	assert.Equal(t, "Health", listed[1].Name)
	assert.Equal(t, "Work", listed[2].Name)
}

func TestTaskListOrderingAndFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tasks := NewTaskRepository(db)
	categories := NewCategoryRepository(db)

	alice := createTestUser(t, db, "alice")
	category := &model.Category{Name: "Work", UserID: alice.ID}
	require.NoError(t, categories.Create(ctx, category))

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seed := []model.Task{
		{Title: "oldest", Status: model.StatusPending, Priority: model.PriorityLow, UserID: alice.ID, CreatedAt: base},
		{Title: "middle", Status: model.StatusCompleted, Priority: model.PriorityHigh, UserID: alice.ID, CategoryID: &category.ID, CreatedAt: base.Add(time.Hour)},
		{Title: "newest", Status: model.StatusPending, Priority: model.PriorityHigh, UserID: alice.ID, CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range seed {
		require.NoError(t, tasks.Create(ctx, &seed[i]))
	}

	t.Run("newest first", func(t *testing.T) {
		listed, err := tasks.List(ctx, alice.ID, TaskFilter{})
		require.NoError(t, err)
		require.Len(t, listed, 3)
		assert.Equal(t, "newest", listed[0].Title)
		assert.Equal(t, "oldest", listed[2].Title)
	})

	t.Run("filters combine with AND", func(t *testing.T) {
		listed, err := tasks.List(ctx, alice.ID, TaskFilter{Status: model.StatusPending, Priority: model.PriorityHigh})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, "newest", listed[0].Title)
	})

	t.Run("category filter resolves name", func(t *testing.T) {
		listed, err := tasks.List(ctx, alice.ID, TaskFilter{CategoryID: &category.ID})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		require.NotNil(t, listed[0].CategoryName)
		assert.Equal(t, "Work", *listed[0].CategoryName)
	})
}

func TestTaskOwnerScoping(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tasks := NewTaskRepository(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	task := &model.Task{Title: "t1", Status: model.StatusPending, Priority: model.PriorityMedium, UserID: alice.ID}
	require.NoError(t, tasks.Create(ctx, task))

	_, err := tasks.FindByID(ctx, bob.ID, task.ID)
	assert.True(t, IsNotFound(err))

	// A scoped delete by the wrong user must leave the row alone.
	require.NoError(t, tasks.Delete(ctx, bob.ID, task.ID))
	_, err = tasks.FindByID(ctx, alice.ID, task.ID)
	assert.NoError(t, err)
}

func TestGroupedCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tasks := NewTaskRepository(db)
	categories := NewCategoryRepository(db)

	alice := createTestUser(t, db, "alice")
	category := &model.Category{Name: "Work", UserID: alice.ID}
	require.NoError(t, categories.Create(ctx, category))

	seed := []model.Task{
		{Title: "a", Status: model.StatusPending, Priority: model.PriorityHigh, UserID: alice.ID, CategoryID: &category.ID},
		{Title: "b", Status: model.StatusPending, Priority: model.PriorityUrgent, UserID: alice.ID},
		{Title: "c", Status: model.StatusCompleted, Priority: model.PriorityMedium, UserID: alice.ID, CategoryID: &category.ID},
	}
	for i := range seed {
		require.NoError(t, tasks.Create(ctx, &seed[i]))
	}

	statusCounts, err := tasks.StatusCounts(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), statusCounts[model.StatusPending])
	assert.Equal(t, int64(1), statusCounts[model.StatusCompleted])

	priorityCounts, err := tasks.PriorityCounts(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), priorityCounts[model.PriorityHigh])
	assert.Equal(t, int64(1), priorityCounts[model.PriorityUrgent])

	taskCount, err := categories.CountTasks(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), taskCount)

	perCategory, err := categories.TaskCounts(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), perCategory[category.ID])
}
