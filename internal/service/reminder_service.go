package service

import (
	"context"
	"log/slog"
	"time"

	"task-manager/internal/model"
	"task-manager/internal/repository"
)

// dueSoonWindow is how far ahead a due date counts as "due soon".
const dueSoonWindow = 48 * time.Hour

// ReminderService periodically summarizes open tasks per user into the
// application log. It only reads; no task state is touched.
type ReminderService struct {
	users  *repository.UserRepository
	tasks  *repository.TaskRepository
	logger *slog.Logger
}

func NewReminderService(users *repository.UserRepository, tasks *repository.TaskRepository, logger *slog.Logger) *ReminderService {
	return &ReminderService{users: users, tasks: tasks, logger: logger}
}

// DigestAll logs an open-task digest for every registered user.
func (s *ReminderService) DigestAll(ctx context.Context, now time.Time) error {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		if !user.IsActive {
			continue
		}
		if err := s.digest(ctx, user, now); err != nil {
			s.logger.Error("task digest failed", "user_id", user.ID, "err", err)
		}
	}
	return nil
}

func (s *ReminderService) digest(ctx context.Context, user model.User, now time.Time) error {
	tasks, err := s.tasks.ListOpen(ctx, user.ID)
	if err != nil {
		return err
	}

	var overdue, dueSoon int
	for _, task := range tasks {
		if task.DueDate == nil {
			continue
		}
		switch {
		case task.DueDate.Before(now):
			overdue++
		case task.DueDate.Sub(now) <= dueSoonWindow:
			dueSoon++
		}
	}

	s.logger.Info("task digest",
		"user_id", user.ID,
		"username", user.Username,
		"open", len(tasks),
		"overdue", overdue,
		"due_soon", dueSoon,
	)
	return nil
}
