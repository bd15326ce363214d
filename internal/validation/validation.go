// Package validation holds pure input checks that run before anything
// touches the store. Validators collect every violation and report them
// as one semicolon-joined message instead of failing on the first.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"task-manager/internal/apperr"
	"task-manager/internal/model"
)

var (
	usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRegexp    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	colorRegexp    = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

var validStatuses = map[string]struct{}{
	model.StatusPending:    {},
	model.StatusInProgress: {},
	model.StatusCompleted:  {},
	model.StatusCancelled:  {},
}

var validPriorities = map[string]struct{}{
	model.PriorityLow:    {},
	model.PriorityMedium: {},
	model.PriorityHigh:   {},
	model.PriorityUrgent: {},
}

// ValidStatus reports whether s is a member of the task status set.
func ValidStatus(s string) bool {
	_, ok := validStatuses[s]
	return ok
}

// ValidPriority reports whether s is a member of the task priority set.
func ValidPriority(s string) bool {
	_, ok := validPriorities[s]
	return ok
}

// ValidColor reports whether s is a #rrggbb hex color code.
func ValidColor(s string) bool {
	return colorRegexp.MatchString(s)
}

// Registration is the normalized output of ValidateRegistration.
type Registration struct {
	Username string
	Email    string
	Password string
}

// ValidateRegistration checks and normalizes signup input. The username
// and email are trimmed and the email is lower-cased for storage.
func ValidateRegistration(username, email, password string) (Registration, error) {
	var errs []string

	username = strings.TrimSpace(username)
	switch {
	case username == "":
		errs = append(errs, "username is required")
	case utf8.RuneCountInString(username) < 3:
		errs = append(errs, "username must be at least 3 characters")
	case utf8.RuneCountInString(username) > 50:
		errs = append(errs, "username must be at most 50 characters")
	case !usernameRegexp.MatchString(username):
		errs = append(errs, "username may only contain letters, digits and underscores")
	}

	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs = append(errs, "email is required")
	case !emailRegexp.MatchString(email):
		errs = append(errs, "email address is not valid")
	case utf8.RuneCountInString(email) > 120:
		errs = append(errs, "email must be at most 120 characters")
	}

	switch {
	case password == "":
		errs = append(errs, "password is required")
	case utf8.RuneCountInString(password) < 8:
		errs = append(errs, "password must be at least 8 characters")
	case utf8.RuneCountInString(password) > 128:
		errs = append(errs, "password must be at most 128 characters")
	}

	if len(errs) > 0 {
		return Registration{}, apperr.Validation(errs)
	}

	return Registration{
		Username: username,
		Email:    strings.ToLower(email),
		Password: password,
	}, nil
}

// TaskData is the raw task payload as submitted; empty strings mean the
// field was not provided.
type TaskData struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string
}

// ValidateTask checks a full task payload against the field rules. The
// due date, if given, must parse and must not fall on a calendar day
// before today (time of day is ignored for the comparison).
func ValidateTask(data TaskData, now time.Time) error {
	var errs []string

	if strings.TrimSpace(data.Title) == "" {
		errs = append(errs, "task title is required")
	} else if utf8.RuneCountInString(data.Title) > 200 {
		errs = append(errs, "task title must be at most 200 characters")
	}

	if data.Status != "" && !ValidStatus(data.Status) {
		errs = append(errs, fmt.Sprintf("status must be one of %s, %s, %s, %s",
			model.StatusPending, model.StatusInProgress, model.StatusCompleted, model.StatusCancelled))
	}

	if data.Priority != "" && !ValidPriority(data.Priority) {
		errs = append(errs, fmt.Sprintf("priority must be one of %s, %s, %s, %s",
			model.PriorityLow, model.PriorityMedium, model.PriorityHigh, model.PriorityUrgent))
	}

	if utf8.RuneCountInString(data.Description) > 1000 {
		errs = append(errs, "task description must be at most 1000 characters")
	}

	if data.DueDate != "" {
		parsed, err := ParseDueDate(data.DueDate)
		if err != nil {
			errs = append(errs, "due date format is not valid (YYYY-MM-DD)")
		} else if beforeDay(parsed, now) {
			errs = append(errs, "due date must be today or later")
		}
	}

	if len(errs) > 0 {
		return apperr.Validation(errs)
	}
	return nil
}

// CategoryData is the normalized output of ValidateCategory, with the
// default color applied when none was given.
type CategoryData struct {
	Name        string
	Color       string
	Description string
}

// ValidateCategory checks and normalizes category input.
func ValidateCategory(name, color, description string) (CategoryData, error) {
	var errs []string

	name = strings.TrimSpace(name)
	if name == "" {
		errs = append(errs, "category name is required")
	} else if utf8.RuneCountInString(name) > 50 {
		errs = append(errs, "category name must be at most 50 characters")
	}

	if color == "" {
		color = model.DefaultCategoryColor
	}
	if !colorRegexp.MatchString(color) {
		errs = append(errs, "color must be a #rrggbb hex color code")
	}

	if utf8.RuneCountInString(description) > 500 {
		errs = append(errs, "category description must be at most 500 characters")
	}

	if len(errs) > 0 {
		return CategoryData{}, apperr.Validation(errs)
	}

	return CategoryData{Name: name, Color: color, Description: description}, nil
}

// ParseDueDate accepts a bare YYYY-MM-DD date or a full ISO-8601
// timestamp, treating a literal Z suffix as the +00:00 offset.
func ParseDueDate(raw string) (time.Time, error) {
	if len(raw) == 10 {
		return time.Parse("2006-01-02", raw)
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", raw)
}

// beforeDay reports whether t falls on an earlier calendar day than
// now. Both are read in now's location so an offset timestamp near
// midnight does not flip days.
func beforeDay(t, now time.Time) bool {
	ty, tm, td := t.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	if ty != ny {
		return ty < ny
	}
	if tm != nm {
		return tm < nm
	}
	return td < nd
}
