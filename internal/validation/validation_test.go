package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager/internal/apperr"
)

func TestValidateRegistration(t *testing.T) {
	t.Run("normalizes username and email", func(t *testing.T) {
		reg, err := ValidateRegistration("  alice  ", "  Alice@Example.COM ", "password123")
		require.NoError(t, err)
		assert.Equal(t, "alice", reg.Username)
		assert.Equal(t, "alice@example.com", reg.Email)
		assert.Equal(t, "password123", reg.Password)
	})

	t.Run("collects every violation", func(t *testing.T) {
		_, err := ValidateRegistration("a!", "not-an-email", "short")
		require.Error(t, err)

		appErr := apperr.From(err)
		assert.Equal(t, apperr.KindValidation, appErr.Kind)
		// One message per failing field, semicolon-joined.
		assert.Len(t, strings.Split(appErr.Message, "; "), 3)
	})

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  string
	}{
		{"empty username", "", "a@b.co", "password123", "username is required"},
		{"short username", "ab", "a@b.co", "password123", "at least 3 characters"},
		{"long username", strings.Repeat("a", 51), "a@b.co", "password123", "at most 50 characters"},
		{"bad username chars", "bob smith", "a@b.co", "password123", "letters, digits and underscores"},
		{"empty email", "alice", "", "password123", "email is required"},
		{"invalid email", "alice", "alice@", "password123", "not valid"},
		{"long email", "alice", strings.Repeat("a", 115) + "@ex.com", "password123", "at most 120 characters"},
		{"empty password", "alice", "a@b.co", "", "password is required"},
		{"short password", "alice", "a@b.co", "1234567", "at least 8 characters"},
		{"long password", "alice", "a@b.co", strings.Repeat("x", 129), "at most 128 characters"},
		{"multibyte password over limit", "alice", "a@b.co", strings.Repeat("ぱ", 129), "at most 128 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateRegistration(tt.username, tt.email, tt.password)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("length limits count runes, not bytes", func(t *testing.T) {
		// 8 kana are 24 bytes; they still satisfy the 8-character minimum.
		_, err := ValidateRegistration("alice", "a@b.co", strings.Repeat("ぱ", 8))
		assert.NoError(t, err)
	})
}

func TestValidateTask(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		data    TaskData
		wantErr string
	}{
		{"minimal", TaskData{Title: "t1"}, ""},
		{"full valid", TaskData{Title: "t1", Status: "in_progress", Priority: "urgent", DueDate: "2026-03-16"}, ""},
		{"empty title", TaskData{Title: "   "}, "task title is required"},
		{"long title", TaskData{Title: strings.Repeat("x", 201)}, "at most 200 characters"},
		{"multibyte title at limit", TaskData{Title: strings.Repeat("あ", 200)}, ""},
		{"multibyte title over limit", TaskData{Title: strings.Repeat("あ", 201)}, "at most 200 characters"},
		{"multibyte description at limit", TaskData{Title: "t", Description: strings.Repeat("あ", 1000)}, ""},
		{"bad status", TaskData{Title: "t", Status: "done"}, "status must be one of"},
		{"bad priority", TaskData{Title: "t", Priority: "critical"}, "priority must be one of"},
		{"long description", TaskData{Title: "t", Description: strings.Repeat("x", 1001)}, "at most 1000 characters"},
		{"bad due date", TaskData{Title: "t", DueDate: "15/03/2026"}, "due date format is not valid"},
		{"past due date", TaskData{Title: "t", DueDate: "2026-03-14"}, "today or later"},
		{"due today", TaskData{Title: "t", DueDate: "2026-03-15"}, ""},
		{"due earlier today with time", TaskData{Title: "t", DueDate: "2026-03-15T00:01:00Z"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTask(tt.data, now)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("collects every violation", func(t *testing.T) {
		err := ValidateTask(TaskData{Status: "done", Priority: "critical"}, now)
		require.Error(t, err)
		assert.Len(t, strings.Split(apperr.From(err).Message, "; "), 3)
	})

	t.Run("due date day is judged in the server's zone", func(t *testing.T) {
		// 23:00 UTC on the 14th is already the 15th at +02:00, so a
		// server in that zone must not treat it as yesterday.
		local := time.Date(2026, 3, 15, 8, 0, 0, 0, time.FixedZone("EET", 2*60*60))
		err := ValidateTask(TaskData{Title: "t", DueDate: "2026-03-14T23:00:00Z"}, local)
		assert.NoError(t, err)

		// The same stamp read from UTC really is yesterday.
		err = ValidateTask(TaskData{Title: "t", DueDate: "2026-03-14T23:00:00Z"}, now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "today or later")
	})
}

func TestValidateCategory(t *testing.T) {
	t.Run("applies default color", func(t *testing.T) {
		data, err := ValidateCategory(" Work ", "", "")
		require.NoError(t, err)
		assert.Equal(t, "Work", data.Name)
		assert.Equal(t, "#007bff", data.Color)
	})

	t.Run("counts runes against the name limit", func(t *testing.T) {
		_, err := ValidateCategory(strings.Repeat("分", 50), "", "")
		assert.NoError(t, err)
	})

	t.Run("accepts upper-case hex", func(t *testing.T) {
		data, err := ValidateCategory("Work", "#AABB00", "")
		require.NoError(t, err)
		assert.Equal(t, "#AABB00", data.Color)
	})

	tests := []struct {
		name        string
		catName     string
		color       string
		description string
		wantErr     string
	}{
		{"empty name", "", "", "", "category name is required"},
		{"long name", strings.Repeat("x", 51), "", "", "at most 50 characters"},
		{"multibyte name over limit", strings.Repeat("分", 51), "", "", "at most 50 characters"},
		{"bad color", "Work", "blue", "", "#rrggbb"},
		{"short hex", "Work", "#fff", "", "#rrggbb"},
		{"long description", "Work", "", strings.Repeat("x", 501), "at most 500 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateCategory(tt.catName, tt.color, tt.description)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseDueDate(t *testing.T) {
	t.Run("bare date", func(t *testing.T) {
		parsed, err := ParseDueDate("2026-04-01")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), parsed)
	})

	t.Run("iso with Z suffix", func(t *testing.T) {
		parsed, err := ParseDueDate("2026-04-01T09:30:00Z")
		require.NoError(t, err)
		assert.Equal(t, time.UTC, parsed.Location())
		assert.Equal(t, 9, parsed.Hour())
	})

	t.Run("iso with explicit offset", func(t *testing.T) {
		parsed, err := ParseDueDate("2026-04-01T09:30:00+02:00")
		require.NoError(t, err)
		_, offset := parsed.Zone()
		assert.Equal(t, 2*60*60, offset)
	})

	t.Run("iso without offset", func(t *testing.T) {
		_, err := ParseDueDate("2026-04-01T09:30:00")
		require.NoError(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseDueDate("tomorrow")
		assert.Error(t, err)
	})
}
