package store

import (
	"context"
	"errors"
	"time"

	"github.com/mskeddy/reminder-bot/internal/domain"
)

// ErrNotFound is returned by lookups that matched no row.
var ErrNotFound = errors.New("not found")

// Repo defines storage operations for user settings and reminders.
type Repo interface {
	// UpsertTimezone creates or overwrites the user's timezone.
	UpsertTimezone(ctx context.Context, userID int64, tz string) error
	// GetTimezone returns the user's timezone or ErrNotFound.
	GetTimezone(ctx context.Context, userID int64) (string, error)

	// CreateReminder inserts a reminder and returns its id. Ids are
	// autoincrement: monotonically increasing, never reused.
	CreateReminder(ctx context.Context, userID int64, name string, fireAt time.Time, isDaily bool) (int64, error)
	// ListReminders returns the user's reminders in creation order.
	ListReminders(ctx context.Context, userID int64) ([]domain.Reminder, error)
	// DueReminders returns reminders with fire_at <= now, ascending id.
	DueReminders(ctx context.Context, now time.Time) ([]domain.Reminder, error)
	// DeleteReminder removes a reminder; missing ids are a no-op.
	DeleteReminder(ctx context.Context, id int64) error
	// ClearReminders removes all of the user's reminders.
	ClearReminders(ctx context.Context, userID int64) error
	// UpdateReminderName and UpdateReminderTime mutate one field and
	// report whether a row matched.
	UpdateReminderName(ctx context.Context, id int64, name string) (bool, error)
	UpdateReminderTime(ctx context.Context, id int64, fireAt time.Time) (bool, error)

	Close() error
}
