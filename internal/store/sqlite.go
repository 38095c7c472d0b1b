package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/mskeddy/reminder-bot/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite is a single-writer engine; one connection serializes all
	// access, which is also what keeps the sweep's read-then-delete and
	// a concurrent user delete from interleaving.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// UpsertTimezone inserts or overwrites a user's timezone.
func (r *SQLiteRepo) UpsertTimezone(ctx context.Context, userID int64, tz string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, timezone) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET timezone = excluded.timezone`,
		userID, tz,
	)
	return err
}

// GetTimezone returns the user's timezone, or ErrNotFound if the user
// never registered one.
func (r *SQLiteRepo) GetTimezone(ctx context.Context, userID int64) (string, error) {
	var tz string
	err := r.db.QueryRowContext(ctx,
		`SELECT timezone FROM users WHERE user_id = ?`, userID,
	).Scan(&tz)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return tz, nil
}

// CreateReminder inserts a reminder row and returns its generated id.
func (r *SQLiteRepo) CreateReminder(ctx context.Context, userID int64, name string, fireAt time.Time, isDaily bool) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (user_id, name, fire_at, is_daily)
		VALUES (?, ?, ?, ?)`,
		userID, name, fireAt.UTC().Unix(), boolToInt(isDaily),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListReminders returns all reminders for a user in creation order.
func (r *SQLiteRepo) ListReminders(ctx context.Context, userID int64) ([]domain.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, fire_at, is_daily
		FROM reminders
		WHERE user_id = ?
		ORDER BY id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return collectReminders(rows)
}

// DueReminders returns reminders with fire_at <= now, ascending id.
func (r *SQLiteRepo) DueReminders(ctx context.Context, now time.Time) ([]domain.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, fire_at, is_daily
		FROM reminders
		WHERE fire_at <= ?
		ORDER BY id ASC`,
		now.UTC().Unix(),
	)
	if err != nil {
		return nil, err
	}
	return collectReminders(rows)
}

// DeleteReminder removes a reminder by id. Deleting a missing id is a
// no-op: the later of two racing deletes simply finds no row.
func (r *SQLiteRepo) DeleteReminder(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	return err
}

// ClearReminders removes every reminder belonging to the user.
func (r *SQLiteRepo) ClearReminders(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reminders WHERE user_id = ?`, userID)
	return err
}

// UpdateReminderName renames a reminder; reports whether a row matched.
func (r *SQLiteRepo) UpdateReminderName(ctx context.Context, id int64, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET name = ? WHERE id = ?`, name, id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateReminderTime reschedules a reminder; reports whether a row matched.
func (r *SQLiteRepo) UpdateReminderTime(ctx context.Context, id int64, fireAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET fire_at = ? WHERE id = ?`, fireAt.UTC().Unix(), id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
