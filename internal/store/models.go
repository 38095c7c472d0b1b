package store

import (
	"database/sql"
	"time"

	"github.com/mskeddy/reminder-bot/internal/domain"
)

// collectReminders scans reminder rows into domain values. fire_at is
// stored as UTC epoch seconds and surfaces as time.Time in UTC.
func collectReminders(rows *sql.Rows) ([]domain.Reminder, error) {
	defer rows.Close()

	var res []domain.Reminder
	for rows.Next() {
		var (
			id       int64
			userID   int64
			name     string
			fireAt   int64
			isDailyI int
		)
		if err := rows.Scan(&id, &userID, &name, &fireAt, &isDailyI); err != nil {
			return nil, err
		}
		res = append(res, domain.Reminder{
			ID:      id,
			UserID:  userID,
			Name:    name,
			FireAt:  time.Unix(fireAt, 0).UTC(),
			IsDaily: isDailyI != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
