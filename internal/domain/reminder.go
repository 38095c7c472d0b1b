package domain

import "time"

// UserSetting holds per-user settings. A user has at most one row;
// registering a timezone again overwrites it.
type UserSetting struct {
	UserID   int64
	Timezone string // IANA name, e.g. "Europe/Paris"
}

// Reminder is one pending fire. A daily reminder is re-armed by
// inserting a fresh row for the next occurrence; rows are never
// mutated by the sweep.
type Reminder struct {
	ID      int64
	UserID  int64
	Name    string
	FireAt  time.Time // UTC
	IsDaily bool
}
