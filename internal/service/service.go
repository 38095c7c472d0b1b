// Package service is the façade the messaging gateway calls: it
// validates input, converts between local wall-clock time and UTC, and
// delegates persistence to the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mskeddy/reminder-bot/internal/domain"
	"github.com/mskeddy/reminder-bot/internal/store"
)

var (
	// ErrInvalidInput covers malformed date/time strings, unknown
	// timezone names and empty reminder names.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoTimezone means the operation needs a registered timezone
	// and the user has none.
	ErrNoTimezone = errors.New("timezone not registered")
	// ErrNotFound means the referenced reminder does not exist.
	ErrNotFound = errors.New("reminder not found")
)

type Service struct {
	repo store.Repo
	log  *zap.Logger
	now  func() time.Time // swapped in tests
}

func New(repo store.Repo, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// RegisterTimezone validates tz against the timezone database and
// stores its canonical name, overwriting any previous registration.
func (s *Service) RegisterTimezone(ctx context.Context, userID int64, tz string) (string, error) {
	canonical, err := domain.ValidateTZ(strings.TrimSpace(tz))
	if err != nil {
		return "", fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, tz)
	}
	if err := s.repo.UpsertTimezone(ctx, userID, canonical); err != nil {
		return "", err
	}
	s.log.Info("timezone registered", zap.Int64("userID", userID), zap.String("tz", canonical))
	return canonical, nil
}

// timezoneOf resolves the caller's registered timezone, mapping a store
// miss to the precondition error.
func (s *Service) timezoneOf(ctx context.Context, userID int64) (string, error) {
	tz, err := s.repo.GetTimezone(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNoTimezone
	}
	return tz, err
}

// Timezone returns the caller's registered timezone or ErrNoTimezone.
// The gateway uses it to gate flows before collecting further input.
func (s *Service) Timezone(ctx context.Context, userID int64) (string, error) {
	return s.timezoneOf(ctx, userID)
}

// CreateOneOff schedules a single reminder at the given local datetime
// ("YYYY-MM-DD HH:MM" in the user's registered timezone).
func (s *Service) CreateOneOff(ctx context.Context, userID int64, name, localDateTime string) (domain.Reminder, error) {
	tz, err := s.timezoneOf(ctx, userID)
	if err != nil {
		return domain.Reminder{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Reminder{}, fmt.Errorf("%w: empty name", ErrInvalidInput)
	}
	fireAt, err := domain.LocalToUTC(tz, localDateTime)
	if err != nil {
		return domain.Reminder{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := s.repo.CreateReminder(ctx, userID, name, fireAt, false)
	if err != nil {
		return domain.Reminder{}, err
	}
	s.log.Info("reminder created",
		zap.Int64("userID", userID), zap.Int64("id", id), zap.Time("fireAt", fireAt))
	return domain.Reminder{ID: id, UserID: userID, Name: name, FireAt: fireAt}, nil
}

// CreateDaily schedules a recurring daily reminder at the given local
// clock ("HH:MM"). The first occurrence is the next one: today's slot
// if it has not passed yet, otherwise tomorrow's.
func (s *Service) CreateDaily(ctx context.Context, userID int64, name, localClock string) (domain.Reminder, error) {
	tz, err := s.timezoneOf(ctx, userID)
	if err != nil {
		return domain.Reminder{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Reminder{}, fmt.Errorf("%w: empty name", ErrInvalidInput)
	}
	fireAt, err := domain.NextDailyOccurrence(tz, localClock, s.now())
	if err != nil {
		return domain.Reminder{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := s.repo.CreateReminder(ctx, userID, name, fireAt, true)
	if err != nil {
		return domain.Reminder{}, err
	}
	s.log.Info("daily reminder created",
		zap.Int64("userID", userID), zap.Int64("id", id), zap.Time("fireAt", fireAt))
	return domain.Reminder{ID: id, UserID: userID, Name: name, FireAt: fireAt, IsDaily: true}, nil
}

// List returns the user's timezone and reminders in creation order.
func (s *Service) List(ctx context.Context, userID int64) (string, []domain.Reminder, error) {
	tz, err := s.timezoneOf(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	reminders, err := s.repo.ListReminders(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	return tz, reminders, nil
}

// Delete removes a reminder by id. Deleting a missing id succeeds.
//
// The id is trusted as-is and not checked against the caller; scoping
// mutations by (user_id, id) would be the hardened design. Kept for
// compatibility with the original behavior.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteReminder(ctx, id)
}

// ClearAll removes every reminder belonging to the user.
func (s *Service) ClearAll(ctx context.Context, userID int64) error {
	return s.repo.ClearReminders(ctx, userID)
}

// ModifyName renames a reminder. Same bare-id trust as Delete.
func (s *Service) ModifyName(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidInput)
	}
	ok, err := s.repo.UpdateReminderName(ctx, id, name)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// ModifyTime reschedules a reminder to a new local datetime, validated
// against the caller's registered timezone. Same bare-id trust as
// Delete; userID only resolves the timezone.
func (s *Service) ModifyTime(ctx context.Context, userID, id int64, localDateTime string) error {
	tz, err := s.timezoneOf(ctx, userID)
	if err != nil {
		return err
	}
	fireAt, err := domain.LocalToUTC(tz, localDateTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	ok, err := s.repo.UpdateReminderTime(ctx, id, fireAt)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}
