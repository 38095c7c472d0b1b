package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mskeddy/reminder-bot/internal/domain"
	"github.com/mskeddy/reminder-bot/internal/store"
)

// Sender is the minimal interface the scheduler needs to deliver a
// reminder. telegram.Router implements it.
type Sender interface {
	SendMessage(userID int64, text string) error
}

// Scheduler periodically polls the store and delivers due reminders.
type Scheduler struct {
	repo     store.Repo
	log      *zap.Logger
	sender   Sender
	interval time.Duration
	now      func() time.Time // swapped in tests
}

// New creates a Scheduler sweeping at the given interval.
func New(repo store.Repo, log *zap.Logger, sender Sender, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		repo:     repo,
		log:      log,
		sender:   sender,
		interval: interval,
		now:      time.Now,
	}
}

// Run starts the sweep loop until ctx is canceled. Ticks never overlap:
// the next tick waits for the previous one to return.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one sweep: fetch reminders due at a single snapshot of
// now, deliver each, re-arm dailies, delete fired rows. A failure on
// one reminder never aborts the rest of the sweep.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now().UTC()

	due, err := s.repo.DueReminders(ctx, now)
	if err != nil {
		s.log.Error("due query failed", zap.Error(err))
		return
	}
	for _, r := range due {
		s.process(ctx, r)
	}
}

// process handles a single due reminder. The row is always removed in
// the same pass that delivers it, so a reminder fires at most once per
// stored row even if sends fail.
func (s *Scheduler) process(ctx context.Context, r domain.Reminder) {
	tz, err := s.repo.GetTimezone(ctx, r.UserID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// No timezone means the reminder cannot be rendered. Drop the
		// row without delivering or re-arming, matching the original
		// behavior; retrying forever would be worse.
		s.log.Warn("dropping reminder: owner has no timezone",
			zap.Int64("id", r.ID), zap.Int64("userID", r.UserID))
	case err != nil:
		s.log.Error("timezone lookup failed", zap.Error(err), zap.Int64("id", r.ID))
		return // row stays; next tick retries
	default:
		text := fmt.Sprintf("⏰ Reminder: %s at %s", r.Name, domain.UTCToLocal(tz, r.FireAt))
		if err := s.sender.SendMessage(r.UserID, text); err != nil {
			// Delivery is fire-and-forget: log and keep mutating so
			// the row is not retried forever.
			s.log.Error("delivery failed", zap.Error(err),
				zap.Int64("id", r.ID), zap.Int64("userID", r.UserID))
		}

		if r.IsDaily {
			next, err := domain.NextCalendarDay(tz, r.FireAt)
			if err != nil {
				s.log.Error("re-arm failed", zap.Error(err), zap.Int64("id", r.ID))
			} else if newID, err := s.repo.CreateReminder(ctx, r.UserID, r.Name, next, true); err != nil {
				s.log.Error("re-arm insert failed", zap.Error(err), zap.Int64("id", r.ID))
			} else {
				s.log.Debug("daily reminder re-armed",
					zap.Int64("id", r.ID), zap.Int64("newID", newID), zap.Time("next", next))
			}
		}
	}

	if err := s.repo.DeleteReminder(ctx, r.ID); err != nil {
		s.log.Error("delete fired reminder failed", zap.Error(err), zap.Int64("id", r.ID))
	}
}
