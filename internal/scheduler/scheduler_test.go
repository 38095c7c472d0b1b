package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mskeddy/reminder-bot/internal/store"
)

// fakeSender records deliveries and optionally fails them.
type fakeSender struct {
	sent []sentMsg
	fail bool
}

type sentMsg struct {
	userID int64
	text   string
}

func (f *fakeSender) SendMessage(userID int64, text string) error {
	f.sent = append(f.sent, sentMsg{userID, text})
	if f.fail {
		return errors.New("transport down")
	}
	return nil
}

func newTestScheduler(t *testing.T) (*Scheduler, store.Repo, *fakeSender) {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "reminders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	sender := &fakeSender{}
	return New(repo, zap.NewNop(), sender, time.Minute), repo, sender
}

func TestTick_OneOffFiredAndDeleted(t *testing.T) {
	ctx := context.Background()
	sched, repo, sender := newTestScheduler(t)

	require.NoError(t, repo.UpsertTimezone(ctx, 1, "Europe/Paris"))
	fireAt := time.Date(2025, time.June, 16, 12, 0, 0, 0, time.UTC) // 14:00 CEST
	_, err := repo.CreateReminder(ctx, 1, "Meeting", fireAt, false)
	require.NoError(t, err)

	sched.now = func() time.Time { return fireAt.Add(30 * time.Second) }
	sched.Tick(ctx)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(1), sender.sent[0].userID)
	assert.Equal(t, "⏰ Reminder: Meeting at 2025-06-16 14:00", sender.sent[0].text)

	list, err := repo.ListReminders(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, list)

	// A second tick finds nothing: at most one delivery per row.
	sched.Tick(ctx)
	assert.Len(t, sender.sent, 1)
}

func TestTick_DailyReArmedAsNewRow(t *testing.T) {
	ctx := context.Background()
	sched, repo, sender := newTestScheduler(t)

	require.NoError(t, repo.UpsertTimezone(ctx, 1, "Europe/Paris"))
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	fireAt := time.Date(2025, time.June, 16, 9, 0, 0, 0, loc)
	id, err := repo.CreateReminder(ctx, 1, "Standup", fireAt.UTC(), true)
	require.NoError(t, err)

	sched.now = func() time.Time { return fireAt.Add(time.Minute) }
	sched.Tick(ctx)

	require.Len(t, sender.sent, 1)

	list, err := repo.ListReminders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Greater(t, list[0].ID, id, "re-arm must produce a fresh id")
	assert.True(t, list[0].IsDaily)
	assert.Equal(t, "Standup", list[0].Name)
	next := time.Date(2025, time.June, 17, 9, 0, 0, 0, loc)
	assert.Equal(t, next.Unix(), list[0].FireAt.Unix(), "advanced by one local calendar day")
}

func TestTick_MixedDueForSameUser(t *testing.T) {
	ctx := context.Background()
	sched, repo, sender := newTestScheduler(t)

	require.NoError(t, repo.UpsertTimezone(ctx, 1, "UTC"))
	now := time.Date(2025, time.June, 16, 12, 0, 0, 0, time.UTC)
	dailyID, err := repo.CreateReminder(ctx, 1, "daily", now.Add(-2*time.Minute), true)
	require.NoError(t, err)
	_, err = repo.CreateReminder(ctx, 1, "oneoff", now.Add(-time.Minute), false)
	require.NoError(t, err)

	sched.now = func() time.Time { return now }
	sched.Tick(ctx)

	// Exactly one deliver call per original row.
	assert.Len(t, sender.sent, 2)

	// Only the re-armed daily remains, with a new id.
	list, err := repo.ListReminders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "daily", list[0].Name)
	assert.Greater(t, list[0].ID, dailyID)
	assert.True(t, list[0].FireAt.After(now))
}

func TestTick_FutureRemindersUntouched(t *testing.T) {
	ctx := context.Background()
	sched, repo, sender := newTestScheduler(t)

	require.NoError(t, repo.UpsertTimezone(ctx, 1, "UTC"))
	now := time.Date(2025, time.June, 16, 12, 0, 0, 0, time.UTC)
	_, err := repo.CreateReminder(ctx, 1, "later", now.Add(time.Hour), false)
	require.NoError(t, err)

	sched.now = func() time.Time { return now }
	sched.Tick(ctx)

	assert.Empty(t, sender.sent)
	list, err := repo.ListReminders(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTick_MissingTimezoneDropsSilently(t *testing.T) {
	ctx := context.Background()
	sched, repo, sender := newTestScheduler(t)

	// No timezone registered for user 5.
	now := time.Date(2025, time.June, 16, 12, 0, 0, 0, time.UTC)
	_, err := repo.CreateReminder(ctx, 5, "orphan daily", now.Add(-time.Minute), true)
	require.NoError(t, err)

	sched.now = func() time.Time { return now }
	sched.Tick(ctx)

	// Not delivered, not re-armed, row gone.
	assert.Empty(t, sender.sent)
	list, err := repo.ListReminders(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTick_DeliveryFailureStillMutates(t *testing.T) {
	ctx := context.Background()
	sched, repo, sender := newTestScheduler(t)
	sender.fail = true

	require.NoError(t, repo.UpsertTimezone(ctx, 1, "UTC"))
	now := time.Date(2025, time.June, 16, 12, 0, 0, 0, time.UTC)
	_, err := repo.CreateReminder(ctx, 1, "oneoff", now.Add(-time.Minute), false)
	require.NoError(t, err)
	_, err = repo.CreateReminder(ctx, 1, "daily", now.Add(-time.Minute), true)
	require.NoError(t, err)

	sched.now = func() time.Time { return now }
	sched.Tick(ctx)

	// Both rows were attempted; the one-off is gone, the daily re-armed.
	assert.Len(t, sender.sent, 2)
	list, err := repo.ListReminders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "daily", list[0].Name)
	assert.True(t, list[0].FireAt.After(now))
}

func TestRun_StopsOnCancel(t *testing.T) {
	sched, _, _ := newTestScheduler(t)
	sched.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
}
