package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mskeddy/reminder-bot/internal/service"
)

// --- Generic helpers ---

func (r *Router) sendText(chatID int64, text string) {
	_, _ = r.bot.Send(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) answerCallback(id, text string) {
	_, _ = r.bot.Request(tgbotapi.NewCallback(id, text))
}

// replyServiceError maps the service error taxonomy to user messages.
func (r *Router) replyServiceError(chatID int64, err error, invalidMsg string) {
	switch {
	case errors.Is(err, service.ErrNoTimezone):
		r.sendText(chatID, needTimezoneText)
	case errors.Is(err, service.ErrInvalidInput):
		r.sendText(chatID, invalidMsg)
	case errors.Is(err, service.ErrNotFound):
		r.sendText(chatID, "❌ That reminder no longer exists.")
	default:
		r.log.Error("service call failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.sendText(chatID, "Something went wrong. Please try again later.")
	}
}

// --- Commands ---

func (r *Router) handleStart(ctx context.Context, chatID int64) {
	if _, err := r.svc.Timezone(ctx, chatID); errors.Is(err, service.ErrNoTimezone) {
		r.sendText(chatID, welcomeNewText)
		r.setPending(chatID, &pending{step: stepTimezone})
		return
	}
	r.sendText(chatID, welcomeBackText)
}

func (r *Router) handleTimezone(ctx context.Context, chatID int64) {
	r.sendText(chatID, askTimezoneText)
	r.setPending(chatID, &pending{step: stepTimezone})
}

func (r *Router) handleSetReminder(ctx context.Context, chatID int64) {
	if _, err := r.svc.Timezone(ctx, chatID); err != nil {
		r.replyServiceError(chatID, err, "")
		return
	}
	r.sendText(chatID, askReminderNameText)
	r.setPending(chatID, &pending{step: stepReminderName})
}

// handleDaily parses "/daily <name> <HH:MM>" in one message.
func (r *Router) handleDaily(ctx context.Context, chatID int64, text string) {
	args := strings.Fields(text)[1:]
	if len(args) < 2 {
		r.sendText(chatID, dailyUsageText)
		return
	}
	clock := args[len(args)-1]
	name := strings.Join(args[:len(args)-1], " ")

	rem, err := r.svc.CreateDaily(ctx, chatID, name, clock)
	if err != nil {
		r.replyServiceError(chatID, err, invalidClockText)
		return
	}
	r.sendText(chatID, "✅ Daily reminder '"+rem.Name+"' scheduled at "+clock+" every day.")
}

func (r *Router) handleList(ctx context.Context, chatID int64) {
	tz, reminders, err := r.svc.List(ctx, chatID)
	if err != nil {
		r.replyServiceError(chatID, err, "")
		return
	}
	if len(reminders) == 0 {
		r.sendText(chatID, noRemindersText)
		return
	}
	r.sendText(chatID, formatReminderList(reminders, tz))
}

func (r *Router) handleDelete(ctx context.Context, chatID int64) {
	_, reminders, err := r.svc.List(ctx, chatID)
	if err != nil {
		r.replyServiceError(chatID, err, "")
		return
	}
	if len(reminders) == 0 {
		r.sendText(chatID, "😴 No reminders to delete.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "Choose the reminder to delete:")
	msg.ReplyMarkup = reminderPickKeyboard(reminders, "delete")
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleModify(ctx context.Context, chatID int64) {
	_, reminders, err := r.svc.List(ctx, chatID)
	if err != nil {
		r.replyServiceError(chatID, err, "")
		return
	}
	if len(reminders) == 0 {
		r.sendText(chatID, "😴 No reminders to modify.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "Choose the reminder to modify:")
	msg.ReplyMarkup = reminderPickKeyboard(reminders, "modify")
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleClear(ctx context.Context, chatID int64) {
	_, reminders, err := r.svc.List(ctx, chatID)
	if err != nil {
		r.replyServiceError(chatID, err, "")
		return
	}
	if len(reminders) == 0 {
		r.sendText(chatID, "😴 No reminders to clear.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "Really delete all your reminders?")
	msg.ReplyMarkup = clearConfirmKeyboard()
	_, _ = r.bot.Send(msg)
}

// --- Callback handlers ---

func (r *Router) handleDeleteCallback(ctx context.Context, chatID int64, data, cbID string) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, "delete:"), 10, 64)
	if err != nil {
		r.answerCallback(cbID, "")
		return
	}
	if err := r.svc.Delete(ctx, id); err != nil {
		r.answerCallback(cbID, "")
		r.replyServiceError(chatID, err, "")
		return
	}
	r.answerCallback(cbID, "Reminder deleted!")
	r.sendText(chatID, "✅ Reminder deleted.")
}

func (r *Router) handleModifyCallback(ctx context.Context, chatID int64, data, cbID string) {
	r.answerCallback(cbID, "")
	id, err := strconv.ParseInt(strings.TrimPrefix(data, "modify:"), 10, 64)
	if err != nil {
		return
	}
	msg := tgbotapi.NewMessage(chatID, "What do you want to change?")
	msg.ReplyMarkup = modifyFieldKeyboard(id)
	_, _ = r.bot.Send(msg)
}

// handleFieldCallback receives "field:<name|time>:<id>".
func (r *Router) handleFieldCallback(ctx context.Context, chatID int64, data, cbID string) {
	r.answerCallback(cbID, "")
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 {
		return
	}
	field := parts[1]
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return
	}
	if field == "name" {
		r.sendText(chatID, "Enter the new name:")
	} else {
		r.sendText(chatID, "Enter the new date and time (YYYY-MM-DD HH:MM):")
	}
	r.setPending(chatID, &pending{step: stepModifyValue, reminderID: id, field: field})
}

func (r *Router) handleClearCallback(ctx context.Context, chatID int64, data, cbID string) {
	if data == "clear:yes" {
		if err := r.svc.ClearAll(ctx, chatID); err != nil {
			r.answerCallback(cbID, "")
			r.replyServiceError(chatID, err, "")
			return
		}
		r.answerCallback(cbID, "All reminders deleted!")
		r.sendText(chatID, "✅ All reminders deleted.")
		return
	}
	r.answerCallback(cbID, "Cancelled.")
	r.sendText(chatID, "❌ Cancelled.")
}

// --- Free-form dispatcher (multi-step flows) ---

func (r *Router) handleFreeForm(ctx context.Context, chatID int64, text string) {
	p := r.getPending(chatID)
	if p == nil {
		return // no pending flow: ignore
	}

	switch p.step {
	case stepTimezone:
		tz, err := r.svc.RegisterTimezone(ctx, chatID, text)
		if err != nil {
			r.sendText(chatID, invalidTimezoneText)
			return // keep waiting for a valid timezone
		}
		r.clearPending(chatID)
		r.sendText(chatID, "✅ Timezone set to "+tz+". Type /help to get started!")

	case stepReminderName:
		if strings.TrimSpace(text) == "" {
			r.sendText(chatID, "❌ The name cannot be empty. Try again:")
			return
		}
		p.name = strings.TrimSpace(text)
		p.step = stepReminderTime
		r.setPending(chatID, p)
		r.sendText(chatID, askReminderTimeText)

	case stepReminderTime:
		rem, err := r.svc.CreateOneOff(ctx, chatID, p.name, text)
		if err != nil {
			if errors.Is(err, service.ErrInvalidInput) {
				r.sendText(chatID, invalidDateTimeText)
				return // keep waiting for a valid datetime
			}
			r.clearPending(chatID)
			r.replyServiceError(chatID, err, "")
			return
		}
		r.clearPending(chatID)
		r.sendText(chatID, "🎉 Reminder '"+rem.Name+"' scheduled for "+text+"!")

	case stepModifyValue:
		var err error
		if p.field == "name" {
			err = r.svc.ModifyName(ctx, p.reminderID, text)
		} else {
			err = r.svc.ModifyTime(ctx, chatID, p.reminderID, text)
		}
		if errors.Is(err, service.ErrInvalidInput) {
			r.sendText(chatID, invalidDateTimeText)
			return // keep waiting for a valid value
		}
		r.clearPending(chatID)
		if err != nil {
			r.replyServiceError(chatID, err, "")
			return
		}
		if p.field == "name" {
			r.sendText(chatID, "✅ Reminder name updated!")
		} else {
			r.sendText(chatID, "✅ Reminder time updated!")
		}
	}
}
