package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/mskeddy/reminder-bot/internal/domain"
)

const (
	welcomeNewText  = "🎉 Welcome! Before we start, set your timezone (e.g. Europe/Paris):"
	welcomeBackText = "🎉 Hi! I'm your reminder assistant. Type /help to see what I can do! 😊"

	helpText = "📋 Commands:\n" +
		"- /start — welcome message.\n" +
		"- /timezone — set your timezone.\n" +
		"- /setreminder — schedule a one-off reminder.\n" +
		"- /daily <name> <HH:MM> — schedule a daily reminder.\n" +
		"- /list — show all your reminders.\n" +
		"- /delete — delete a reminder.\n" +
		"- /modify — modify a reminder.\n" +
		"- /clear — delete all reminders.\n" +
		"- /help — show this help."

	askTimezoneText     = "Enter your timezone (e.g. Europe/Paris, America/New_York):"
	invalidTimezoneText = "❌ Invalid timezone. Try again (e.g. Europe/Paris)."
	needTimezoneText    = "❌ Set your timezone first with /timezone."

	askReminderNameText = "Enter the reminder name (e.g. Meeting):"
	askReminderTimeText = "Enter the date and time (format: YYYY-MM-DD HH:MM, e.g. 2025-06-16 14:00):"
	invalidDateTimeText = "❌ Invalid format. Use YYYY-MM-DD HH:MM (e.g. 2025-06-16 14:00)."

	dailyUsageText   = "Usage: /daily <name> <HH:MM> (e.g. /daily Standup 09:00)"
	invalidClockText = "❌ Invalid time. Use HH:MM (e.g. 09:00)."

	noRemindersText = "😴 No reminders scheduled. Add one with /setreminder or /daily!"
)

// formatReminderLine renders one list entry: "<id>. <name> - <local>",
// with a daily marker for recurring reminders.
func formatReminderLine(r domain.Reminder, tz string) string {
	line := fmt.Sprintf("%d. %s - %s", r.ID, r.Name, domain.UTCToLocal(tz, r.FireAt))
	if r.IsDaily {
		line += " (daily)"
	}
	return line
}

// formatReminderList renders the /list reply body.
func formatReminderList(reminders []domain.Reminder, tz string) string {
	var b strings.Builder
	b.WriteString("📋 Your reminders:\n")
	for _, r := range reminders {
		b.WriteString(formatReminderLine(r, tz))
		b.WriteByte('\n')
	}
	return b.String()
}

// reminderPickKeyboard builds one button per reminder with callback
// data "<action>:<id>".
func reminderPickKeyboard(reminders []domain.Reminder, action string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(reminders))
	for _, r := range reminders {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(r.Name, action+":"+strconv.FormatInt(r.ID, 10)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func modifyFieldKeyboard(id int64) tgbotapi.InlineKeyboardMarkup {
	idStr := strconv.FormatInt(id, 10)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Name", "field:name:"+idStr),
			tgbotapi.NewInlineKeyboardButtonData("🕘 Time", "field:time:"+idStr),
		),
	)
}

func clearConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes", "clear:yes"),
			tgbotapi.NewInlineKeyboardButtonData("No", "clear:no"),
		),
	)
}
