package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/mskeddy/reminder-bot/internal/service"
)

// Conversation steps for multi-message flows.
const (
	stepTimezone     = "await_timezone"
	stepReminderName = "await_reminder_name"
	stepReminderTime = "await_reminder_time"
	stepModifyValue  = "await_modify_value"
)

// pending is the short-lived conversational context for one chat. It is
// gateway-only state and never touches the store.
type pending struct {
	step       string
	name       string // collected reminder name (/setreminder flow)
	reminderID int64  // reminder being modified
	field      string // "name" or "time"
}

// Router wires Telegram updates to handlers and holds the per-chat
// conversation state.
type Router struct {
	bot   *tgbotapi.BotAPI
	log   *zap.Logger
	svc   *service.Service
	state map[int64]*pending
	mu    sync.RWMutex
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, svc *service.Service) *Router {
	return &Router{
		bot:   bot,
		log:   log,
		svc:   svc,
		state: make(map[int64]*pending),
	}
}

func (r *Router) setPending(chatID int64, p *pending) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[chatID] = p
}

func (r *Router) getPending(chatID int64) *pending {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state[chatID]
}

func (r *Router) clearPending(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, chatID)
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)

		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, chatID)
		case strings.HasPrefix(text, "/help"):
			r.sendText(chatID, helpText)
		case strings.HasPrefix(text, "/timezone"):
			r.handleTimezone(ctx, chatID)
		case strings.HasPrefix(text, "/setreminder"):
			r.handleSetReminder(ctx, chatID)
		case strings.HasPrefix(text, "/daily"):
			r.handleDaily(ctx, chatID, text)
		case strings.HasPrefix(text, "/list"):
			r.handleList(ctx, chatID)
		case strings.HasPrefix(text, "/delete"):
			r.handleDelete(ctx, chatID)
		case strings.HasPrefix(text, "/modify"):
			r.handleModify(ctx, chatID)
		case strings.HasPrefix(text, "/clear"):
			r.handleClear(ctx, chatID)
		default:
			// Free-form text belongs to an in-flight flow, if any.
			r.handleFreeForm(ctx, chatID, text)
		}
		return
	}

	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		data := cb.Data
		chatID := cb.Message.Chat.ID

		switch {
		case strings.HasPrefix(data, "delete:"):
			r.handleDeleteCallback(ctx, chatID, data, cb.ID)
		case strings.HasPrefix(data, "modify:"):
			r.handleModifyCallback(ctx, chatID, data, cb.ID)
		case strings.HasPrefix(data, "field:"):
			r.handleFieldCallback(ctx, chatID, data, cb.ID)
		case data == "clear:yes" || data == "clear:no":
			r.handleClearCallback(ctx, chatID, data, cb.ID)
		default:
			// Unknown callback — ignore silently
		}
		return
	}
}

// SendMessage sends a plain text message to the given chat. This makes
// Router satisfy scheduler.Sender; user ids are chat ids in private chats.
func (r *Router) SendMessage(userID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(userID, text))
	return err
}
