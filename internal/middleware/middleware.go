package middleware

import (
	"context"
	"errors"
	"log"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"github.com/AndriyMV/task-manager-bot/internal/contextkeys"
	"github.com/AndriyMV/task-manager-bot/internal/messages"
	"github.com/AndriyMV/task-manager-bot/types"
)

type Middlewares struct {
	users types.UserStore
}

func NewMessageAnalyzer(users types.UserStore) *Middlewares {
	return &Middlewares{
		users: users,
	}
}

// TraceMiddleware tags every update with a request id so log lines
// from one update can be correlated.
func (m *Middlewares) TraceMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		ctx = contextkeys.WithRequestID(ctx, uuid.NewString())
		next(ctx, b, update)
	}
}

// ResolveUserMiddleware loads the registered user for the update's
// sender into the context. An unknown sender passes through; the
// dialogue decides what unregistered users may do.
func (m *Middlewares) ResolveUserMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		var (
			telegramID int64
			chatID     int64
		)

		switch {
		case update.Message != nil && update.Message.From != nil:
			telegramID = update.Message.From.ID
			chatID = update.Message.Chat.ID
		case update.CallbackQuery != nil:
			telegramID = update.CallbackQuery.From.ID
			chatID = getChatIDFromMaybeInaccessibleMessage(update.CallbackQuery.Message)
			if chatID == 0 {
				return
			}
		default:
			return
		}

		if telegramID == 0 || chatID == 0 {
			return
		}

		user, err := m.users.GetUserByTelegramID(ctx, telegramID)
		if err == nil {
			ctx = contextkeys.WithUser(ctx, user)
		} else if !errors.Is(err, types.ErrNotFound) {
			requestID, _ := contextkeys.GetRequestID(ctx)
			log.Printf("[%s] resolve user %d: %v", requestID, telegramID, err)
			b.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:    chatID,
				Text:      messages.ErrorDefault(),
				ParseMode: messages.ParseModeHTML,
			})
			return
		}

		next(ctx, b, update)
	}
}

func getChatIDFromMaybeInaccessibleMessage(m models.MaybeInaccessibleMessage) int64 {
	if m.Message != nil {
		return m.Message.Chat.ID
	}
	if m.InaccessibleMessage != nil {
		return m.InaccessibleMessage.Chat.ID
	}
	return 0
}
