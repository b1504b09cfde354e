package handlers

import (
	"context"
	"log"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/AndriyMV/task-manager-bot/internal/contextkeys"
	"github.com/AndriyMV/task-manager-bot/internal/dialog"
	"github.com/AndriyMV/task-manager-bot/internal/messages"
	"github.com/AndriyMV/task-manager-bot/internal/utils"
)

// Handlers bridges Telegram updates and the dialogue machine: updates
// become events, replies become messages with inline keyboards.
type Handlers struct {
	machine *dialog.Machine
}

func NewHandlers(machine *dialog.Machine) *Handlers {
	return &Handlers{
		machine: machine,
	}
}

func (h *Handlers) MainHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		h.handleMessage(ctx, b, update.Message)
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, b, update.CallbackQuery)
	}
}

func (h *Handlers) handleMessage(ctx context.Context, b *bot.Bot, msg *models.Message) {
	chatID := msg.Chat.ID
	from := senderFrom(msg.From)
	text := strings.TrimSpace(msg.Text)

	var ev dialog.Event
	if strings.HasPrefix(text, "/") {
		// "/create extra words" routes on the command token only.
		command, _, _ := strings.Cut(text, " ")
		ev = dialog.CommandEvent(command)
	} else {
		ev = dialog.TextEvent(text)
	}

	h.reply(ctx, b, chatID, h.machine.Handle(ctx, chatID, from, ev))
}

func (h *Handlers) handleCallback(ctx context.Context, b *bot.Bot, cb *models.CallbackQuery) {
	// Always ack so the client stops the spinner, even on bad data.
	defer func() {
		if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: cb.ID,
		}); err != nil {
			h.logf(ctx, "answer callback %s: %v", cb.ID, err)
		}
	}()

	chatID := chatIDFromCallback(cb)
	if chatID == 0 {
		return
	}
	from := senderFrom(&cb.From)

	name, params, err := dialog.DecodeAction(cb.Data)
	if err != nil {
		h.logf(ctx, "bad callback data in chat %d: %v", chatID, err)
		h.reply(ctx, b, chatID, []dialog.Reply{{Text: messages.ErrorDefault()}})
		return
	}

	h.reply(ctx, b, chatID, h.machine.Handle(ctx, chatID, from, dialog.ActionEvent(name, params)))
}

func (h *Handlers) reply(ctx context.Context, b *bot.Bot, chatID int64, replies []dialog.Reply) {
	for _, r := range replies {
		params := &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      r.Text,
			ParseMode: messages.ParseModeHTML,
		}
		if len(r.Buttons) > 0 {
			params.ReplyMarkup = utils.BuildInlineKeyboard(r.Buttons)
		}
		if _, err := b.SendMessage(ctx, params); err != nil {
			h.logf(ctx, "send message to chat %d: %v", chatID, err)
		}
	}
}

func (h *Handlers) logf(ctx context.Context, format string, args ...any) {
	requestID, _ := contextkeys.GetRequestID(ctx)
	log.Printf("["+requestID+"] "+format, args...)
}

func senderFrom(u *models.User) dialog.Sender {
	if u == nil {
		return dialog.Sender{}
	}
	return dialog.Sender{
		TelegramID: u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
	}
}

func chatIDFromCallback(cb *models.CallbackQuery) int64 {
	if cb.Message.Message != nil {
		return cb.Message.Message.Chat.ID
	}
	if cb.Message.InaccessibleMessage != nil {
		return cb.Message.InaccessibleMessage.Chat.ID
	}
	return 0
}
