// Package telegram adapts the quiz dialogue to the Telegram Bot API via long
// polling. The adapter is deliberately thin: it classifies inbound text,
// calls the engine through the shared dialog layer and renders the returned
// reply with the quick-reply keyboard for the new state.
package telegram

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"trivia-quiz-bot/internal/app"
	"trivia-quiz-bot/internal/domain"
	"trivia-quiz-bot/internal/transport/dialog"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sendCooldown matches the original bot's pause before resuming after a
// network failure.
const sendCooldown = 20 * time.Second

type Bot struct {
	api    *tgbotapi.BotAPI
	engine *app.Engine

	// Conversation state per chat, ephemeral by design: after a restart every
	// user simply starts from the greeting while their stored score survives.
	mu     sync.Mutex
	states map[int64]domain.ConversationState
}

func New(token string, engine *app.Engine) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:    api,
		engine: engine,
		states: make(map[int64]domain.ConversationState),
	}, nil
}

// Run consumes updates until the context is canceled. Transport errors are
// logged and survived; the engine never sees them.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)
	defer b.api.StopReceivingUpdates()

	log.Printf("telegram bot started as @%s", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			if err := b.handle(ctx, update.Message); err != nil {
				log.Printf("telegram send failed, cooling down %s: %v", sendCooldown, err)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(sendCooldown):
				}
			}
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	userKey := domain.UserKey("tg", strconv.FormatInt(chatID, 10))

	reply, err := dialog.Dispatch(ctx, b.engine, userKey, b.state(chatID), msg.Text)
	if err != nil {
		log.Printf("telegram dispatch for chat %d: %v", chatID, err)
		reply = app.Reply{Text: "Что-то пошло не так, попробуйте ещё раз.", State: b.state(chatID)}
	}
	b.setState(chatID, reply.State)

	out := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.State == domain.StateEnded {
		out.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	} else {
		out.ReplyMarkup = replyKeyboard(dialog.Keyboard(reply.State))
	}
	_, err = b.api.Send(out)
	return err
}

func (b *Bot) state(chatID int64) domain.ConversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if state, ok := b.states[chatID]; ok {
		return state
	}
	return domain.StateAwaitingNewQuestion
}

func (b *Bot) setState(chatID int64, state domain.ConversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if state == domain.StateEnded {
		delete(b.states, chatID)
		return
	}
	b.states[chatID] = state
}

func replyKeyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	keyboard := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		keyboard = append(keyboard, buttons)
	}
	markup := tgbotapi.NewReplyKeyboard(keyboard...)
	markup.ResizeKeyboard = true
	return markup
}
