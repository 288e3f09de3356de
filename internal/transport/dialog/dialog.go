// Package dialog maps raw inbound chat text onto engine operations. Both
// adapters (Telegram, websocket) share this table, so command wording and
// state gating live in exactly one place.
package dialog

import (
	"context"
	"errors"
	"strings"

	"trivia-quiz-bot/internal/app"
	"trivia-quiz-bot/internal/domain"
)

// Command is the recognized meaning of an inbound message.
type Command int

const (
	CommandText Command = iota
	CommandGreet
	CommandNewQuestion
	CommandSurrender
	CommandScore
	CommandExit
)

// Button labels, shared with the quick-reply keyboards.
const (
	ButtonNewQuestion = "Новый вопрос"
	ButtonSurrender   = "Сдаться"
	ButtonScore       = "Счёт"
)

// Classify decides which command a message carries; anything unmatched is
// free text (an answer attempt, or noise).
func Classify(text string) Command {
	switch {
	case text == "/start", strings.EqualFold(strings.TrimSpace(text), "привет"):
		return CommandGreet
	case text == ButtonNewQuestion:
		return CommandNewQuestion
	case text == ButtonSurrender:
		return CommandSurrender
	case text == ButtonScore:
		return CommandScore
	case text == "/cancel":
		return CommandExit
	default:
		return CommandText
	}
}

// Keyboard lists the quick-reply rows valid in a conversation state.
func Keyboard(state domain.ConversationState) [][]string {
	switch state {
	case domain.StateAwaitingAnswer:
		return [][]string{{ButtonNewQuestion, ButtonSurrender}, {ButtonScore}}
	case domain.StateEnded:
		return nil
	default:
		return [][]string{{ButtonNewQuestion}, {ButtonScore}}
	}
}

// Dispatch runs one inbound message through the engine. Commands invalid in
// the current state fall through to the didn't-understand reply, and the
// no-active-question precondition failure is already rendered as a user
// message; only storage-level errors come back as errors.
func Dispatch(ctx context.Context, engine *app.Engine, userKey string, state domain.ConversationState, text string) (app.Reply, error) {
	switch Classify(text) {
	case CommandGreet:
		return engine.Greet(userKey), nil
	case CommandNewQuestion:
		return engine.RequestNewQuestion(ctx, userKey)
	case CommandSurrender:
		if state != domain.StateAwaitingAnswer {
			return engine.UnrecognizedInput(userKey), nil
		}
		return asUserReply(engine.Surrender(ctx, userKey))
	case CommandScore:
		return engine.ShowScore(ctx, userKey, state)
	case CommandExit:
		return engine.Farewell(userKey), nil
	default:
		if state == domain.StateAwaitingAnswer {
			return asUserReply(engine.SubmitAnswer(ctx, userKey, text))
		}
		return engine.UnrecognizedInput(userKey), nil
	}
}

// asUserReply swallows ErrNoActiveQuestion: the engine already produced the
// user-facing text for it.
func asUserReply(reply app.Reply, err error) (app.Reply, error) {
	if errors.Is(err, domain.ErrNoActiveQuestion) {
		return reply, nil
	}
	return reply, err
}
