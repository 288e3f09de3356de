package telegram

import (
	"testing"

	"trivia-quiz-bot/internal/domain"
	"trivia-quiz-bot/internal/transport/dialog"
)

func TestReplyKeyboardRendersDialogRows(t *testing.T) {
	markup := replyKeyboard(dialog.Keyboard(domain.StateAwaitingAnswer))

	if len(markup.Keyboard) != 2 {
		t.Fatalf("expected 2 keyboard rows, got %d", len(markup.Keyboard))
	}
	if markup.Keyboard[0][0].Text != dialog.ButtonNewQuestion || markup.Keyboard[0][1].Text != dialog.ButtonSurrender {
		t.Fatalf("unexpected first row: %+v", markup.Keyboard[0])
	}
	if markup.Keyboard[1][0].Text != dialog.ButtonScore {
		t.Fatalf("unexpected second row: %+v", markup.Keyboard[1])
	}
	if !markup.ResizeKeyboard {
		t.Fatalf("expected a resized keyboard")
	}
}

func TestStateDefaultsAndForgetsOnEnd(t *testing.T) {
	bot := &Bot{states: make(map[int64]domain.ConversationState)}

	if got := bot.state(1); got != domain.StateAwaitingNewQuestion {
		t.Fatalf("expected default state, got %s", got)
	}
	bot.setState(1, domain.StateAwaitingAnswer)
	if got := bot.state(1); got != domain.StateAwaitingAnswer {
		t.Fatalf("expected stored state, got %s", got)
	}
	bot.setState(1, domain.StateEnded)
	if got := bot.state(1); got != domain.StateAwaitingNewQuestion {
		t.Fatalf("expected state entry dropped after end, got %s", got)
	}
}
