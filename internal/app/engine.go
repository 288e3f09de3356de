package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"trivia-quiz-bot/internal/domain"
)

// QuestionStore is the durable question bank (Redis, Postgres, in-memory).
type QuestionStore interface {
	Put(ctx context.Context, q domain.Question) error
	Get(ctx context.Context, id int) (domain.Question, error)
	Count(ctx context.Context) (int, error)
}

// SessionStore persists per-user quiz sessions. Put is a full overwrite; the
// read-modify-write around it is not atomic, so two racing events for the
// same user may lose a counter update. Accepted for a conversational flow.
type SessionStore interface {
	Get(ctx context.Context, userKey string) (domain.Session, error)
	Put(ctx context.Context, s domain.Session) error
}

// Reply is what a transport renders: the message text and the conversation
// state the adapter must pass back in with the next event.
type Reply struct {
	Text  string
	State domain.ConversationState
}

const (
	greetingText    = "Приветствую тебя в нашей викторине, нажми «Новый вопрос»."
	correctText     = "Правильно! Поздравляю!\nДля следующего вопроса нажми «Новый вопрос»."
	wrongText       = "Неправильно… Попробуешь ещё раз?"
	revealFmt       = "Правильный ответ:\n%s"
	nextQuestionFmt = "Попробуйте угадать ответ на следующий вопрос:\n\n%s"
	scoreFmt        = "Количество удачных попыток: %d.\nКоличество неудачных попыток: %d."
	neverPlayedText = "Вы ещё не участвовали в викторине."
	noQuestionText  = "Сначала возьмите вопрос — нажмите «Новый вопрос»."
	unknownText     = "Я вас не понимаю, пожалуйста нажмите одну из кнопок ниже."
	farewellText    = "Пока!"
)

// Engine is the quiz dialogue state machine. It holds no mutable state of its
// own; everything lives in the two stores, so any number of engine instances
// (one per transport, or scaled out) can serve the same users.
type Engine struct {
	questions QuestionStore
	sessions  SessionStore

	// fixedCount bounds random selection when > 0, overriding Count().
	fixedCount int
	pick       func(n int) int
}

func NewEngine(questions QuestionStore, sessions SessionStore, fixedCount int) *Engine {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return NewEngineWithPicker(questions, sessions, fixedCount, rnd.Intn)
}

// NewEngineWithPicker is test-only for deterministic question selection.
// pick must return a value in [0, n).
func NewEngineWithPicker(questions QuestionStore, sessions SessionStore, fixedCount int, pick func(n int) int) *Engine {
	return &Engine{
		questions:  questions,
		sessions:   sessions,
		fixedCount: fixedCount,
		pick:       pick,
	}
}

// Greet produces the welcome message. No session is touched.
func (e *Engine) Greet(userKey string) Reply {
	return Reply{Text: greetingText, State: domain.StateAwaitingNewQuestion}
}

// RequestNewQuestion assigns a uniformly random question to the user,
// creating the session on first use. Repeats of previously asked questions
// are allowed on purpose.
func (e *Engine) RequestNewQuestion(ctx context.Context, userKey string) (Reply, error) {
	question, err := e.pickQuestion(ctx)
	if err != nil {
		return Reply{}, err
	}

	session, err := e.sessions.Get(ctx, userKey)
	if errors.Is(err, domain.ErrSessionNotFound) {
		session = domain.Session{UserKey: userKey}
	} else if err != nil {
		return Reply{}, err
	}
	session.LastAskedQuestionID = question.ID
	if err := e.sessions.Put(ctx, session); err != nil {
		return Reply{}, err
	}

	return Reply{Text: question.Prompt, State: domain.StateAwaitingAnswer}, nil
}

// SubmitAnswer compares the normalized submission against the normalized
// canonical answer of the outstanding question and updates the counters.
// With no outstanding question it fails with ErrNoActiveQuestion; the Reply
// still carries a user-facing text so adapters can render the failure.
func (e *Engine) SubmitAnswer(ctx context.Context, userKey, rawText string) (Reply, error) {
	session, err := e.activeSession(ctx, userKey)
	if err != nil {
		return replyForNoActiveQuestion(err)
	}

	question, err := e.questions.Get(ctx, session.LastAskedQuestionID)
	if err != nil {
		return Reply{}, err
	}

	if Normalize(rawText) == Normalize(question.Answer) {
		session.Successful++
		if err := e.sessions.Put(ctx, session); err != nil {
			return Reply{}, err
		}
		return Reply{Text: correctText, State: domain.StateAwaitingNewQuestion}, nil
	}

	session.Unsuccessful++
	if err := e.sessions.Put(ctx, session); err != nil {
		return Reply{}, err
	}
	return Reply{Text: wrongText, State: domain.StateAwaitingAnswer}, nil
}

// Surrender reveals the canonical answer verbatim and immediately assigns the
// next random question, keeping the user in the answering state.
func (e *Engine) Surrender(ctx context.Context, userKey string) (Reply, error) {
	session, err := e.activeSession(ctx, userKey)
	if err != nil {
		return replyForNoActiveQuestion(err)
	}

	question, err := e.questions.Get(ctx, session.LastAskedQuestionID)
	if err != nil {
		return Reply{}, err
	}

	next, err := e.pickQuestion(ctx)
	if err != nil {
		return Reply{}, err
	}
	session.LastAskedQuestionID = next.ID
	if err := e.sessions.Put(ctx, session); err != nil {
		return Reply{}, err
	}

	text := fmt.Sprintf(revealFmt, question.Answer) + "\n\n" + fmt.Sprintf(nextQuestionFmt, next.Prompt)
	return Reply{Text: text, State: domain.StateAwaitingAnswer}, nil
}

// ShowScore reports the running counters without mutating anything. The
// caller stays in whatever state it was in.
func (e *Engine) ShowScore(ctx context.Context, userKey string, current domain.ConversationState) (Reply, error) {
	session, err := e.sessions.Get(ctx, userKey)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return Reply{Text: neverPlayedText, State: current}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: fmt.Sprintf(scoreFmt, session.Successful, session.Unsuccessful), State: current}, nil
}

// UnrecognizedInput answers free text sent while no question is outstanding.
func (e *Engine) UnrecognizedInput(userKey string) Reply {
	return Reply{Text: unknownText, State: domain.StateAwaitingNewQuestion}
}

// Farewell ends the conversation.
func (e *Engine) Farewell(userKey string) Reply {
	return Reply{Text: farewellText, State: domain.StateEnded}
}

// activeSession loads the session and enforces the answer/surrender
// precondition: a question must be outstanding.
func (e *Engine) activeSession(ctx context.Context, userKey string) (domain.Session, error) {
	session, err := e.sessions.Get(ctx, userKey)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.Session{}, domain.ErrNoActiveQuestion
	}
	if err != nil {
		return domain.Session{}, err
	}
	if session.LastAskedQuestionID == 0 {
		return domain.Session{}, domain.ErrNoActiveQuestion
	}
	return session, nil
}

func replyForNoActiveQuestion(err error) (Reply, error) {
	if errors.Is(err, domain.ErrNoActiveQuestion) {
		return Reply{Text: noQuestionText, State: domain.StateAwaitingNewQuestion}, err
	}
	return Reply{}, err
}

func (e *Engine) pickQuestion(ctx context.Context) (domain.Question, error) {
	count := e.fixedCount
	if count <= 0 {
		var err error
		count, err = e.questions.Count(ctx)
		if err != nil {
			return domain.Question{}, err
		}
	}
	if count <= 0 {
		return domain.Question{}, domain.ErrNoQuestions
	}
	return e.questions.Get(ctx, e.pick(count)+1)
}
