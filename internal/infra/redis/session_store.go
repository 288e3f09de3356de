package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"trivia-quiz-bot/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps one JSON document per user under the transport-scoped
// key, e.g. "user_tg_123". Put is a full overwrite; there is no per-field
// increment, so racing events for one user may lose a counter update.
type SessionStore struct {
	client *redis.Client
}

type sessionDoc struct {
	LastAskedQuestion string `json:"last_asked_question,omitempty"`
	Successful        int    `json:"successful"`
	Unsuccessful      int    `json:"unsuccessful"`
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Get(ctx context.Context, userKey string) (domain.Session, error) {
	data, err := s.client.Get(ctx, userKey).Bytes()
	if err == redis.Nil {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session %s: %w", userKey, err)
	}

	var doc sessionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal session %s: %w", userKey, err)
	}
	session := domain.Session{
		UserKey:      userKey,
		Successful:   doc.Successful,
		Unsuccessful: doc.Unsuccessful,
	}
	if doc.LastAskedQuestion != "" {
		id, err := parseQuestionKey(doc.LastAskedQuestion)
		if err != nil {
			return domain.Session{}, fmt.Errorf("session %s: %w", userKey, err)
		}
		session.LastAskedQuestionID = id
	}
	return session, nil
}

func (s *SessionStore) Put(ctx context.Context, session domain.Session) error {
	doc := sessionDoc{
		Successful:   session.Successful,
		Unsuccessful: session.Unsuccessful,
	}
	if session.LastAskedQuestionID != 0 {
		doc.LastAskedQuestion = questionKey(session.LastAskedQuestionID)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.UserKey, err)
	}
	if err := s.client.Set(ctx, session.UserKey, data, 0).Err(); err != nil {
		return fmt.Errorf("store session %s: %w", session.UserKey, err)
	}
	return nil
}

// parseQuestionKey rejects documents whose reference does not look like
// "question_{id}" instead of carrying a zero id forward.
func parseQuestionKey(key string) (int, error) {
	raw, ok := strings.CutPrefix(key, "question_")
	if !ok {
		return 0, fmt.Errorf("malformed question reference %q", key)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("malformed question reference %q", key)
	}
	return id, nil
}
