package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"trivia-quiz-bot/internal/domain"
	"github.com/redis/go-redis/v9"
)

// totalKey tracks the highest ingested question id. Ingestion writes ids in
// ascending order, so the last Put of a run leaves the bank size here and
// Count needs no key scan.
const totalKey = "questions_total"

// QuestionStore keeps one JSON document per question under "question_{id}",
// the layout the original bots share.
type QuestionStore struct {
	client *redis.Client
}

type questionDoc struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func NewQuestionStore(client *redis.Client) *QuestionStore {
	return &QuestionStore{client: client}
}

func (s *QuestionStore) Put(ctx context.Context, q domain.Question) error {
	data, err := json.Marshal(questionDoc{Question: q.Prompt, Answer: q.Answer})
	if err != nil {
		return fmt.Errorf("marshal question %d: %w", q.ID, err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, questionKey(q.ID), data, 0)
	pipe.Set(ctx, totalKey, q.ID, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store question %d: %w", q.ID, err)
	}
	return nil
}

func (s *QuestionStore) Get(ctx context.Context, id int) (domain.Question, error) {
	data, err := s.client.Get(ctx, questionKey(id)).Bytes()
	if err == redis.Nil {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question %d: %w", id, err)
	}
	var doc questionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal question %d: %w", id, err)
	}
	return domain.Question{ID: id, Prompt: doc.Question, Answer: doc.Answer}, nil
}

func (s *QuestionStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.Get(ctx, totalKey).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load question count: %w", err)
	}
	return n, nil
}

func questionKey(id int) string {
	return fmt.Sprintf("question_%d", id)
}
