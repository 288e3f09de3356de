package postgres

import (
	"context"
	"errors"
	"fmt"

	"trivia-quiz-bot/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionStore is the Postgres-backed question bank, for deployments that
// already run Postgres and do not want Redis as the source of truth.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) Put(ctx context.Context, q domain.Question) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO questions (id, prompt, answer) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET prompt = EXCLUDED.prompt, answer = EXCLUDED.answer`,
		q.ID, q.Prompt, q.Answer)
	if err != nil {
		return fmt.Errorf("store question %d: %w", q.ID, err)
	}
	return nil
}

func (s *QuestionStore) Get(ctx context.Context, id int) (domain.Question, error) {
	question := domain.Question{ID: id}
	err := s.pool.QueryRow(ctx, `SELECT prompt, answer FROM questions WHERE id = $1`, id).
		Scan(&question.Prompt, &question.Answer)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question %d: %w", id, err)
	}
	return question, nil
}

func (s *QuestionStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}
