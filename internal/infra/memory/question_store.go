package memory

import (
	"context"
	"sync"

	"trivia-quiz-bot/internal/domain"
)

// QuestionStore is an in-memory question bank (tests and local runs).
type QuestionStore struct {
	mu        sync.RWMutex
	questions map[int]domain.Question
	maxID     int
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{questions: make(map[int]domain.Question)}
}

func (s *QuestionStore) Put(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.ID] = q
	if q.ID > s.maxID {
		s.maxID = q.ID
	}
	return nil
}

func (s *QuestionStore) Get(_ context.Context, id int) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	question, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return question, nil
}

// Count reports the highest ingested id. Ids are dense, so this equals the
// number of stored questions.
func (s *QuestionStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxID, nil
}
