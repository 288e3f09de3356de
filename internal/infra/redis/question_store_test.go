package redis

import (
	"context"
	"testing"

	"trivia-quiz-bot/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionStoreRoundTrip(t *testing.T) {
	client, mr := newClient(t)
	store := NewQuestionStore(client)
	ctx := context.Background()

	q := domain.Question{ID: 7, Prompt: "Столица Франции?", Answer: "Париж."}
	if err := store.Put(ctx, q); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Stored under the shared key layout.
	raw, err := mr.Get("question_7")
	if err != nil {
		t.Fatalf("expected question_7 key: %v", err)
	}
	if raw != `{"question":"Столица Франции?","answer":"Париж."}` {
		t.Fatalf("unexpected document %s", raw)
	}

	got, err := store.Get(ctx, 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != q {
		t.Fatalf("expected %+v, got %+v", q, got)
	}
}

func TestQuestionStoreNotFound(t *testing.T) {
	client, _ := newClient(t)
	store := NewQuestionStore(client)

	if _, err := store.Get(context.Background(), 99); err != domain.ErrQuestionNotFound {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestQuestionStoreCountTracksLastPut(t *testing.T) {
	client, _ := newClient(t)
	store := NewQuestionStore(client)
	ctx := context.Background()

	if n, err := store.Count(ctx); err != nil || n != 0 {
		t.Fatalf("expected empty count, got %d (%v)", n, err)
	}
	for id := 1; id <= 3; id++ {
		if err := store.Put(ctx, domain.Question{ID: id, Prompt: "q", Answer: "a"}); err != nil {
			t.Fatalf("put %d: %v", id, err)
		}
	}
	if n, err := store.Count(ctx); err != nil || n != 3 {
		t.Fatalf("expected count 3, got %d (%v)", n, err)
	}
}

func newClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}
