// Package ingest parses raw quiz corpora into the question store.
//
// A corpus is a directory of text files. Each file splits into chunks on
// blank lines; a chunk holding the «Вопрос» marker opens a pending entry and
// the next «Ответ» chunk closes it. The payload of a chunk is everything
// after the first ":\n". Pairing is by document order only — there is no key
// linking a question to its answer, so corpora must keep one answer right
// after each question.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"trivia-quiz-bot/internal/app"
	"trivia-quiz-bot/internal/domain"
	"golang.org/x/text/encoding/charmap"
)

const (
	questionMarker = "Вопрос"
	answerMarker   = "Ответ"
	payloadSep     = ":\n"
)

// EncodingKOI8R is the historical quiz corpus encoding and the default.
const (
	EncodingKOI8R = "koi8-r"
	EncodingUTF8  = "utf-8"
)

// DecodeError reports a corpus file unreadable in the expected encoding.
// It is fatal to the ingestion run: skipping the file silently would shift
// the id sequence.
type DecodeError struct {
	File string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode corpus file %s: %v", e.File, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// LoadDir ingests up to limit corpus files from dir (limit <= 0 means all),
// in file-name order, assigning dense sequential ids starting at 1. It
// returns the number of questions written to the store. Re-running over the
// same corpus overwrites the same ids.
func LoadDir(ctx context.Context, store app.QuestionStore, dir string, limit int, encoding string) (int, error) {
	decode, err := decoder(encoding)
	if err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read corpus dir: %w", err)
	}

	total := 0
	scanned := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if limit > 0 && scanned >= limit {
			break
		}
		scanned++

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return total, fmt.Errorf("read corpus file: %w", err)
		}
		text, err := decode(data)
		if err != nil {
			return total, &DecodeError{File: entry.Name(), Err: err}
		}

		added, err := loadDocument(ctx, store, text, total)
		total += added
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// loadDocument scans one document's chunks and upserts completed pairs. An id
// is assigned only when a question meets its answer, so the sequence stays
// dense even when a corpus is malformed; lone answers are skipped and a
// trailing unanswered question is dropped.
func loadDocument(ctx context.Context, store app.QuestionStore, text string, assigned int) (int, error) {
	added := 0
	pending := ""
	open := false
	for _, chunk := range strings.Split(text, "\n\n") {
		switch {
		case strings.Contains(chunk, questionMarker):
			pending = payload(chunk)
			open = true
		case strings.Contains(chunk, answerMarker):
			if !open {
				continue
			}
			question := domain.Question{
				ID:     assigned + added + 1,
				Prompt: pending,
				Answer: payload(chunk),
			}
			if err := store.Put(ctx, question); err != nil {
				return added, fmt.Errorf("store question %d: %w", question.ID, err)
			}
			added++
			open = false
		}
	}
	return added, nil
}

// payload is everything after the first ":\n" in a chunk, empty when the
// separator is missing.
func payload(chunk string) string {
	_, after, _ := strings.Cut(chunk, payloadSep)
	return after
}

func decoder(encoding string) (func([]byte) (string, error), error) {
	switch encoding {
	case "", EncodingKOI8R:
		return func(data []byte) (string, error) {
			out, err := charmap.KOI8R.NewDecoder().Bytes(data)
			if err != nil {
				return "", err
			}
			return string(out), nil
		}, nil
	case EncodingUTF8:
		return func(data []byte) (string, error) {
			if !utf8.Valid(data) {
				return "", fmt.Errorf("invalid UTF-8")
			}
			return string(data), nil
		}, nil
	default:
		return nil, fmt.Errorf("unsupported corpus encoding %q", encoding)
	}
}
