package domain

import "errors"

var (
	// ErrQuestionNotFound is returned when a question id is not in the store.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrSessionNotFound is returned when a user has no stored session yet.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoActiveQuestion means answer/surrender was called before any
	// question was asked. Always rendered as a user-facing message, never fatal.
	ErrNoActiveQuestion = errors.New("no active question for user")
	// ErrNoQuestions means the question bank is empty or its size is unknown.
	ErrNoQuestions = errors.New("question bank is empty")
)
