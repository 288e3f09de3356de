package domain

// Question is a single trivia entry, created once by ingestion and immutable
// afterwards. IDs are assigned densely starting at 1, so the highest id equals
// the size of the question bank.
type Question struct {
	ID     int
	Prompt string
	Answer string
}

// Session is the durable per-user record shared by every transport instance.
// LastAskedQuestionID is zero while no question is outstanding.
type Session struct {
	UserKey             string
	LastAskedQuestionID int
	Successful          int
	Unsuccessful        int
}

// ConversationState is the ephemeral dialogue mode driving which commands are
// valid next. It is returned by every engine operation and passed back in by
// the adapter on the next event; it is not part of the stored Session.
type ConversationState string

const (
	// StateAwaitingNewQuestion expects the user to ask for a question.
	StateAwaitingNewQuestion ConversationState = "awaiting_new_question"
	// StateAwaitingAnswer expects free-text answers or a surrender.
	StateAwaitingAnswer ConversationState = "awaiting_answer"
	// StateEnded marks a finished conversation; adapters drop their state entry.
	StateEnded ConversationState = "ended"
)

// UserKey builds the store key for a user within a transport namespace,
// e.g. UserKey("tg", "123") -> "user_tg_123". The prefix keeps identically
// numbered ids from different platforms apart.
func UserKey(transport, userID string) string {
	return "user_" + transport + "_" + userID
}
