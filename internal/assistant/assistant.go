// Package assistant defines the contract for the in-app AI helper. The
// assistant answers questions about using the application; it never
// participates in the invoice lifecycle.
package assistant

import "context"

// Role of a chat message author.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of an assistant conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session carries the conversation so far plus the UI language, which the
// assistant should answer in when it can.
type Session struct {
	Language string    `json:"language"`
	History  []Message `json:"history"`
}

// Responder produces the assistant's reply to a new user message.
type Responder interface {
	Respond(ctx context.Context, session *Session, message string) (string, error)
}

// Error reports an assistant failure. The message is safe to show users.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }
