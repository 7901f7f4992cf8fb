package model

import "context"

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one transcript entry. Assistant entries optionally carry
// the result count, the query that produced them, or an error flag.
type ChatMessage struct {
	Role    Role         `json:"role"`
	Text    string       `json:"text"`
	Count   *int         `json:"count,omitempty"`
	IsError bool         `json:"isError,omitempty"`
	Query   *QueryParams `json:"query,omitempty"`
}

// UserMessage builds a user transcript entry.
func UserMessage(text string) ChatMessage {
	return ChatMessage{Role: RoleUser, Text: text}
}

// AssistantMessage builds an assistant transcript entry carrying the result
// count and the query that produced it.
func AssistantMessage(text string, count int, query *QueryParams) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Text: text, Count: &count, Query: query}
}

// ErrorMessage builds an error-flagged assistant transcript entry.
func ErrorMessage(text string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Text: "Error: " + text, IsError: true}
}

type TranscriptRepository interface {
	// Append adds a message to the transcript of the given session.
	Append(ctx context.Context, sessionID string, message ChatMessage) error

	// Load retrieves the full transcript for a session, oldest first.
	Load(ctx context.Context, sessionID string) (*Transcript, error)

	// Clear removes the whole transcript for a session.
	Clear(ctx context.Context, sessionID string) error

	// Count returns the number of messages in the transcript.
	Count(ctx context.Context, sessionID string) (int, error)
}

// Transcript represents loaded transcript data with its session identity.
type Transcript struct {
	SessionID string
	Messages  []ChatMessage
}

// CredentialStore persists the opaque API credential under a fixed key.
// An unset credential loads as the empty string without error.
type CredentialStore interface {
	Save(ctx context.Context, credential string) error
	Load(ctx context.Context) (string, error)
}
