package models

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the three allowed roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Conversation is a chat session grouping ordered messages.
type Conversation struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `json:"title,omitempty"`
	ModelName string    `json:"model_name"`
}

// Message is one turn in a conversation.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	TokenCount     *int64    `json:"token_count,omitempty"`
}

// UsageRecord captures the resource cost of one model invocation.
type UsageRecord struct {
	ID           int64     `json:"id"`
	ModelName    string    `json:"model_name"`
	TokensUsed   int64     `json:"tokens_used"`
	ResponseTime float64   `json:"response_time,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
