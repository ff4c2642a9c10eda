package conversation

import "time"

// Role is the author of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates a message stamped with the current UTC time.
func New(role Role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now().UTC()}
}

// Label returns the speaker label used when rendering history into prompts.
func (m Message) Label() string {
	if m.Role == RoleUser {
		return "User"
	}
	return "Assistant"
}

// Last returns at most the n most recent messages.
func Last(history []Message, n int) []Message {
	if n <= 0 {
		return nil
	}
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
