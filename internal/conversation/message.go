package conversation

// Role identifies who produced a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a conversation. Messages are never mutated
// after they are appended.
type Message struct {
	Role    Role
	Content string
}

// Completer produces an assistant reply for an ordered message sequence.
// Any transport, auth, or quota failure is returned as an error.
type Completer interface {
	ChatCompletion(messages []Message) (string, error)
}
