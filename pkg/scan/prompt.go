package scan

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem      Role = "system"
	RoleUser        Role = "user"
	RoleAssistant   Role = "assistant"
	RoleUnspecified Role = ""
)

// Message is a single role-tagged conversational turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Prompt is a chat-style prompt in the shape accepted by provider chat
// completion APIs. Legacy carries the old single-string Anthropic prompt
// format; when set, Messages is ignored and the text is treated as one user
// turn.
type Prompt struct {
	Model    string    `json:"model,omitempty"`
	Messages []Message `json:"messages"`
	Legacy   string    `json:"prompt,omitempty"`
}

// Turns returns the effective message sequence, normalizing the legacy
// single-string format to a one-message user prompt.
func (p *Prompt) Turns() []Message {
	if p.Legacy != "" {
		return []Message{{Role: RoleUser, Content: p.Legacy}}
	}
	return p.Messages
}
