package models

// Personas select the assistant's domain scope.
const (
	PersonaGeneral = "general"
	PersonaGLP1    = "glp1"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequestData carries per-request chat options.
type ChatRequestData struct {
	Persona        string `json:"persona"`
	IncludeHistory bool   `json:"includeHistory"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Messages []ChatMessage   `json:"messages"`
	Data     ChatRequestData `json:"data"`
}

// LastUserMessage returns the most recent user message, or an empty string.
func (r *ChatRequest) LastUserMessage() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return r.Messages[i].Content
		}
	}
	return ""
}
