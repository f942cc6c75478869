package models

// HistoryEntry is the wire shape of a prior turn in chat_history
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message     string         `json:"message"`
	ChatHistory []HistoryEntry `json:"chat_history"`
}

// NewChatRequest builds a request for message with the given prior turns.
// chat_history is always encoded as an array, never null.
func NewChatRequest(message string, prior []Message) ChatRequest {
	entries := make([]HistoryEntry, 0, len(prior))
	for _, m := range prior {
		entries = append(entries, HistoryEntry{Role: string(m.Role), Content: m.Content})
	}
	return ChatRequest{
		Message:     message,
		ChatHistory: entries,
	}
}

// ChatResponse is the successful reply of POST /api/chat
type ChatResponse struct {
	Response string `json:"response"`
}

// Text returns the reply text
func (r *ChatResponse) Text() string {
	if r == nil {
		return ""
	}
	return r.Response
}

// HealthStatus is the reply of GET /api/health
type HealthStatus struct {
	Status string `json:"status"`
}

// OK reports whether the backend declared itself healthy
func (h *HealthStatus) OK() bool {
	return h != nil && h.Status == "ok"
}
