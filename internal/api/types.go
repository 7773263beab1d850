package api

// Options are the sampling options understood by the Ollama API
type Options struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// GenerateRequest is the body of POST /api/generate
type GenerateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options Options `json:"options"`
}

// GenerateResponse is the non-streaming /api/generate response
type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Message represents a single message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  Options   `json:"options"`
}

// ChatResponse is the non-streaming /api/chat response. Some servers return
// a message list or a bare response field instead of a single message.
type ChatResponse struct {
	Model    string    `json:"model"`
	Message  *Message  `json:"message,omitempty"`
	Messages []Message `json:"messages,omitempty"`
	Response string    `json:"response,omitempty"`
	Done     bool      `json:"done"`
}

// Content returns the assistant text carried by the response
func (r *ChatResponse) Content() string {
	switch {
	case r.Message != nil:
		return r.Message.Content
	case len(r.Messages) > 0:
		return r.Messages[len(r.Messages)-1].Content
	default:
		return r.Response
	}
}

// ErrorResponse is the error body returned by Ollama
type ErrorResponse struct {
	Error string `json:"error"`
}
