package entity

// Chat roles understood by OpenAI-compatible providers
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one role-tagged message of the wire payload.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the request body sent to the chat completions
// endpoint, both by the gateway and by the pass-through proxy.
type ChatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []ChatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

type ChatCompletionResponse struct {
	ID      string       `json:"id,omitempty"`
	Model   string       `json:"model,omitempty"`
	Choices []ChatChoice `json:"choices"`
}

// QuestionPayload is the structured reply expected when asking the model
// for the next interview question.
type QuestionPayload struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// MoreOptionsPayload is the structured reply expected when asking the model
// for additional options to the current question.
type MoreOptionsPayload struct {
	Options []string `json:"options"`
}

// KeyFeaturePayload mirrors KeyFeature in the model's final reply.
type KeyFeaturePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ConceptPayload is one synthesized concept as returned by the model.
type ConceptPayload struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	KeyFeatures []KeyFeaturePayload `json:"key_features"`
}
