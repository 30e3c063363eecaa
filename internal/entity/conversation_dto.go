package entity

import "time"

type SubmitPromptRequest struct {
	Prompt string `json:"prompt"`
}

type ToggleChoiceRequest struct {
	Label string `json:"label"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type MessageDTO struct {
	Seq    int    `json:"seq"`
	Author Author `json:"author"`
	Text   string `json:"text"`
}

type ChoiceDTO struct {
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

type KeyFeatureDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AppConceptDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	KeyFeatures []KeyFeatureDTO `json:"key_features"`
}

type ConversationDTO struct {
	ID             string          `json:"conversation_id"`
	Stage          Stage           `json:"stage"`
	Messages       []MessageDTO    `json:"messages"`
	Question       string          `json:"question,omitempty"`
	Choices        []ChoiceDTO     `json:"choices"`
	SelectedLabels []string        `json:"selected_labels"`
	QuestionCount  int             `json:"question_count"`
	MaxQuestions   int             `json:"max_questions"`
	Progress       int             `json:"progress"`
	Concepts       []AppConceptDTO `json:"concepts,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
