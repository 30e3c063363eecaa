package entity

import (
	"fmt"
	"time"
)

type Stage string

// Stage represents the current phase of the interview state machine
const (
	StageInitial    Stage = "INITIAL"     // Waiting for the free-text app idea
	StageInProgress Stage = "IN_PROGRESS" // Cycling question/answer rounds
	StageCompleted  Stage = "COMPLETED"   // Final concepts generated
)

func (s Stage) Validate() error {
	switch s {
	case StageInitial, StageInProgress, StageCompleted:
		return nil
	default:
		return fmt.Errorf("unknown stage: %s", s)
	}
}

type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// Message is a single entry of the conversation transcript.
// Messages are immutable once appended.
type Message struct {
	Seq       int       `json:"seq"`
	Author    Author    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Choice is one selectable answer option for the current question.
type Choice struct {
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Conversation holds the complete in-memory state of one interview session.
// A single instance exists per session; it is never persisted.
type Conversation struct {
	ID             string       `json:"conversation_id"`
	Stage          Stage        `json:"stage"`
	Messages       []Message    `json:"messages"`
	Question       string       `json:"question,omitempty"`
	Choices        []Choice     `json:"choices,omitempty"`
	SelectedLabels []string     `json:"selected_labels,omitempty"`
	QuestionCount  int          `json:"question_count"`
	Progress       int          `json:"progress"`
	Concepts       []AppConcept `json:"concepts,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// KeyFeature is one highlighted capability of a synthesized app concept.
type KeyFeature struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AppConcept is one synthesized application idea produced at interview
// completion.
type AppConcept struct {
	ID             string       `json:"id"`
	ConversationID string       `json:"conversation_id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Features       []KeyFeature `json:"key_features"`
	CreatedAt      time.Time    `json:"created_at"`
}

type Verdict string

// Verdict is the gateway's classification of the user's initial idea prompt
const (
	VerdictValid    Verdict = "VALID"
	VerdictAbstract Verdict = "ABSTRACT"
	VerdictInvalid  Verdict = "INVALID"
)

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatJSON     ResultFormat = "json"
	FormatPDF      ResultFormat = "pdf"
	FormatDOCX     ResultFormat = "docx"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatJSON, FormatPDF, FormatDOCX:
		return true
	default:
		return false
	}
}
