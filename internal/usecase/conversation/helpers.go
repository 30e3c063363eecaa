package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/futig/concept-interview/internal/entity"
)

// appendMessage appends a transcript entry with the next sequence number
func appendMessage(c *entity.Conversation, author entity.Author, text string) {
	c.Messages = append(c.Messages, entity.Message{
		Seq:       len(c.Messages) + 1,
		Author:    author,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
}

// historyWith returns the transcript plus one extra message, without
// touching the conversation itself. Used to build gateway requests before
// committing any mutation.
func historyWith(c *entity.Conversation, author entity.Author, text string) []entity.Message {
	history := make([]entity.Message, 0, len(c.Messages)+1)
	history = append(history, c.Messages...)
	history = append(history, entity.Message{
		Seq:    len(c.Messages) + 1,
		Author: author,
		Text:   text,
	})
	return history
}

// setQuestion installs a fresh question: the question text joins the
// transcript as an assistant message and the options replace the choice set
// with nothing selected.
func setQuestion(c *entity.Conversation, payload *entity.QuestionPayload) {
	appendMessage(c, entity.AuthorAssistant, payload.Question)

	c.Question = payload.Question
	c.Choices = make([]entity.Choice, 0, len(payload.Options))
	for _, option := range payload.Options {
		c.Choices = append(c.Choices, entity.Choice{Label: option})
	}
	c.SelectedLabels = nil
}

// syncSelectedLabels rebuilds the selected-labels list from the choice set,
// keeping the two views consistent in both directions
func syncSelectedLabels(c *entity.Conversation) {
	c.SelectedLabels = nil
	for _, choice := range c.Choices {
		if choice.Selected {
			c.SelectedLabels = append(c.SelectedLabels, choice.Label)
		}
	}
}

// selectionSummary renders the selected labels as the user's answer message
func selectionSummary(labels []string) string {
	if len(labels) == 1 {
		return fmt.Sprintf("I choose: %s", labels[0])
	}
	return fmt.Sprintf("I choose: %s", strings.Join(labels, "; "))
}

func choiceLabels(choices []entity.Choice) []string {
	labels := make([]string, 0, len(choices))
	for _, choice := range choices {
		labels = append(labels, choice.Label)
	}
	return labels
}

func containsLabel(choices []entity.Choice, label string) bool {
	for _, choice := range choices {
		if strings.EqualFold(choice.Label, label) {
			return true
		}
	}
	return false
}

// progressOf maps the question counter onto a 0-100 progress percentage
func progressOf(questionCount, maxQuestions int) int {
	if maxQuestions <= 0 {
		return 0
	}
	p := questionCount * 100 / maxQuestions
	if p > 100 {
		p = 100
	}
	return p
}

func toEntityConcepts(conversationID string, payloads []entity.ConceptPayload) []entity.AppConcept {
	now := time.Now().UTC()
	concepts := make([]entity.AppConcept, 0, len(payloads))

	for _, payload := range payloads {
		features := make([]entity.KeyFeature, 0, len(payload.KeyFeatures))
		for _, f := range payload.KeyFeatures {
			features = append(features, entity.KeyFeature{
				Name:        f.Name,
				Description: f.Description,
			})
		}

		concepts = append(concepts, entity.AppConcept{
			ID:             uuid.New().String(),
			ConversationID: conversationID,
			Name:           payload.Name,
			Description:    payload.Description,
			Features:       features,
			CreatedAt:      now,
		})
	}

	return concepts
}
