package conversation

import "github.com/futig/concept-interview/internal/entity"

// toConversationDTO converts Conversation entity to ConversationDTO
func toConversationDTO(c *entity.Conversation, maxQuestions int) *entity.ConversationDTO {
	messages := make([]entity.MessageDTO, 0, len(c.Messages))
	for _, m := range c.Messages {
		messages = append(messages, entity.MessageDTO{
			Seq:    m.Seq,
			Author: m.Author,
			Text:   m.Text,
		})
	}

	choices := make([]entity.ChoiceDTO, 0, len(c.Choices))
	for _, ch := range c.Choices {
		choices = append(choices, entity.ChoiceDTO{
			Label:    ch.Label,
			Selected: ch.Selected,
		})
	}

	selected := c.SelectedLabels
	if selected == nil {
		selected = []string{}
	}

	var concepts []entity.AppConceptDTO
	for i := range c.Concepts {
		concepts = append(concepts, toAppConceptDTO(&c.Concepts[i]))
	}

	return &entity.ConversationDTO{
		ID:             c.ID,
		Stage:          c.Stage,
		Messages:       messages,
		Question:       c.Question,
		Choices:        choices,
		SelectedLabels: selected,
		QuestionCount:  c.QuestionCount,
		MaxQuestions:   maxQuestions,
		Progress:       c.Progress,
		Concepts:       concepts,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// toAppConceptDTO converts AppConcept entity to AppConceptDTO
func toAppConceptDTO(c *entity.AppConcept) entity.AppConceptDTO {
	features := make([]entity.KeyFeatureDTO, 0, len(c.Features))
	for _, f := range c.Features {
		features = append(features, entity.KeyFeatureDTO{
			Name:        f.Name,
			Description: f.Description,
		})
	}

	return entity.AppConceptDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		KeyFeatures: features,
	}
}
