package validator

import (
	"fmt"
	"strings"

	"github.com/futig/concept-interview/internal/entity"
)

// Validator validates incoming conversation requests
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSubmitPrompt validates the free-text idea prompt
func (v *Validator) ValidateSubmitPrompt(req *entity.SubmitPromptRequest) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return fmt.Errorf("%w: prompt", entity.ErrEmptyInput)
	}

	return nil
}

// ValidateToggleChoice validates a choice toggle request
func (v *Validator) ValidateToggleChoice(req *entity.ToggleChoiceRequest) error {
	if strings.TrimSpace(req.Label) == "" {
		return fmt.Errorf("%w: label", entity.ErrMissingField)
	}

	return nil
}

// ValidateResultFormat validates the concepts export format query parameter
func (v *Validator) ValidateResultFormat(format string) (entity.ResultFormat, error) {
	if format == "" {
		return entity.FormatMarkdown, nil
	}

	f := entity.ResultFormat(strings.ToLower(format))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %s (allowed: markdown, json, pdf, docx)", entity.ErrInvalidFormat, format)
	}

	return f, nil
}
