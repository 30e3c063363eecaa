package conversation

import (
	"context"

	"github.com/futig/concept-interview/internal/entity"
)

type LLMConnector interface {
	ClassifyPrompt(ctx context.Context, prompt string) (entity.Verdict, error)
	GenerateQuestion(ctx context.Context, history []entity.Message) (*entity.QuestionPayload, error)
	GenerateMoreOptions(ctx context.Context, question string, existing []string) (*entity.MoreOptionsPayload, error)
	SynthesizeConcepts(ctx context.Context, history []entity.Message) ([]entity.ConceptPayload, error)
}
