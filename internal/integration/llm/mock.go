package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/concept-interview/internal/config"
	"github.com/futig/concept-interview/internal/entity"
)

// MockConnector is a canned-data stand-in for the LLM gateway, used in
// development and tests when ENABLE_MOCKS is set.
type MockConnector struct {
	interview config.InterviewConfig
	logger    *zap.Logger
}

func NewMockConnector(interview config.InterviewConfig, logger *zap.Logger) *MockConnector {
	return &MockConnector{
		interview: interview,
		logger:    logger,
	}
}

// ClassifyPrompt accepts every non-trivial prompt
func (m *MockConnector) ClassifyPrompt(ctx context.Context, prompt string) (entity.Verdict, error) {
	ctxzap.Info(ctx, "[MOCK] classifying idea prompt")

	if len(prompt) < 10 {
		return entity.VerdictAbstract, nil
	}

	return entity.VerdictValid, nil
}

var mockQuestions = []entity.QuestionPayload{
	{
		Question: "Who is the primary audience of your app?",
		Options:  []string{"Teenagers", "Young professionals", "Parents", "Seniors", "Businesses"},
	},
	{
		Question: "What should the core experience feel like?",
		Options:  []string{"Playful", "Minimal and fast", "Data-rich", "Social", "Calm and guided"},
	},
	{
		Question: "Which platform matters most at launch?",
		Options:  []string{"iOS", "Android", "Web", "Desktop", "All at once"},
	},
	{
		Question: "How should the app make money?",
		Options:  []string{"Subscriptions", "One-time purchase", "Ads", "Freemium", "No monetization yet"},
	},
	{
		Question: "How often do you expect people to open the app?",
		Options:  []string{"Many times a day", "Daily", "A few times a week", "Weekly", "Occasionally"},
	},
}

// GenerateQuestion cycles through a fixed question list, sized to the
// configured option count
func (m *MockConnector) GenerateQuestion(ctx context.Context, history []entity.Message) (*entity.QuestionPayload, error) {
	ctxzap.Info(ctx, "[MOCK] generating interview question")

	asked := 0
	for _, msg := range history {
		if msg.Author == entity.AuthorAssistant {
			asked++
		}
	}

	src := mockQuestions[asked%len(mockQuestions)]

	payload := &entity.QuestionPayload{
		Question: src.Question,
		Options:  make([]string, m.interview.OptionCount),
	}
	for i := 0; i < m.interview.OptionCount; i++ {
		if i < len(src.Options) {
			payload.Options[i] = src.Options[i]
		} else {
			payload.Options[i] = fmt.Sprintf("%s (variant %d)", src.Options[len(src.Options)-1], i+1)
		}
	}

	ctxzap.Info(ctx, "[MOCK] question generated", zap.Int("option_count", len(payload.Options)))
	return payload, nil
}

// GenerateMoreOptions derives extra options from the existing ones
func (m *MockConnector) GenerateMoreOptions(ctx context.Context, question string, existing []string) (*entity.MoreOptionsPayload, error) {
	ctxzap.Info(ctx, "[MOCK] generating extra options")

	payload := &entity.MoreOptionsPayload{
		Options: []string{
			fmt.Sprintf("Alternative %d", len(existing)+1),
			fmt.Sprintf("Alternative %d", len(existing)+2),
		},
	}

	ctxzap.Info(ctx, "[MOCK] extra options generated", zap.Int("option_count", len(payload.Options)))
	return payload, nil
}

// SynthesizeConcepts returns the configured number of canned concepts
func (m *MockConnector) SynthesizeConcepts(ctx context.Context, history []entity.Message) ([]entity.ConceptPayload, error) {
	ctxzap.Info(ctx, "[MOCK] synthesizing app concepts")

	concepts := make([]entity.ConceptPayload, m.interview.ConceptCount)
	for i := range concepts {
		features := make([]entity.KeyFeaturePayload, m.interview.FeatureCount)
		for j := range features {
			features[j] = entity.KeyFeaturePayload{
				Name:        fmt.Sprintf("Feature %d.%d", i+1, j+1),
				Description: "A capability derived from the interview answers.",
			}
		}
		concepts[i] = entity.ConceptPayload{
			Name:        fmt.Sprintf("Concept %d", i+1),
			Description: "A mock application concept assembled from the collected answers.",
			KeyFeatures: features,
		}
	}

	ctxzap.Info(ctx, "[MOCK] concepts synthesized", zap.Int("concept_count", len(concepts)))
	return concepts, nil
}

// ForwardCompletion echoes the first user message back as the completion
func (m *MockConnector) ForwardCompletion(ctx context.Context, payload []byte) (int, []byte, error) {
	ctxzap.Info(ctx, "[MOCK] forwarding chat completion")

	var req entity.ChatCompletionRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return http.StatusBadRequest, []byte(`{"error":"invalid request body"}`), nil
	}

	content := "mock completion"
	if len(req.Messages) > 0 {
		content = "echo: " + req.Messages[len(req.Messages)-1].Content
	}

	resp := entity.ChatCompletionResponse{
		ID:    "mock-completion",
		Model: req.Model,
		Choices: []entity.ChatChoice{
			{Index: 0, Message: entity.ChatMessage{Role: entity.RoleAssistant, Content: content}, FinishReason: "stop"},
		},
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return 0, nil, err
	}

	return http.StatusOK, body, nil
}
