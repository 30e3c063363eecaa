package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/concept-interview/internal/config"
	"github.com/futig/concept-interview/internal/entity"
	"github.com/futig/concept-interview/internal/integration/common"
	pkghttp "github.com/futig/concept-interview/pkg/http"
)

type Connector struct {
	config    config.LLMGatewayConfig
	interview config.InterviewConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMGatewayConfig,
	interview config.InterviewConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		interview: interview,
		logger:    logger,
	}
}

// chat sends one chat-completion request and returns the assistant reply text.
// Transport failures and non-2xx upstream statuses surface as
// entity.ErrGatewayUnavailable; a 2xx reply without choices is
// entity.ErrMalformedResponse.
func (c *Connector) chat(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	req := &entity.ChatCompletionRequest{
		Model:     c.config.Model,
		Messages:  messages,
		MaxTokens: c.config.MaxTokens,
	}

	var resp entity.ChatCompletionResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.ChatEndpoint, req, &resp)
	if err != nil {
		var netErr *pkghttp.NetworkError
		var httpErr *pkghttp.HTTPError
		switch {
		case errors.As(err, &netErr):
			return "", fmt.Errorf("%w: %v", entity.ErrGatewayUnavailable, netErr.Err)
		case errors.As(err, &httpErr):
			return "", fmt.Errorf("%w: upstream status %d", entity.ErrGatewayUnavailable, httpErr.StatusCode)
		default:
			return "", fmt.Errorf("%w: %v", entity.ErrMalformedResponse, err)
		}
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in completion", entity.ErrMalformedResponse)
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: empty completion content", entity.ErrMalformedResponse)
	}

	return content, nil
}

// ClassifyPrompt asks the model whether the idea prompt describes a concrete
// application.
func (c *Connector) ClassifyPrompt(ctx context.Context, prompt string) (entity.Verdict, error) {
	ctxzap.Info(ctx, "classifying idea prompt")

	reply, err := c.chat(ctx, []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: classifyPromptSystem},
		{Role: entity.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("classify prompt: %w", err)
	}

	verdict := entity.Verdict(strings.ToUpper(strings.TrimSpace(ExtractJSONValue(reply, "verdict"))))
	switch verdict {
	case entity.VerdictValid, entity.VerdictAbstract, entity.VerdictInvalid:
		ctxzap.Info(ctx, "prompt classified", zap.String("verdict", string(verdict)))
		return verdict, nil
	default:
		return "", fmt.Errorf("%w: unknown verdict %q", entity.ErrMalformedResponse, verdict)
	}
}

// GenerateQuestion requests the next multiple-choice question. The option
// count of the reply must equal the configured count exactly.
func (c *Connector) GenerateQuestion(ctx context.Context, history []entity.Message) (*entity.QuestionPayload, error) {
	ctxzap.Info(ctx, "generating interview question")

	messages := append(
		[]entity.ChatMessage{{
			Role:    entity.RoleSystem,
			Content: fmt.Sprintf(generateQuestionSystem, c.interview.OptionCount),
		}},
		historyToChatMessages(history)...,
	)

	reply, err := c.chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate question: %w", err)
	}

	var payload entity.QuestionPayload
	if err := DecodeReply(reply, &payload); err != nil {
		return nil, fmt.Errorf("generate question: %w", err)
	}

	if strings.TrimSpace(payload.Question) == "" {
		return nil, fmt.Errorf("%w: empty question text", entity.ErrMalformedResponse)
	}

	if len(payload.Options) != c.interview.OptionCount {
		return nil, fmt.Errorf("%w: expected %d options, got %d",
			entity.ErrMalformedResponse, c.interview.OptionCount, len(payload.Options))
	}

	ctxzap.Info(ctx, "question generated", zap.Int("option_count", len(payload.Options)))

	return &payload, nil
}

// GenerateMoreOptions requests additional options for the current question,
// distinct from the ones already shown. At least one new option is required.
func (c *Connector) GenerateMoreOptions(ctx context.Context, question string, existing []string) (*entity.MoreOptionsPayload, error) {
	ctxzap.Info(ctx, "generating extra options")

	userMsg := fmt.Sprintf("Question: %s\n\nExisting options:\n- %s",
		question, strings.Join(existing, "\n- "))

	reply, err := c.chat(ctx, []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: fmt.Sprintf(moreOptionsSystem, c.interview.OptionCount)},
		{Role: entity.RoleUser, Content: userMsg},
	})
	if err != nil {
		return nil, fmt.Errorf("generate more options: %w", err)
	}

	var payload entity.MoreOptionsPayload
	if err := DecodeReply(reply, &payload); err != nil {
		return nil, fmt.Errorf("generate more options: %w", err)
	}

	if len(payload.Options) == 0 {
		return nil, fmt.Errorf("%w: no extra options in reply", entity.ErrMalformedResponse)
	}

	ctxzap.Info(ctx, "extra options generated", zap.Int("option_count", len(payload.Options)))

	return &payload, nil
}

// SynthesizeConcepts asks the model for the final set of app concepts built
// from the whole interview transcript.
func (c *Connector) SynthesizeConcepts(ctx context.Context, history []entity.Message) ([]entity.ConceptPayload, error) {
	ctxzap.Info(ctx, "synthesizing app concepts")

	messages := append(
		[]entity.ChatMessage{{
			Role:    entity.RoleSystem,
			Content: fmt.Sprintf(synthesizeConceptsSystem, c.interview.ConceptCount, c.interview.FeatureCount),
		}},
		historyToChatMessages(history)...,
	)

	reply, err := c.chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("synthesize concepts: %w", err)
	}

	var payload struct {
		Concepts []entity.ConceptPayload `json:"concepts"`
	}
	if err := DecodeReply(reply, &payload); err != nil {
		return nil, fmt.Errorf("synthesize concepts: %w", err)
	}

	if len(payload.Concepts) != c.interview.ConceptCount {
		return nil, fmt.Errorf("%w: expected %d concepts, got %d",
			entity.ErrMalformedResponse, c.interview.ConceptCount, len(payload.Concepts))
	}

	for i, concept := range payload.Concepts {
		if strings.TrimSpace(concept.Name) == "" {
			return nil, fmt.Errorf("%w: concept %d has empty name", entity.ErrMalformedResponse, i)
		}
		if len(concept.KeyFeatures) != c.interview.FeatureCount {
			return nil, fmt.Errorf("%w: concept %q has %d key features, expected %d",
				entity.ErrMalformedResponse, concept.Name, len(concept.KeyFeatures), c.interview.FeatureCount)
		}
	}

	ctxzap.Info(ctx, "concepts synthesized", zap.Int("concept_count", len(payload.Concepts)))

	return payload.Concepts, nil
}

// ForwardCompletion passes an already-serialized chat-completion request
// upstream untouched and returns the upstream status and body verbatim.
func (c *Connector) ForwardCompletion(ctx context.Context, payload []byte) (int, []byte, error) {
	ctxzap.Info(ctx, "forwarding chat completion", zap.Int("payload_size", len(payload)))

	status, body, err := c.connector.DoRawRequest(ctx, http.MethodPost, c.config.ChatEndpoint, payload)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", entity.ErrGatewayUnavailable, err)
	}

	return status, body, nil
}

func historyToChatMessages(history []entity.Message) []entity.ChatMessage {
	messages := make([]entity.ChatMessage, 0, len(history))
	for _, msg := range history {
		role := entity.RoleUser
		if msg.Author == entity.AuthorAssistant {
			role = entity.RoleAssistant
		}
		messages = append(messages, entity.ChatMessage{Role: role, Content: msg.Text})
	}
	return messages
}
