package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/concept-interview/internal/config"
	"github.com/futig/concept-interview/internal/entity"
	"github.com/futig/concept-interview/internal/repository"
)

// ConversationUsecase drives the interview state machine:
// initial -> in_progress -> completed. Gateway calls happen before any
// state mutation, so a failed call leaves the conversation untouched.
type ConversationUsecase struct {
	conversationRepo repository.ConversationRepository
	conceptRepo      repository.ConceptRepository
	llmConnector     LLMConnector
	cfg              config.InterviewConfig
	logger           *zap.Logger
}

// NewUsecase creates a new conversation use case
func NewUsecase(
	conversationRepo repository.ConversationRepository,
	conceptRepo repository.ConceptRepository,
	llmConnector LLMConnector,
	cfg config.InterviewConfig,
	logger *zap.Logger,
) *ConversationUsecase {
	return &ConversationUsecase{
		conversationRepo: conversationRepo,
		conceptRepo:      conceptRepo,
		llmConnector:     llmConnector,
		cfg:              cfg,
		logger:           logger,
	}
}

// MaxQuestions exposes the configured interview length for API snapshots
func (uc *ConversationUsecase) MaxQuestions() int {
	return uc.cfg.MaxQuestions
}

// StartConversation allocates an empty conversation waiting for the idea
// prompt
func (uc *ConversationUsecase) StartConversation(ctx context.Context) (*entity.Conversation, error) {
	now := time.Now().UTC()
	conversation := &entity.Conversation{
		ID:        uuid.New().String(),
		Stage:     entity.StageInitial,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.conversationRepo.Save(ctx, conversation); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}

	ctxzap.Info(ctx, "conversation started", zap.String("conversation_id", conversation.ID))

	return conversation, nil
}

// GetConversation returns a snapshot of the conversation state
func (uc *ConversationUsecase) GetConversation(ctx context.Context, conversationID string) (*entity.Conversation, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	return conversation, nil
}

// SubmitPrompt accepts the free-text app idea, classifies it and asks the
// first question. Allowed in the initial stage only.
func (uc *ConversationUsecase) SubmitPrompt(ctx context.Context, conversationID, prompt string) (*entity.Conversation, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	if conversation.Stage != entity.StageInitial {
		return nil, fmt.Errorf("%w: submit prompt on stage '%s'", entity.ErrWrongStage, conversation.Stage)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt", entity.ErrEmptyInput)
	}

	verdict, err := uc.llmConnector.ClassifyPrompt(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("classify prompt: %w", err)
	}

	if verdict != entity.VerdictValid {
		ctxzap.Info(ctx, "prompt rejected", zap.String("verdict", string(verdict)))
		return nil, fmt.Errorf("%w: verdict %s", entity.ErrPromptRejected, verdict)
	}

	// Build the would-be history first; the conversation is only mutated
	// after the gateway call succeeds.
	history := historyWith(conversation, entity.AuthorUser, prompt)

	question, err := uc.llmConnector.GenerateQuestion(ctx, history)
	if err != nil {
		return nil, fmt.Errorf("generate first question: %w", err)
	}

	appendMessage(conversation, entity.AuthorUser, prompt)
	setQuestion(conversation, question)
	conversation.Stage = entity.StageInProgress
	conversation.QuestionCount = 1
	conversation.Progress = progressOf(1, uc.cfg.MaxQuestions)
	conversation.UpdatedAt = time.Now().UTC()

	if err := uc.conversationRepo.Save(ctx, conversation); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}

	ctxzap.Info(ctx, "interview started",
		zap.String("conversation_id", conversation.ID),
		zap.Int("question_count", conversation.QuestionCount))

	return conversation, nil
}

// ToggleChoice flips the selection of one option by label. Purely local,
// no gateway involved.
func (uc *ConversationUsecase) ToggleChoice(ctx context.Context, conversationID, label string) (*entity.Conversation, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	if conversation.Stage != entity.StageInProgress {
		return nil, fmt.Errorf("%w: toggle choice on stage '%s'", entity.ErrWrongStage, conversation.Stage)
	}

	found := false
	for i := range conversation.Choices {
		if conversation.Choices[i].Label == label {
			conversation.Choices[i].Selected = !conversation.Choices[i].Selected
			found = true
			break
		}
	}

	if !found {
		return nil, fmt.Errorf("%w: %q", entity.ErrChoiceNotFound, label)
	}

	syncSelectedLabels(conversation)
	conversation.UpdatedAt = time.Now().UTC()

	if err := uc.conversationRepo.Save(ctx, conversation); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}

	return conversation, nil
}

// SubmitSelections submits the currently selected options as the answer.
// Advances to the next question, or synthesizes concepts on the final round.
func (uc *ConversationUsecase) SubmitSelections(ctx context.Context, conversationID string) (*entity.Conversation, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	if conversation.Stage != entity.StageInProgress {
		return nil, fmt.Errorf("%w: submit selections on stage '%s'", entity.ErrWrongStage, conversation.Stage)
	}

	if len(conversation.SelectedLabels) == 0 {
		return nil, entity.ErrNoSelection
	}

	answer := selectionSummary(conversation.SelectedLabels)
	history := historyWith(conversation, entity.AuthorUser, answer)

	// The round at counter = max-1 is the last one: it synthesizes concepts
	// instead of requesting another question.
	if conversation.QuestionCount < uc.cfg.MaxQuestions-1 {
		question, err := uc.llmConnector.GenerateQuestion(ctx, history)
		if err != nil {
			return nil, fmt.Errorf("generate next question: %w", err)
		}

		appendMessage(conversation, entity.AuthorUser, answer)
		setQuestion(conversation, question)
		conversation.QuestionCount++
		conversation.Progress = progressOf(conversation.QuestionCount, uc.cfg.MaxQuestions)
		conversation.UpdatedAt = time.Now().UTC()

		if err := uc.conversationRepo.Save(ctx, conversation); err != nil {
			return nil, fmt.Errorf("save conversation: %w", err)
		}

		ctxzap.Info(ctx, "next question issued",
			zap.String("conversation_id", conversation.ID),
			zap.Int("question_count", conversation.QuestionCount))

		return conversation, nil
	}

	payloads, err := uc.llmConnector.SynthesizeConcepts(ctx, history)
	if err != nil {
		return nil, fmt.Errorf("synthesize concepts: %w", err)
	}

	appendMessage(conversation, entity.AuthorUser, answer)
	conversation.Concepts = toEntityConcepts(conversation.ID, payloads)
	conversation.Question = ""
	conversation.Choices = nil
	conversation.SelectedLabels = nil
	conversation.Stage = entity.StageCompleted
	conversation.Progress = 100
	conversation.UpdatedAt = time.Now().UTC()

	if err := uc.conversationRepo.Save(ctx, conversation); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}

	// Archiving is best-effort: a storage hiccup must not fail an otherwise
	// completed interview.
	if err := uc.conceptRepo.SaveConcepts(ctx, conversation.Concepts); err != nil {
		ctxzap.Error(ctx, "failed to archive concepts", zap.Error(err))
	}

	ctxzap.Info(ctx, "interview completed",
		zap.String("conversation_id", conversation.ID),
		zap.Int("concept_count", len(conversation.Concepts)))

	return conversation, nil
}

// RequestMoreOptions appends extra gateway-suggested options to the current
// question. Stage and question counter stay unchanged.
func (uc *ConversationUsecase) RequestMoreOptions(ctx context.Context, conversationID string) (*entity.Conversation, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	if conversation.Stage != entity.StageInProgress {
		return nil, fmt.Errorf("%w: request more options on stage '%s'", entity.ErrWrongStage, conversation.Stage)
	}

	existing := choiceLabels(conversation.Choices)

	payload, err := uc.llmConnector.GenerateMoreOptions(ctx, conversation.Question, existing)
	if err != nil {
		return nil, fmt.Errorf("generate more options: %w", err)
	}

	// The prompt asks for distinct options, but labels stay the toggle key,
	// so duplicates are dropped here regardless.
	added := 0
	for _, label := range payload.Options {
		label = strings.TrimSpace(label)
		if label == "" || containsLabel(conversation.Choices, label) {
			continue
		}
		conversation.Choices = append(conversation.Choices, entity.Choice{Label: label})
		added++
	}

	if added == 0 {
		return nil, fmt.Errorf("%w: no new options after deduplication", entity.ErrMalformedResponse)
	}

	conversation.UpdatedAt = time.Now().UTC()

	if err := uc.conversationRepo.Save(ctx, conversation); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}

	ctxzap.Info(ctx, "extra options added",
		zap.String("conversation_id", conversation.ID),
		zap.Int("added", added))

	return conversation, nil
}

// Reset returns the conversation to a blank initial state. Allowed from any
// stage.
func (uc *ConversationUsecase) Reset(ctx context.Context, conversationID string) (*entity.Conversation, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	conversation.Stage = entity.StageInitial
	conversation.Messages = nil
	conversation.Question = ""
	conversation.Choices = nil
	conversation.SelectedLabels = nil
	conversation.QuestionCount = 0
	conversation.Progress = 0
	conversation.Concepts = nil
	conversation.UpdatedAt = time.Now().UTC()

	if err := uc.conversationRepo.Save(ctx, conversation); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}

	ctxzap.Info(ctx, "conversation reset", zap.String("conversation_id", conversation.ID))

	return conversation, nil
}

// GetConcepts returns the synthesized concepts of a completed interview
func (uc *ConversationUsecase) GetConcepts(ctx context.Context, conversationID string) ([]entity.AppConcept, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	if conversation.Stage != entity.StageCompleted {
		return nil, fmt.Errorf("%w: interview not completed", entity.ErrNoConcepts)
	}

	return conversation.Concepts, nil
}

// ListArchivedConcepts returns recently archived concepts across interviews
func (uc *ConversationUsecase) ListArchivedConcepts(ctx context.Context, limit int) ([]entity.AppConcept, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	concepts, err := uc.conceptRepo.ListConcepts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list archived concepts: %w", err)
	}

	return concepts, nil
}
