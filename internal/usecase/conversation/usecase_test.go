package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/concept-interview/internal/config"
	"github.com/futig/concept-interview/internal/entity"
	"github.com/futig/concept-interview/internal/repository"
)

// stubConnector returns canned gateway replies and records call counts
type stubConnector struct {
	verdict       entity.Verdict
	classifyErr   error
	questionErr   error
	moreErr       error
	conceptsErr   error
	moreOptions   []string
	questionCalls int
}

func (s *stubConnector) ClassifyPrompt(_ context.Context, _ string) (entity.Verdict, error) {
	if s.classifyErr != nil {
		return "", s.classifyErr
	}
	if s.verdict == "" {
		return entity.VerdictValid, nil
	}
	return s.verdict, nil
}

func (s *stubConnector) GenerateQuestion(_ context.Context, _ []entity.Message) (*entity.QuestionPayload, error) {
	if s.questionErr != nil {
		return nil, s.questionErr
	}
	s.questionCalls++
	return &entity.QuestionPayload{
		Question: fmt.Sprintf("Question %d?", s.questionCalls),
		Options:  []string{"Option A", "Option B", "Option C", "Option D", "Option E"},
	}, nil
}

func (s *stubConnector) GenerateMoreOptions(_ context.Context, _ string, _ []string) (*entity.MoreOptionsPayload, error) {
	if s.moreErr != nil {
		return nil, s.moreErr
	}
	options := s.moreOptions
	if options == nil {
		options = []string{"Option F", "Option G"}
	}
	return &entity.MoreOptionsPayload{Options: options}, nil
}

func (s *stubConnector) SynthesizeConcepts(_ context.Context, _ []entity.Message) ([]entity.ConceptPayload, error) {
	if s.conceptsErr != nil {
		return nil, s.conceptsErr
	}
	concepts := make([]entity.ConceptPayload, 0, 3)
	for i := 1; i <= 3; i++ {
		concepts = append(concepts, entity.ConceptPayload{
			Name:        fmt.Sprintf("Concept %d", i),
			Description: "A concept",
			KeyFeatures: []entity.KeyFeaturePayload{
				{Name: "Feature 1", Description: "Does one thing"},
				{Name: "Feature 2", Description: "Does another"},
				{Name: "Feature 3", Description: "Does a third"},
			},
		})
	}
	return concepts, nil
}

// stubConceptRepo archives concepts in memory
type stubConceptRepo struct {
	saved   []entity.AppConcept
	saveErr error
}

func (s *stubConceptRepo) SaveConcepts(_ context.Context, concepts []entity.AppConcept) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, concepts...)
	return nil
}

func (s *stubConceptRepo) ListConceptsByConversation(_ context.Context, conversationID string) ([]entity.AppConcept, error) {
	var out []entity.AppConcept
	for _, c := range s.saved {
		if c.ConversationID == conversationID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubConceptRepo) ListConcepts(_ context.Context, limit int) ([]entity.AppConcept, error) {
	if limit > len(s.saved) {
		limit = len(s.saved)
	}
	return s.saved[:limit], nil
}

func newTestUsecase(t *testing.T, connector *stubConnector) (*ConversationUsecase, *stubConceptRepo) {
	t.Helper()

	conceptRepo := &stubConceptRepo{}
	uc := NewUsecase(
		repository.NewConversationMemory(time.Hour),
		conceptRepo,
		connector,
		config.InterviewConfig{
			OptionCount:  5,
			MaxQuestions: 5,
			ConceptCount: 3,
			FeatureCount: 3,
		},
		zap.NewNop(),
	)
	return uc, conceptRepo
}

func startInterview(t *testing.T, uc *ConversationUsecase) *entity.Conversation {
	t.Helper()

	ctx := context.Background()
	conv, err := uc.StartConversation(ctx)
	require.NoError(t, err)

	conv, err = uc.SubmitPrompt(ctx, conv.ID, "An app for planning group workouts")
	require.NoError(t, err)

	return conv
}

func TestStartConversation(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubConnector{})

	conv, err := uc.StartConversation(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, entity.StageInitial, conv.Stage)
	assert.Empty(t, conv.Messages)
	assert.Zero(t, conv.QuestionCount)

	loaded, err := uc.GetConversation(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, loaded.ID)
}

func TestGetConversationNotFound(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubConnector{})

	_, err := uc.GetConversation(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrConversationNotFound)
}

func TestSubmitPrompt(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubConnector{})
	conv := startInterview(t, uc)

	assert.Equal(t, entity.StageInProgress, conv.Stage)
	assert.Equal(t, 1, conv.QuestionCount)
	assert.Equal(t, 20, conv.Progress)
	assert.Equal(t, "Question 1?", conv.Question)
	assert.Len(t, conv.Choices, 5)
	assert.Empty(t, conv.SelectedLabels)

	// Transcript holds the idea and the question
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, entity.AuthorUser, conv.Messages[0].Author)
	assert.Equal(t, entity.AuthorAssistant, conv.Messages[1].Author)
	assert.Equal(t, 1, conv.Messages[0].Seq)
	assert.Equal(t, 2, conv.Messages[1].Seq)
}

func TestSubmitPromptEmpty(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubConnector{})
	ctx := context.Background()

	conv, err := uc.StartConversation(ctx)
	require.NoError(t, err)

	_, err = uc.SubmitPrompt(ctx, conv.ID, "   \n\t ")
	assert.ErrorIs(t, err, entity.ErrEmptyInput)
}

func TestSubmitPromptRejected(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubConnector{verdict: entity.VerdictAbstract})
	ctx := context.Background()

	conv, err := uc.StartConversation(ctx)
	require.NoError(t, err)

	_, err = uc.SubmitPrompt(ctx, conv.ID, "something vague")
	assert.ErrorIs(t, err, entity.ErrPromptRejected)

	// Rejection leaves the conversation untouched
	loaded, err := uc.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StageInitial, loaded.Stage)
	assert.Empty(t, loaded.Messages)
}

func TestSubmitPromptWrongStage(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubConnector{})
	conv := startInterview(t, uc)

	_, err := uc.SubmitPrompt(context.Background(), conv.ID, "another idea")
	assert.ErrorIs(t, err, entity.ErrWrongStage)
}

func TestSubmitPromptGatewayFailureLeavesStateUntouched(t *testing.T) {
	connector := &stubConnector{questionErr: entity.ErrGatewayUnavailable}
	uc, _ := newTestUsecase(t, connector)
	ctx := context.Background()

	conv, err := uc.StartConversation(ctx)
	require.NoError(t, err)

	_, err = uc.SubmitPrompt(ctx, conv.ID, "An app for tracking plants")
	assert.ErrorIs(t, err, entity.ErrGatewayUnavailable)

	loaded, err := uc.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StageInitial, loaded.Stage)
	assert.Empty(t, loaded.Messages)
	assert.Zero(t, loaded.QuestionCount)
}

func TestToggleChoice(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubConnector{})
	conv := startInterview(t, uc)
	ctx := context.Background()

	conv, err := uc.ToggleChoice(ctx, conv.ID, "Option B")
	require.NoError(t, err)
	assert.Equal(t, []string{"Option B"}, conv.SelectedLabels)
	assert.True(t, conv.Choices[1].Selected)

	conv, err = uc.ToggleChoice(ctx, conv.ID, "Option D")
	require.NoError(t, err)
	assert.Equal(t, []string{"Option B", "Option D"}, conv.SelectedLabels)

	// Toggling again deselects
	conv, err = uc.ToggleChoice(ctx, conv.ID, "Option B")
	require.NoError(t, err)
	assert.Equal(t, []string{"Option D"}, conv.SelectedLabels)
	assert.False(t, conv.Choices[1].Selected)
}

func TestToggleChoiceUnknownLabel(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubConnector{})
	conv := startInterview(t, uc)

	_, err := uc.ToggleChoice(context.Background(), conv.ID, "Option Z")
	assert.ErrorIs(t, err, entity.ErrChoiceNotFound)
}

func TestToggleChoiceWrongStage(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubConnector{})
	ctx := context.Background()

	conv, err := uc.StartConversation(ctx)
	require.NoError(t, err)

	_, err = uc.ToggleChoice(ctx, conv.ID, "Option A")
	assert.ErrorIs(t, err, entity.ErrWrongStage)
}

func TestSubmitSelectionsAdvances(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubConnector{})
	conv := startInterview(t, uc)
	ctx := context.Background()

	_, err := uc.ToggleChoice(ctx, conv.ID, "Option A")
	require.NoError(t, err)

	conv, err = uc.SubmitSelections(ctx, conv.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StageInProgress, conv.Stage)
	assert.Equal(t, 2, conv.QuestionCount)
	assert.Equal(t, 40, conv.Progress)
	assert.Equal(t, "Question 2?", conv.Question)
	assert.Empty(t, conv.SelectedLabels)

	// Answer message precedes the new question in the transcript
	require.Len(t, conv.Messages, 4)
	assert.Equal(t, "I choose: Option A", conv.Messages[2].Text)
}

func TestSubmitSelectionsNoSelection(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubConnector{})
	conv := startInterview(t, uc)

	_, err := uc.SubmitSelections(context.Background(), conv.ID)
	assert.ErrorIs(t, err, entity.ErrNoSelection)
}

func TestSubmitSelectionsMultipleLabels(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubConnector{})
	conv := startInterview(t, uc)
	ctx := context.Background()

	_, err := uc.ToggleChoice(ctx, conv.ID, "Option A")
	require.NoError(t, err)
	_, err = uc.ToggleChoice(ctx, conv.ID, "Option C")
	require.NoError(t, err)

	conv, err = uc.SubmitSelections(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "I choose: Option A; Option C", conv.Messages[2].Text)
}

func TestFullInterviewCompletes(t *testing.T) {
	connector := &stubConnector{}
	uc, conceptRepo := newTestUsecase(t, connector)
	conv := startInterview(t, uc)
	ctx := context.Background()

	for round := 1; round < 4; round++ {
		_, err := uc.ToggleChoice(ctx, conv.ID, "Option A")
		require.NoError(t, err)

		var err2 error
		conv, err2 = uc.SubmitSelections(ctx, conv.ID)
		require.NoError(t, err2)
		assert.Equal(t, round+1, conv.QuestionCount)
	}

	// The round at counter 4 synthesizes concepts instead of asking a fifth
	// question
	require.Equal(t, 4, conv.QuestionCount)
	_, err := uc.ToggleChoice(ctx, conv.ID, "Option E")
	require.NoError(t, err)

	conv, err = uc.SubmitSelections(ctx, conv.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StageCompleted, conv.Stage)
	assert.Equal(t, 4, connector.questionCalls)
	assert.Equal(t, 100, conv.Progress)
	assert.Empty(t, conv.Question)
	assert.Empty(t, conv.Choices)
	assert.Empty(t, conv.SelectedLabels)
	require.Len(t, conv.Concepts, 3)
	for _, concept := range conv.Concepts {
		assert.Equal(t, conv.ID, concept.ConversationID)
		assert.Len(t, concept.Features, 3)
	}

	// Completed concepts are archived
	assert.Len(t, conceptRepo.saved, 3)

	concepts, err := uc.GetConcepts(ctx, conv.ID)
	require.NoError(t, err)
	assert.Len(t, concepts, 3)
}

func TestSubmitSelectionsLastRoundCompletes(t *testing.T) {
	connector := &stubConnector{}
	uc, _ := newTestUsecase(t, connector)
	conv := startInterview(t, uc)
	ctx := context.Background()

	for conv.QuestionCount < 4 {
		_, err := uc.ToggleChoice(ctx, conv.ID, "Option A")
		require.NoError(t, err)

		var err2 error
		conv, err2 = uc.SubmitSelections(ctx, conv.ID)
		require.NoError(t, err2)
	}

	_, err := uc.ToggleChoice(ctx, conv.ID, "Option B")
	require.NoError(t, err)

	conv, err = uc.SubmitSelections(ctx, conv.ID)
	require.NoError(t, err)

	// Submitting at counter 4 of 5 finishes the interview; no fifth question
	// is ever requested
	assert.Equal(t, entity.StageCompleted, conv.Stage)
	assert.Equal(t, 4, conv.QuestionCount)
	assert.Equal(t, 100, conv.Progress)
	assert.Equal(t, 4, connector.questionCalls)
	for _, msg := range conv.Messages {
		assert.NotEqual(t, "Question 5?", msg.Text)
	}
}

func TestSubmitSelectionsSynthesisFailureLeavesStateUntouched(t *testing.T) {
	connector := &stubConnector{}
	uc, _ := newTestUsecase(t, connector)
	conv := startInterview(t, uc)
	ctx := context.Background()

	for round := 1; round < 4; round++ {
		_, err := uc.ToggleChoice(ctx, conv.ID, "Option A")
		require.NoError(t, err)
		_, err = uc.SubmitSelections(ctx, conv.ID)
		require.NoError(t, err)
	}

	_, err := uc.ToggleChoice(ctx, conv.ID, "Option B")
	require.NoError(t, err)

	connector.conceptsErr = entity.ErrMalformedResponse
	_, err = uc.SubmitSelections(ctx, conv.ID)
	assert.ErrorIs(t, err, entity.ErrMalformedResponse)

	loaded, err := uc.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StageInProgress, loaded.Stage)
	assert.Equal(t, 4, loaded.QuestionCount)
	assert.Equal(t, []string{"Option B"}, loaded.SelectedLabels)
	assert.Empty(t, loaded.Concepts)
}

func TestArchiveFailureDoesNotFailInterview(t *testing.T) {
	uc, conceptRepo := newTestUsecase(t, &stubConnector{})
	conv := startInterview(t, uc)
	ctx := context.Background()

	conceptRepo.saveErr = errors.New("database down")

	for round := 1; round <= 4; round++ {
		_, err := uc.ToggleChoice(ctx, conv.ID, "Option A")
		require.NoError(t, err)

		var err2 error
		conv, err2 = uc.SubmitSelections(ctx, conv.ID)
		require.NoError(t, err2)
	}

	assert.Equal(t, entity.StageCompleted, conv.Stage)
	assert.Len(t, conv.Concepts, 3)
}

func TestRequestMoreOptions(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubConnector{})
	conv := startInterview(t, uc)
	ctx := context.Background()

	_, err := uc.ToggleChoice(ctx, conv.ID, "Option A")
	require.NoError(t, err)

	conv, err = uc.RequestMoreOptions(ctx, conv.ID)
	require.NoError(t, err)

	assert.Len(t, conv.Choices, 7)
	assert.Equal(t, "Option F", conv.Choices[5].Label)
	assert.Equal(t, "Option G", conv.Choices[6].Label)

	// Existing selections survive
	assert.Equal(t, []string{"Option A"}, conv.SelectedLabels)
	// Counter and question unchanged
	assert.Equal(t, 1, conv.QuestionCount)
	assert.Equal(t, "Question 1?", conv.Question)
}

func TestRequestMoreOptionsDeduplicates(t *testing.T) {
	connector := &stubConnector{moreOptions: []string{"option a", "Option B", "Option H"}}
	uc, _ := newTestUsecase(t, connector)
	conv := startInterview(t, uc)

	conv, err := uc.RequestMoreOptions(context.Background(), conv.ID)
	require.NoError(t, err)

	// Case-insensitive duplicates are dropped, only the new one lands
	assert.Len(t, conv.Choices, 6)
	assert.Equal(t, "Option H", conv.Choices[5].Label)
}

func TestRequestMoreOptionsAllDuplicates(t *testing.T) {
	connector := &stubConnector{moreOptions: []string{"Option A", "option b"}}
	uc, _ := newTestUsecase(t, connector)
	conv := startInterview(t, uc)

	_, err := uc.RequestMoreOptions(context.Background(), conv.ID)
	assert.ErrorIs(t, err, entity.ErrMalformedResponse)
}

func TestReset(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubConnector{})
	conv := startInterview(t, uc)
	ctx := context.Background()

	_, err := uc.ToggleChoice(ctx, conv.ID, "Option A")
	require.NoError(t, err)

	conv, err = uc.Reset(ctx, conv.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StageInitial, conv.Stage)
	assert.Empty(t, conv.Messages)
	assert.Empty(t, conv.Question)
	assert.Empty(t, conv.Choices)
	assert.Empty(t, conv.SelectedLabels)
	assert.Zero(t, conv.QuestionCount)
	assert.Zero(t, conv.Progress)
	assert.Empty(t, conv.Concepts)

	// The conversation is usable again
	conv, err = uc.SubmitPrompt(ctx, conv.ID, "A fresh idea for a reading tracker")
	require.NoError(t, err)
	assert.Equal(t, entity.StageInProgress, conv.Stage)
}

func TestGetConceptsBeforeCompletion(t *testing.T) {
	uc, _ := newTestUsecase(t, &stubConnector{})
	conv := startInterview(t, uc)

	_, err := uc.GetConcepts(context.Background(), conv.ID)
	assert.ErrorIs(t, err, entity.ErrNoConcepts)
}

func TestListArchivedConceptsClampsLimit(t *testing.T) {
	uc, conceptRepo := newTestUsecase(t, &stubConnector{})
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		conceptRepo.saved = append(conceptRepo.saved, entity.AppConcept{ID: fmt.Sprintf("c%d", i)})
	}

	concepts, err := uc.ListArchivedConcepts(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, concepts, 50)

	concepts, err = uc.ListArchivedConcepts(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, concepts, 10)

	concepts, err = uc.ListArchivedConcepts(ctx, 500)
	require.NoError(t, err)
	assert.Len(t, concepts, 50)
}

func TestProgressOf(t *testing.T) {
	assert.Equal(t, 20, progressOf(1, 5))
	assert.Equal(t, 100, progressOf(5, 5))
	assert.Equal(t, 100, progressOf(7, 5))
	assert.Equal(t, 0, progressOf(1, 0))
}
