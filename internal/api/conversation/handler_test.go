package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futig/concept-interview/internal/entity"
	"github.com/futig/concept-interview/internal/pkg/validator"
)

// stubUsecase returns canned conversations and errors per method
type stubUsecase struct {
	conversation *entity.Conversation
	concepts     []entity.AppConcept
	err          error
	lastPrompt   string
	lastLabel    string
	lastLimit    int
}

func (s *stubUsecase) StartConversation(_ context.Context) (*entity.Conversation, error) {
	return s.conversation, s.err
}

func (s *stubUsecase) GetConversation(_ context.Context, _ string) (*entity.Conversation, error) {
	return s.conversation, s.err
}

func (s *stubUsecase) SubmitPrompt(_ context.Context, _ string, prompt string) (*entity.Conversation, error) {
	s.lastPrompt = prompt
	return s.conversation, s.err
}

func (s *stubUsecase) ToggleChoice(_ context.Context, _ string, label string) (*entity.Conversation, error) {
	s.lastLabel = label
	return s.conversation, s.err
}

func (s *stubUsecase) SubmitSelections(_ context.Context, _ string) (*entity.Conversation, error) {
	return s.conversation, s.err
}

func (s *stubUsecase) RequestMoreOptions(_ context.Context, _ string) (*entity.Conversation, error) {
	return s.conversation, s.err
}

func (s *stubUsecase) Reset(_ context.Context, _ string) (*entity.Conversation, error) {
	return s.conversation, s.err
}

func (s *stubUsecase) GetConcepts(_ context.Context, _ string) ([]entity.AppConcept, error) {
	return s.concepts, s.err
}

func (s *stubUsecase) ListArchivedConcepts(_ context.Context, limit int) ([]entity.AppConcept, error) {
	s.lastLimit = limit
	return s.concepts, s.err
}

func (s *stubUsecase) MaxQuestions() int { return 5 }

func newTestRouter(usecase ConversationUsecase) chi.Router {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(usecase, validator.NewValidator()))
	return r
}

func sampleConversation() *entity.Conversation {
	return &entity.Conversation{
		ID:    "11111111-2222-3333-4444-555555555555",
		Stage: entity.StageInProgress,
		Messages: []entity.Message{
			{Seq: 1, Author: entity.AuthorUser, Text: "A plant watering app"},
			{Seq: 2, Author: entity.AuthorAssistant, Text: "Who is it for?"},
		},
		Question: "Who is it for?",
		Choices: []entity.Choice{
			{Label: "Gardeners", Selected: true},
			{Label: "Офисы"},
		},
		SelectedLabels: []string{"Gardeners"},
		QuestionCount:  1,
		Progress:       20,
	}
}

func TestCreateConversation(t *testing.T) {
	usecase := &stubUsecase{conversation: &entity.Conversation{
		ID:    "abc",
		Stage: entity.StageInitial,
	}}
	router := newTestRouter(usecase)

	req := httptest.NewRequest(http.MethodPost, "/conversations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var dto entity.ConversationDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "abc", dto.ID)
	assert.Equal(t, entity.StageInitial, dto.Stage)
	assert.Equal(t, 5, dto.MaxQuestions)
	assert.NotNil(t, dto.SelectedLabels)
}

func TestGetConversation(t *testing.T) {
	usecase := &stubUsecase{conversation: sampleConversation()}
	router := newTestRouter(usecase)

	req := httptest.NewRequest(http.MethodGet, "/conversations/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var dto entity.ConversationDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, entity.StageInProgress, dto.Stage)
	assert.Len(t, dto.Messages, 2)
	assert.Len(t, dto.Choices, 2)
	assert.True(t, dto.Choices[0].Selected)
	assert.Equal(t, []string{"Gardeners"}, dto.SelectedLabels)
}

func TestGetConversationNotFound(t *testing.T) {
	usecase := &stubUsecase{err: entity.ErrConversationNotFound}
	router := newTestRouter(usecase)

	req := httptest.NewRequest(http.MethodGet, "/conversations/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitPrompt(t *testing.T) {
	usecase := &stubUsecase{conversation: sampleConversation()}
	router := newTestRouter(usecase)

	body := bytes.NewBufferString(`{"prompt":"A plant watering app"}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations/abc/prompt", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "A plant watering app", usecase.lastPrompt)
}

func TestSubmitPromptValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty prompt", `{"prompt":""}`},
		{"whitespace prompt", `{"prompt":"   "}`},
		{"not json", `prompt=hello`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubUsecase{})

			req := httptest.NewRequest(http.MethodPost, "/conversations/abc/prompt", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSubmitPromptRejected(t *testing.T) {
	usecase := &stubUsecase{err: fmt.Errorf("%w: verdict ABSTRACT", entity.ErrPromptRejected)}
	router := newTestRouter(usecase)

	body := bytes.NewBufferString(`{"prompt":"world peace"}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations/abc/prompt", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestToggleChoice(t *testing.T) {
	usecase := &stubUsecase{conversation: sampleConversation()}
	router := newTestRouter(usecase)

	body := bytes.NewBufferString(`{"label":"Gardeners"}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations/abc/choices/toggle", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Gardeners", usecase.lastLabel)
}

func TestToggleChoiceMissingLabel(t *testing.T) {
	router := newTestRouter(&stubUsecase{})

	body := bytes.NewBufferString(`{"label":" "}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations/abc/choices/toggle", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleChoiceUnknown(t *testing.T) {
	usecase := &stubUsecase{err: fmt.Errorf("%w: %q", entity.ErrChoiceNotFound, "Nope")}
	router := newTestRouter(usecase)

	body := bytes.NewBufferString(`{"label":"Nope"}`)
	req := httptest.NewRequest(http.MethodPost, "/conversations/abc/choices/toggle", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitSelectionsStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"no selection", entity.ErrNoSelection, http.StatusBadRequest},
		{"wrong stage", fmt.Errorf("%w: stage INITIAL", entity.ErrWrongStage), http.StatusConflict},
		{"gateway down", fmt.Errorf("%w: refused", entity.ErrGatewayUnavailable), http.StatusBadGateway},
		{"malformed reply", fmt.Errorf("%w: bad json", entity.ErrMalformedResponse), http.StatusBadGateway},
		{"not found", entity.ErrConversationNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubUsecase{err: tt.err})

			req := httptest.NewRequest(http.MethodPost, "/conversations/abc/submit", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRequestMoreOptions(t *testing.T) {
	usecase := &stubUsecase{conversation: sampleConversation()}
	router := newTestRouter(usecase)

	req := httptest.NewRequest(http.MethodPost, "/conversations/abc/options/more", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReset(t *testing.T) {
	usecase := &stubUsecase{conversation: &entity.Conversation{
		ID:    "abc",
		Stage: entity.StageInitial,
	}}
	router := newTestRouter(usecase)

	req := httptest.NewRequest(http.MethodPost, "/conversations/abc/reset", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var dto entity.ConversationDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, entity.StageInitial, dto.Stage)
	assert.Zero(t, dto.QuestionCount)
}

func TestExportConcepts(t *testing.T) {
	concepts := []entity.AppConcept{
		{
			ID:          "c1",
			Name:        "PlantPal",
			Description: "Watering reminders",
			Features: []entity.KeyFeature{
				{Name: "Reminders", Description: "Scheduled notifications"},
			},
		},
	}

	tests := []struct {
		name        string
		query       string
		contentType string
	}{
		{"default markdown", "", "text/markdown"},
		{"explicit json", "?format=json", "application/json"},
		{"pdf", "?format=pdf", "application/pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubUsecase{concepts: concepts})

			req := httptest.NewRequest(http.MethodGet, "/conversations/abc/concepts"+tt.query, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), tt.contentType)
			assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
			assert.NotEmpty(t, rec.Body.Bytes())
		})
	}
}

func TestExportConceptsInvalidFormat(t *testing.T) {
	router := newTestRouter(&stubUsecase{})

	req := httptest.NewRequest(http.MethodGet, "/conversations/abc/concepts?format=xlsx", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportConceptsNotCompleted(t *testing.T) {
	usecase := &stubUsecase{err: fmt.Errorf("%w: interview not completed", entity.ErrNoConcepts)}
	router := newTestRouter(usecase)

	req := httptest.NewRequest(http.MethodGet, "/conversations/abc/concepts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListConcepts(t *testing.T) {
	usecase := &stubUsecase{concepts: []entity.AppConcept{
		{ID: "c1", Name: "PlantPal"},
		{ID: "c2", Name: "GreenThumb"},
	}}
	router := newTestRouter(usecase)

	req := httptest.NewRequest(http.MethodGet, "/concepts?limit=2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, usecase.lastLimit)

	var dtos []entity.AppConceptDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dtos))
	assert.Len(t, dtos, 2)
}

func TestListConceptsInvalidLimit(t *testing.T) {
	router := newTestRouter(&stubUsecase{})

	req := httptest.NewRequest(http.MethodGet, "/concepts?limit=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
