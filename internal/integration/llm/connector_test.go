package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/futig/concept-interview/internal/config"
	"github.com/futig/concept-interview/internal/entity"
)

func newTestConnector(t *testing.T, serverURL string) *Connector {
	t.Helper()

	cfg := config.LLMGatewayConfig{
		ChatEndpoint: "/chat/completions",
		Model:        "test-model",
		MaxTokens:    256,
	}
	cfg.Url = serverURL

	return NewConnector(cfg, config.InterviewConfig{
		OptionCount:  5,
		MaxQuestions: 5,
		ConceptCount: 3,
		FeatureCount: 3,
	}, zap.NewNop())
}

// completionServer replies to every request with the given assistant content
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req entity.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.NotEmpty(t, req.Messages)

		resp := entity.ChatCompletionResponse{
			Choices: []entity.ChatChoice{
				{Message: entity.ChatMessage{Role: entity.RoleAssistant, Content: content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerateQuestion(t *testing.T) {
	reply := `{"question":"Who is the app for?","options":["Students","Parents","Athletes","Travelers","Teams"]}`
	server := completionServer(t, "```json\n"+reply+"\n```")
	defer server.Close()

	connector := newTestConnector(t, server.URL)

	payload, err := connector.GenerateQuestion(context.Background(), []entity.Message{
		{Seq: 1, Author: entity.AuthorUser, Text: "A workout planning app"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Who is the app for?", payload.Question)
	assert.Len(t, payload.Options, 5)
}

func TestGenerateQuestionWrongOptionCount(t *testing.T) {
	reply := `{"question":"Who is the app for?","options":["Students","Parents"]}`
	server := completionServer(t, reply)
	defer server.Close()

	connector := newTestConnector(t, server.URL)

	_, err := connector.GenerateQuestion(context.Background(), nil)
	assert.ErrorIs(t, err, entity.ErrMalformedResponse)
}

func TestGenerateQuestionEmptyText(t *testing.T) {
	reply := `{"question":"","options":["a","b","c","d","e"]}`
	server := completionServer(t, reply)
	defer server.Close()

	connector := newTestConnector(t, server.URL)

	_, err := connector.GenerateQuestion(context.Background(), nil)
	assert.ErrorIs(t, err, entity.ErrMalformedResponse)
}

func TestChatUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	connector := newTestConnector(t, server.URL)

	_, err := connector.GenerateQuestion(context.Background(), nil)
	assert.ErrorIs(t, err, entity.ErrGatewayUnavailable)
}

func TestChatTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	connector := newTestConnector(t, server.URL)

	_, err := connector.GenerateQuestion(context.Background(), nil)
	assert.ErrorIs(t, err, entity.ErrGatewayUnavailable)
}

func TestChatNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	connector := newTestConnector(t, server.URL)

	_, err := connector.GenerateQuestion(context.Background(), nil)
	assert.ErrorIs(t, err, entity.ErrMalformedResponse)
}

func TestClassifyPrompt(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		verdict entity.Verdict
	}{
		{"json object", `{"verdict":"VALID"}`, entity.VerdictValid},
		{"fenced json", "```json\n{\"verdict\":\"ABSTRACT\"}\n```", entity.VerdictAbstract},
		{"bare word", "INVALID", entity.VerdictInvalid},
		{"lowercase", "valid", entity.VerdictValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := completionServer(t, tt.reply)
			defer server.Close()

			connector := newTestConnector(t, server.URL)

			verdict, err := connector.ClassifyPrompt(context.Background(), "An app idea")
			require.NoError(t, err)
			assert.Equal(t, tt.verdict, verdict)
		})
	}
}

func TestClassifyPromptUnknownVerdict(t *testing.T) {
	server := completionServer(t, "MAYBE")
	defer server.Close()

	connector := newTestConnector(t, server.URL)

	_, err := connector.ClassifyPrompt(context.Background(), "An app idea")
	assert.ErrorIs(t, err, entity.ErrMalformedResponse)
}

func TestGenerateMoreOptions(t *testing.T) {
	server := completionServer(t, `{"options":["Coaches","Clubs"]}`)
	defer server.Close()

	connector := newTestConnector(t, server.URL)

	payload, err := connector.GenerateMoreOptions(context.Background(), "Who is the app for?", []string{"Students"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Coaches", "Clubs"}, payload.Options)
}

func TestGenerateMoreOptionsEmpty(t *testing.T) {
	server := completionServer(t, `{"options":[]}`)
	defer server.Close()

	connector := newTestConnector(t, server.URL)

	_, err := connector.GenerateMoreOptions(context.Background(), "Who is the app for?", nil)
	assert.ErrorIs(t, err, entity.ErrMalformedResponse)
}

func TestSynthesizeConcepts(t *testing.T) {
	concepts := make([]entity.ConceptPayload, 0, 3)
	for i := 1; i <= 3; i++ {
		concepts = append(concepts, entity.ConceptPayload{
			Name:        fmt.Sprintf("Concept %d", i),
			Description: "Description",
			KeyFeatures: []entity.KeyFeaturePayload{
				{Name: "F1", Description: "d"},
				{Name: "F2", Description: "d"},
				{Name: "F3", Description: "d"},
			},
		})
	}
	reply, err := json.Marshal(map[string]any{"concepts": concepts})
	require.NoError(t, err)

	server := completionServer(t, string(reply))
	defer server.Close()

	connector := newTestConnector(t, server.URL)

	result, err := connector.SynthesizeConcepts(context.Background(), []entity.Message{
		{Seq: 1, Author: entity.AuthorUser, Text: "A workout planning app"},
	})
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, "Concept 1", result[0].Name)
	assert.Len(t, result[0].KeyFeatures, 3)
}

func TestSynthesizeConceptsWrongFeatureCount(t *testing.T) {
	reply := `{"concepts":[
		{"name":"A","description":"d","key_features":[{"name":"f","description":"d"}]},
		{"name":"B","description":"d","key_features":[{"name":"f","description":"d"}]},
		{"name":"C","description":"d","key_features":[{"name":"f","description":"d"}]}
	]}`
	server := completionServer(t, reply)
	defer server.Close()

	connector := newTestConnector(t, server.URL)

	_, err := connector.SynthesizeConcepts(context.Background(), nil)
	assert.ErrorIs(t, err, entity.ErrMalformedResponse)
}

func TestForwardCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi"}}]}`))
	}))
	defer server.Close()

	connector := newTestConnector(t, server.URL)

	status, body, err := connector.ForwardCompletion(context.Background(), []byte(`{"model":"m","messages":[]}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "choices")
}

func TestForwardCompletionPassesThroughUpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	connector := newTestConnector(t, server.URL)

	status, body, err := connector.ForwardCompletion(context.Background(), []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, string(body), "rate limited")
}
