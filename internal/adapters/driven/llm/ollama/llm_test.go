package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thecoder8890/neuralnotes.io/internal/core/domain"
	"github.com/thecoder8890/neuralnotes.io/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(LLMConfig{BaseURL: server.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(LLMConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())

	_, err = NewLLMService(LLMConfig{BaseURL: "::bad"})
	assert.Error(t, err)
}

func TestChat(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultLLMModel, body["model"])
		assert.Equal(t, false, body["stream"])
		assert.Equal(t, "json", body["format"])
		assert.Len(t, body["messages"], 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.1","message":{"role":"assistant","content":"{\"files\":[]}"},"done":true}`))
	})

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "system"},
		{Role: driven.RoleUser, Content: "user"},
	}, driven.ChatOptions{JSONMode: true, MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, `{"files":[]}`, out)
}

func TestGenerate_EmptyResponse(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.1","message":{"role":"assistant","content":"  "},"done":true}`))
	})

	_, err := svc.Generate(context.Background(), "hello", driven.GenerateOptions{StopWords: []string{"\n"}})
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGenerate_ModelMissing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"llama3.1\" not found, try pulling it first"}`))
	})

	_, err := svc.Generate(context.Background(), "hello", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestPing(t *testing.T) {
	tests := []struct {
		name    string
		models  string
		wantErr bool
	}{
		{"model pulled", `{"models":[{"name":"llama3.1:latest","model":"llama3.1:latest"}]}`, false},
		{"model missing", `{"models":[{"name":"mistral:latest","model":"mistral:latest"}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/tags", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.models))
			})

			err := svc.Ping(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
