package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/adapters/driven/resilience"
	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestGenerate_Messages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be grounded", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, 1000, req.MaxTokens)
		assert.Equal(t, []string{"END"}, req.Stop)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"grounded answer"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	s, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := s.Generate(context.Background(), "what is ATP?", driven.GenerateOptions{
		System:    "be grounded",
		MaxTokens: 1000,
		StopWords: []string{"END"},
	})

	require.NoError(t, err)
	assert.Equal(t, "grounded answer", out)
	assert.Equal(t, DefaultLLMModel, s.ModelName())
}

func TestGenerate_NoSystemMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"x"}}]}`))
	}))
	defer srv.Close()

	s, err := NewLLMService(LLMConfig{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = s.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.NoError(t, err)
}

func TestGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"auth"}}`))
	}))
	defer srv.Close()

	s, err := NewLLMService(LLMConfig{APIKey: "bad", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = s.Generate(context.Background(), "p", driven.GenerateOptions{})

	var status *resilience.StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, "invalid api key", status.Body)
	assert.False(t, resilience.IsTransient(err))
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	s, err := NewLLMService(LLMConfig{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = s.Generate(context.Background(), "p", driven.GenerateOptions{})
	assert.Error(t, err)
}
