package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeSuggest(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/messages"))
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))

		var req struct {
			Messages []struct {
				Content []struct {
					Text string `json:"text"`
				} `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && len(req.Messages) > 0 && len(req.Messages[0].Content) > 0 {
			gotPrompt = req.Messages[0].Content[0].Text
		}

		resp := map[string]interface{}{
			"id":          "msg_1",
			"type":        "message",
			"role":        "assistant",
			"model":       "claude-test",
			"stop_reason": "end_turn",
			"content": []map[string]interface{}{
				{"type": "text", "text": "Fried Rice | Stir fry with egg\nKheer | Simmer in milk"},
			},
			"usage": map[string]int{"input_tokens": 10, "output_tokens": 20},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	gen := NewClaudeGenerator("sk-test", "claude-test", anthropic.WithBaseURL(server.URL))

	got, err := gen.Suggest(context.Background(), []string{"Rice", "Milk"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Fried Rice", got[0].Name)
	assert.Equal(t, "Stir fry with egg", got[0].Description)
	assert.Equal(t, "Kheer", got[1].Name)
	assert.Contains(t, gotPrompt, "- Rice")
}

func TestClaudeSuggestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	}))
	defer server.Close()

	gen := NewClaudeGenerator("sk-test", "claude-test", anthropic.WithBaseURL(server.URL))

	_, err := gen.Suggest(context.Background(), []string{"Rice"})
	assert.Error(t, err)
}

func TestClaudeSuggestNoIngredients(t *testing.T) {
	gen := NewClaudeGenerator("sk-test", "claude-test", anthropic.WithBaseURL("http://127.0.0.1:0"))

	got, err := gen.Suggest(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
