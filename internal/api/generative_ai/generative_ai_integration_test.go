//go:build integration

package generativeAI

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiClient_Integration(t *testing.T) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: GOOGLE_GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewGeminiClient(ctx, apiKey, "gemini-2.0-flash", 0.2)
	require.NoError(t, err)

	t.Run("plain text", func(t *testing.T) {
		resp, err := client.Generate(ctx, Request{System: "Answer in one short sentence.", User: "What is a travel itinerary?"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Text)
		assert.Equal(t, ProviderGemini, resp.Provider)
	})

	t.Run("json mode", func(t *testing.T) {
		resp, err := client.Generate(ctx, Request{
			System: `Reply with a JSON object {"status": "ask" or "search"}.`,
			User:   "I want to go somewhere quiet by the sea.",
			JSON:   true,
		})
		require.NoError(t, err)

		var out struct {
			Status string `json:"status"`
		}
		require.NoError(t, DecodeJSON(resp.Text, &out))
		assert.Contains(t, []string{"ask", "search"}, out.Status)
	})
}

func TestOpenAIClient_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := NewOpenAIClient(apiKey, "gpt-4o-mini", 0.2).Generate(ctx, Request{
		System: `Reply with a JSON object {"ok": true}.`,
		User:   "ping",
		JSON:   true,
	})
	require.NoError(t, err)

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, DecodeJSON(resp.Text, &out))
	assert.True(t, out.OK)
}
