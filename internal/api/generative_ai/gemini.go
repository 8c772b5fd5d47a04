package generativeAI

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGeminiClient(ctx context.Context, apiKey, model string, temperature float32) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{
		client:      client,
		model:       model,
		temperature: temperature,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, req Request) (Response, error) {
	temperature := c.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		},
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.User), cfg)
	if err != nil {
		return Response{}, fmt.Errorf("gemini generate content failed: %w", err)
	}
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return Response{}, fmt.Errorf("%w: gemini returned an empty response", types.ErrLLMMalformedOutput)
	}
	return Response{Text: text, Model: c.model, Provider: ProviderGemini}, nil
}
