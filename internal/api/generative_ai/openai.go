package generativeAI

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
}

func NewOpenAIClient(apiKey, model string, temperature float32) *OpenAIClient {
	return NewOpenAIClientWithConfig(openai.DefaultConfig(apiKey), model, temperature)
}

func NewOpenAIClientWithConfig(cfg openai.ClientConfig, model string, temperature float32) *OpenAIClient {
	return &OpenAIClient{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (Response, error) {
	temperature := c.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: temperature,
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return Response{}, fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("%w: openai returned no choices", types.ErrLLMMalformedOutput)
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}
	return Response{Text: resp.Choices[0].Message.Content, Model: model, Provider: ProviderOpenAI}, nil
}
