package aigateway

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"github.com/TH33ORACL3/prompt-keeper/backend/models"
)

const (
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterModel          = "openai/gpt-4-turbo"

	systemPrompt    = "You are a helpful assistant that generates tags, titles, and improves prompts."
	chatMaxTokens   = 500
	chatTemperature = float32(0.7)
)

var errEmptyChoices = errors.New("empty response from API")

// headerTransport adds fixed headers to every request
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// chatCompletion runs a system+user chat completion against any
// OpenAI-compatible endpoint.
func chatCompletion(ctx context.Context, client *openai.Client, model, prompt string) (string, error) {
	temperature := chatTemperature
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   chatMaxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyChoices
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *Gateway) completeOpenAI(ctx context.Context, s models.AISettings, prompt string) (string, error) {
	key := strings.TrimSpace(s.APIKeys.OpenAI)
	if key == "" {
		return "", missingKey(models.ProviderOpenAI, "OpenAI")
	}

	config := openai.DefaultConfig(key)
	if s.OpenAIBaseURL != "" {
		config.BaseURL = s.OpenAIBaseURL
	}
	config.HTTPClient = g.httpClient

	text, err := chatCompletion(ctx, openai.NewClientWithConfig(config), s.DefaultModel, prompt)
	if err != nil {
		return "", &Error{Provider: models.ProviderOpenAI, Message: "OpenAI API Error: " + err.Error(), Err: err}
	}
	return text, nil
}

// completeOpenRouter uses the OpenAI-compatible OpenRouter API with a fixed model
func (g *Gateway) completeOpenRouter(ctx context.Context, s models.AISettings, prompt string) (string, error) {
	key := strings.TrimSpace(s.APIKeys.OpenRouter)
	if key == "" {
		return "", missingKey(models.ProviderOpenRouter, "OpenRouter")
	}

	config := openai.DefaultConfig(key)
	config.BaseURL = DefaultOpenRouterBaseURL
	if s.OpenRouterBaseURL != "" {
		config.BaseURL = s.OpenRouterBaseURL
	}
	httpClient := g.httpClient
	if s.OpenRouterReferer != "" {
		withReferer := *g.httpClient
		withReferer.Transport = &headerTransport{
			base:    g.httpClient.Transport,
			headers: map[string]string{"HTTP-Referer": s.OpenRouterReferer},
		}
		httpClient = &withReferer
	}
	config.HTTPClient = httpClient

	text, err := chatCompletion(ctx, openai.NewClientWithConfig(config), openRouterModel, prompt)
	if err != nil {
		return "", &Error{Provider: models.ProviderOpenRouter, Message: "OpenRouter API Error: " + err.Error(), Err: err}
	}
	return text, nil
}
