package aigateway

import (
	"context"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/TH33ORACL3/prompt-keeper/backend/models"
)

func (g *Gateway) completeAnthropic(ctx context.Context, s models.AISettings, prompt string) (string, error) {
	key := strings.TrimSpace(s.APIKeys.Anthropic)
	if key == "" {
		return "", missingKey(models.ProviderAnthropic, "Anthropic")
	}

	opts := []anthropic.ClientOption{anthropic.WithHTTPClient(g.httpClient)}
	if s.AnthropicBaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(s.AnthropicBaseURL))
	}
	client := anthropic.NewClient(key, opts...)

	temperature := chatTemperature
	resp, err := client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(s.DefaultModel),
		Messages: []anthropic.Message{{
			Role:    anthropic.RoleUser,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(prompt)},
		}},
		MaxTokens:   chatMaxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", &Error{Provider: models.ProviderAnthropic, Message: "Anthropic API Error: " + err.Error(), Err: err}
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text.WriteString(*block.Text)
		}
	}
	return text.String(), nil
}
