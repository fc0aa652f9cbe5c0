package aigateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/TH33ORACL3/prompt-keeper/backend/models"
)

const (
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"

	geminiMaxOutputTokens = 1024
	geminiTopP            = 0.95
	geminiTopK            = 40
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiErrorBody struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// geminiModel maps the configured default model onto a Gemini model id
func geminiModel(defaultModel string) string {
	switch defaultModel {
	case "gemini-2.0-flash":
		return "gemini-2.0-flash"
	case "gemini-flash":
		return "gemini-1.0-pro-latest"
	default:
		return "gemini-1.0-pro"
	}
}

func geminiError(message string, err error) error {
	return &Error{Provider: models.ProviderGemini, Message: message, Err: err}
}

// completeGemini calls generateContent over plain HTTP with the key in the query string
func (g *Gateway) completeGemini(ctx context.Context, s models.AISettings, prompt string) (string, error) {
	key := strings.TrimSpace(s.APIKeys.Gemini)
	if key == "" {
		return "", missingKey(models.ProviderGemini, "Gemini")
	}

	endpoint := strings.TrimRight(s.APIEndpoint, "/")
	if endpoint == "" {
		endpoint = DefaultGeminiEndpoint
	}
	model := geminiModel(s.DefaultModel)
	reqURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", endpoint, model, url.QueryEscape(key))

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: geminiMaxOutputTokens,
			Temperature:     float64(chatTemperature),
			TopP:            geminiTopP,
			TopK:            geminiTopK,
		},
	})
	if err != nil {
		return "", geminiError("Gemini API Error: "+err.Error(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return "", geminiError("Gemini API Error: "+err.Error(), err)
	}
	req.Header.Set("Content-Type", "application/json")

	g.logger.Debug("calling gemini", "model", model, "endpoint", endpoint)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		// the request URL carries the key, so report the cause only
		return "", geminiError("Gemini API Error: request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", geminiError("Gemini API Error: "+err.Error(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := http.StatusText(resp.StatusCode)
		var errBody geminiErrorBody
		if err := json.Unmarshal(respBody, &errBody); err == nil {
			message = "API Error"
			if errBody.Error != nil && errBody.Error.Message != "" {
				message = errBody.Error.Message
			}
		}
		return "", geminiError("Gemini API Error: "+message, nil)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", geminiError("Invalid response from API", err)
	}
	if len(parsed.Candidates) == 0 || parsed.Candidates[0].Content == nil || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", geminiError("Invalid response from API", nil)
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
