// Package aigateway wraps the text-generation providers behind three prompt
// helpers (title, tags, improvement) and a connection test. Settings are read
// from a SettingsSource on every call.
package aigateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/TH33ORACL3/prompt-keeper/backend/models"
)

const (
	disabledMessage = "AI integration is not enabled or no API key is set"
	maxTagLength    = 20

	testPrompt = `Hello, please respond with "Connection successful" if you can read this message.`
)

var (
	ErrDisabled = errors.New("ai integration is not enabled or no api key is set")
	ErrNoTags   = errors.New("no valid tags were generated")
)

// Error is a failed call to a provider. Message is safe to show to users.
type Error struct {
	Provider models.Provider
	Message  string
	Err      error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// SettingsSource supplies the current AI settings
type SettingsSource interface {
	AISettings() models.AISettings
}

// ConnectionResult is the outcome of TestAPIConnection
type ConnectionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Options struct {
	Logger *slog.Logger
	// HTTPClient is used for every provider. Defaults to a client without a
	// timeout; callers bound requests through the context.
	HTTPClient *http.Client
}

type Gateway struct {
	settings   SettingsSource
	logger     *slog.Logger
	httpClient *http.Client
}

func New(settings SettingsSource, opts Options) *Gateway {
	g := &Gateway{
		settings:   settings,
		logger:     opts.Logger,
		httpClient: opts.HTTPClient,
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.httpClient == nil {
		g.httpClient = &http.Client{}
	}
	return g
}

// ActiveProvider reports the provider implied by the default model (or the
// explicit override).
func (g *Gateway) ActiveProvider() models.Provider {
	return g.settings.AISettings().ActiveProvider()
}

// Enabled reports whether integration is switched on and the gated provider has a key.
func (g *Gateway) Enabled() bool {
	return enabled(g.settings.AISettings())
}

func enabled(s models.AISettings) bool {
	return s.AIIntegration && strings.TrimSpace(s.APIKeys.Get(s.Gate())) != ""
}

// complete sends prompt to the gated provider and returns the generated text
func (g *Gateway) complete(ctx context.Context, s models.AISettings, operation, prompt string) (string, error) {
	provider := s.Gate()
	start := time.Now()

	var (
		text string
		err  error
	)
	switch provider {
	case models.ProviderOpenAI:
		text, err = g.completeOpenAI(ctx, s, prompt)
	case models.ProviderOpenRouter:
		text, err = g.completeOpenRouter(ctx, s, prompt)
	case models.ProviderAnthropic:
		text, err = g.completeAnthropic(ctx, s, prompt)
	case models.ProviderGemini:
		text, err = g.completeGemini(ctx, s, prompt)
	default:
		err = &Error{Provider: provider, Message: fmt.Sprintf("Unsupported provider: %s", provider)}
	}

	duration := time.Since(start).Milliseconds()
	if err != nil {
		g.logger.Warn("ai request failed",
			"provider", provider,
			"operation", operation,
			"duration_ms", duration,
			"error", err,
		)
		return "", err
	}
	g.logger.Info("ai request",
		"provider", provider,
		"operation", operation,
		"duration_ms", duration,
		"response_length", len(text),
	)
	return text, nil
}

// generate runs one gated completion, failing with ErrDisabled before any call
// when the gate is closed.
func (g *Gateway) generate(ctx context.Context, operation, prompt string) (string, error) {
	s := g.settings.AISettings()
	if !enabled(s) {
		return "", ErrDisabled
	}
	return g.complete(ctx, s, operation, prompt)
}

func (g *Gateway) GenerateTitle(ctx context.Context, content string) (string, error) {
	prompt := "Generate a concise, descriptive title for the following AI prompt. " +
		"The title should capture the essence of what the prompt is designed to do. " +
		"Just return the title with no additional text or explanation.\n\nPrompt: " + content
	return g.generate(ctx, "GenerateTitle", prompt)
}

// GenerateTags asks for 3-5 comma separated tags and keeps the usable ones.
func (g *Gateway) GenerateTags(ctx context.Context, content string) ([]string, error) {
	prompt := "Generate 3-5 relevant tags for the following AI prompt. " +
		"Each tag should be a single word or short phrase. " +
		"Return the tags as a comma-separated list with no additional text, explanation or formatting.\n\nPrompt: " + content
	text, err := g.generate(ctx, "GenerateTags", prompt)
	if err != nil {
		return nil, err
	}
	tags := parseTags(text)
	if len(tags) == 0 {
		return nil, ErrNoTags
	}
	return tags, nil
}

// parseTags splits on commas, trims, and drops empty or over-long entries
func parseTags(text string) []string {
	var tags []string
	for _, part := range strings.Split(text, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" || utf8.RuneCountInString(tag) > maxTagLength {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

func (g *Gateway) ImprovePrompt(ctx context.Context, content string) (string, error) {
	prompt := "Improve the following AI prompt to make it more effective, clear, and likely to produce good results. " +
		"Maintain the original intent and purpose, but enhance the structure, specificity, and clarity. " +
		"Return only the improved prompt with no additional explanation.\n\nOriginal prompt: " + content
	return g.generate(ctx, "ImprovePrompt", prompt)
}

// TestAPIConnection sends a fixed probe message. It never returns an error;
// failures are reported in the result.
func (g *Gateway) TestAPIConnection(ctx context.Context) ConnectionResult {
	s := g.settings.AISettings()
	if !enabled(s) {
		return ConnectionResult{Success: false, Message: disabledMessage}
	}
	if _, err := g.complete(ctx, s, "TestAPIConnection", testPrompt); err != nil {
		return ConnectionResult{Success: false, Message: "Connection failed: " + err.Error()}
	}
	return ConnectionResult{Success: true, Message: "API connection successful!"}
}

func missingKey(p models.Provider, name string) error {
	return &Error{
		Provider: p,
		Message:  fmt.Sprintf("No API key found for %s. Please add an API key in Settings.", name),
	}
}
