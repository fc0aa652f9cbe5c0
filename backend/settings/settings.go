package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/TH33ORACL3/prompt-keeper/backend/aigateway"
	"github.com/TH33ORACL3/prompt-keeper/backend/kv"
	"github.com/TH33ORACL3/prompt-keeper/backend/models"
)

const DefaultModel = "gemini-2.0-flash"

var ErrUnknownProvider = errors.New("unknown provider")

// Defaults returns the settings used before anything is configured
func Defaults() models.AISettings {
	return models.AISettings{
		AIIntegration: true,
		DefaultModel:  DefaultModel,
		APIEndpoint:   aigateway.DefaultGeminiEndpoint,
	}
}

// Store holds the AI settings document. It satisfies aigateway.SettingsSource,
// so changes apply to the next AI call without a restart.
type Store struct {
	mu       sync.Mutex
	current  models.AISettings
	defaults models.AISettings
	kv       kv.Store
	logger   *slog.Logger
}

// New loads persisted settings from backend. When nothing is stored yet the
// given defaults are used as is.
func New(ctx context.Context, backend kv.Store, defaults models.AISettings, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		current:  defaults,
		defaults: defaults,
		kv:       backend,
		logger:   logger,
	}

	data, ok, err := backend.Load(ctx, kv.DocSettings)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings document: %w", err)
	}
	if ok {
		if err := json.Unmarshal(data, &s.current); err != nil {
			return nil, fmt.Errorf("failed to decode settings document: %w", err)
		}
	}

	logger.Info("settings loaded",
		"restored", ok,
		"ai_integration", s.current.AIIntegration,
		"default_model", s.current.DefaultModel,
		"gate_provider", s.current.Gate(),
		"has_key", s.current.APIKeys.Get(s.current.Gate()) != "",
	)
	return s, nil
}

func (s *Store) persistLocked(ctx context.Context, operation string) {
	data, err := json.Marshal(s.current)
	if err != nil {
		s.logger.Error("failed to encode settings document", "error", err, "operation", operation)
		return
	}
	if err := s.kv.Save(context.WithoutCancel(ctx), kv.DocSettings, data); err != nil {
		s.logger.Error("failed to persist settings document", "error", err, "operation", operation)
	}
}

// AISettings returns the current settings, API keys included.
func (s *Store) AISettings() models.AISettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Get returns the current settings with API keys masked
func (s *Store) Get() models.AISettings {
	return s.AISettings().Redacted()
}

// normalizeProvider lowercases p and rejects unknown names. Empty is allowed.
func normalizeProvider(p *models.Provider) error {
	parsed, err := models.ParseProvider(string(*p))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, *p)
	}
	*p = parsed
	return nil
}

// Update merges the non-nil fields of patch
func (s *Store) Update(ctx context.Context, patch models.AISettingsPatch) (models.AISettings, error) {
	if patch.Provider != nil {
		if err := normalizeProvider(patch.Provider); err != nil {
			return models.AISettings{}, err
		}
	}
	if patch.GateProvider != nil {
		if err := normalizeProvider(patch.GateProvider); err != nil {
			return models.AISettings{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := &s.current
	if patch.AIIntegration != nil {
		c.AIIntegration = *patch.AIIntegration
	}
	if patch.DefaultModel != nil {
		c.DefaultModel = *patch.DefaultModel
	}
	if patch.Provider != nil {
		c.Provider = *patch.Provider
	}
	if patch.GateProvider != nil {
		c.GateProvider = *patch.GateProvider
	}
	if patch.APIEndpoint != nil {
		c.APIEndpoint = *patch.APIEndpoint
	}
	if patch.OpenAIBaseURL != nil {
		c.OpenAIBaseURL = *patch.OpenAIBaseURL
	}
	if patch.AnthropicBaseURL != nil {
		c.AnthropicBaseURL = *patch.AnthropicBaseURL
	}
	if patch.OpenRouterBaseURL != nil {
		c.OpenRouterBaseURL = *patch.OpenRouterBaseURL
	}
	if patch.OpenRouterReferer != nil {
		c.OpenRouterReferer = *patch.OpenRouterReferer
	}

	s.persistLocked(ctx, "Update")
	s.logger.Info("settings updated", "default_model", c.DefaultModel, "ai_integration", c.AIIntegration)
	return s.current.Redacted(), nil
}

// UpdateAPIKey replaces the key for one provider. An empty key clears it.
func (s *Store) UpdateAPIKey(ctx context.Context, provider models.Provider, key string) error {
	p, err := models.ParseProvider(string(provider))
	if err != nil || p == "" {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.APIKeys.Set(p, key)
	s.persistLocked(ctx, "UpdateAPIKey")
	s.logger.Info("api key updated", "provider", p, "has_key", key != "")
	return nil
}

// Reset restores the defaults but keeps every stored API key.
func (s *Store) Reset(ctx context.Context) models.AISettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := s.current.APIKeys
	s.current = s.defaults
	s.current.APIKeys = keys
	s.persistLocked(ctx, "Reset")
	return s.current.Redacted()
}

var _ aigateway.SettingsSource = (*Store)(nil)
