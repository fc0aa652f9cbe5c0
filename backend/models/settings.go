package models

import (
	"fmt"
	"strings"
)

// Provider identifies a text-generation API
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderAnthropic  Provider = "anthropic"
	ProviderGemini     Provider = "gemini"
	ProviderOpenRouter Provider = "openrouter"
)

// Providers lists every supported provider
var Providers = []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOpenRouter}

// ParseProvider accepts a provider name, case-insensitively. Empty input yields "".
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return "", nil
	}
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown provider %q (supported: openai, anthropic, gemini, openrouter)", s)
}

// ProviderForModel derives the provider from a model name:
// gpt-* is OpenAI, claude-* Anthropic, gemini-* Gemini, the literal
// "openrouter" OpenRouter; anything else falls back to OpenAI.
func ProviderForModel(model string) Provider {
	switch {
	case strings.HasPrefix(model, "gpt-"):
		return ProviderOpenAI
	case strings.HasPrefix(model, "claude-"):
		return ProviderAnthropic
	case strings.HasPrefix(model, "gemini-"):
		return ProviderGemini
	case model == "openrouter":
		return ProviderOpenRouter
	default:
		return ProviderOpenAI
	}
}

// APIKeys holds one key per provider
type APIKeys struct {
	OpenAI     string `json:"openai" yaml:"openai"`
	Anthropic  string `json:"anthropic" yaml:"anthropic"`
	Gemini     string `json:"gemini" yaml:"gemini"`
	OpenRouter string `json:"openrouter" yaml:"openrouter"`
}

// Get returns the key for p
func (k APIKeys) Get(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return k.OpenAI
	case ProviderAnthropic:
		return k.Anthropic
	case ProviderGemini:
		return k.Gemini
	case ProviderOpenRouter:
		return k.OpenRouter
	}
	return ""
}

// Set stores key for p
func (k *APIKeys) Set(p Provider, key string) {
	switch p {
	case ProviderOpenAI:
		k.OpenAI = key
	case ProviderAnthropic:
		k.Anthropic = key
	case ProviderGemini:
		k.Gemini = key
	case ProviderOpenRouter:
		k.OpenRouter = key
	}
}

// AISettings is the persisted AI configuration read by the gateway at call time.
type AISettings struct {
	AIIntegration bool   `json:"aiIntegration" yaml:"ai_integration"`
	DefaultModel  string `json:"defaultModel" yaml:"default_model"`
	// Provider overrides the provider derived from DefaultModel when set.
	Provider Provider `json:"provider,omitempty" yaml:"provider"`
	// GateProvider is the provider whose key enables generation and which
	// serves every generation request. Empty means Gemini.
	GateProvider      Provider `json:"gateProvider,omitempty" yaml:"gate_provider"`
	APIEndpoint       string   `json:"apiEndpoint" yaml:"api_endpoint"`
	OpenAIBaseURL     string   `json:"openaiBaseUrl,omitempty" yaml:"openai_base_url"`
	AnthropicBaseURL  string   `json:"anthropicBaseUrl,omitempty" yaml:"anthropic_base_url"`
	OpenRouterBaseURL string   `json:"openrouterBaseUrl,omitempty" yaml:"openrouter_base_url"`
	OpenRouterReferer string   `json:"openrouterReferer,omitempty" yaml:"openrouter_referer"`
	APIKeys           APIKeys  `json:"apiKeys" yaml:"api_keys"`
}

// ActiveProvider resolves the provider implied by the settings
func (s AISettings) ActiveProvider() Provider {
	if s.Provider != "" {
		return s.Provider
	}
	return ProviderForModel(s.DefaultModel)
}

// Gate returns the provider generation is wired to
func (s AISettings) Gate() Provider {
	if s.GateProvider != "" {
		return s.GateProvider
	}
	return ProviderGemini
}

// Redacted returns a copy safe to serve to clients: keys are reduced to a mask.
func (s AISettings) Redacted() AISettings {
	out := s
	for _, p := range Providers {
		out.APIKeys.Set(p, maskKey(s.APIKeys.Get(p)))
	}
	return out
}

func maskKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if len(key) <= 6 {
		return strings.Repeat("*", len(key))
	}
	return key[:3] + "..." + key[len(key)-3:]
}

// AISettingsPatch holds settings fields to merge. Nil fields are left alone.
type AISettingsPatch struct {
	AIIntegration     *bool     `json:"aiIntegration,omitempty"`
	DefaultModel      *string   `json:"defaultModel,omitempty"`
	Provider          *Provider `json:"provider,omitempty"`
	GateProvider      *Provider `json:"gateProvider,omitempty"`
	APIEndpoint       *string   `json:"apiEndpoint,omitempty"`
	OpenAIBaseURL     *string   `json:"openaiBaseUrl,omitempty"`
	AnthropicBaseURL  *string   `json:"anthropicBaseUrl,omitempty"`
	OpenRouterBaseURL *string   `json:"openrouterBaseUrl,omitempty"`
	OpenRouterReferer *string   `json:"openrouterReferer,omitempty"`
}
