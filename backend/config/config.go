// Package config loads server configuration from defaults, an optional YAML
// file and the environment, in that order of precedence (environment wins).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/TH33ORACL3/prompt-keeper/backend/kv"
	"github.com/TH33ORACL3/prompt-keeper/backend/models"
	"github.com/TH33ORACL3/prompt-keeper/backend/settings"
)

type StorageConfig struct {
	Engine        string `yaml:"engine"`
	Path          string `yaml:"path"`
	DatabaseURL   string `yaml:"database_url"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	Prefix        string `yaml:"prefix"`
}

type Config struct {
	Port         string            `yaml:"port"`
	BaseURL      string            `yaml:"base_url"`
	LogFormat    string            `yaml:"log_format"`
	LogLevel     string            `yaml:"log_level"`
	SeedDefaults bool              `yaml:"seed_defaults"`
	Storage      StorageConfig     `yaml:"storage"`
	AI           models.AISettings `yaml:"ai"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Port:         "8080",
		BaseURL:      "http://localhost:8080",
		LogFormat:    "text",
		LogLevel:     "info",
		SeedDefaults: true,

		// an empty path lets each engine pick its own default location
		Storage: StorageConfig{Engine: kv.EngineFile},
		AI:      settings.Defaults(),
	}
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.BaseURL = getEnv("BASE_URL", c.BaseURL)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.SeedDefaults = getEnvBool("SEED_DEFAULTS", c.SeedDefaults)

	c.Storage.Engine = strings.ToLower(getEnv("STORAGE_ENGINE", c.Storage.Engine))
	c.Storage.Path = getEnv("STORAGE_PATH", c.Storage.Path)
	c.Storage.DatabaseURL = getEnv("DATABASE_URL", c.Storage.DatabaseURL)
	c.Storage.RedisAddr = getEnv("REDIS_ADDR", c.Storage.RedisAddr)
	c.Storage.RedisPassword = getEnv("REDIS_PASSWORD", c.Storage.RedisPassword)
	c.Storage.RedisDB = getEnvInt("REDIS_DB", c.Storage.RedisDB)
	c.Storage.Prefix = getEnv("STORAGE_PREFIX", c.Storage.Prefix)

	ai := &c.AI
	ai.AIIntegration = getEnvBool("AI_INTEGRATION", ai.AIIntegration)
	ai.DefaultModel = getEnv("AI_DEFAULT_MODEL", ai.DefaultModel)
	ai.Provider = models.Provider(getEnv("AI_PROVIDER", string(ai.Provider)))
	ai.GateProvider = models.Provider(getEnv("AI_GATE_PROVIDER", string(ai.GateProvider)))
	ai.APIEndpoint = getEnv("GEMINI_API_ENDPOINT", ai.APIEndpoint)
	ai.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", ai.OpenAIBaseURL)
	ai.AnthropicBaseURL = getEnv("ANTHROPIC_BASE_URL", ai.AnthropicBaseURL)
	ai.OpenRouterBaseURL = getEnv("OPENROUTER_BASE_URL", ai.OpenRouterBaseURL)
	ai.OpenRouterReferer = getEnv("OPENROUTER_REFERER", ai.OpenRouterReferer)
	if ai.OpenRouterReferer == "" {
		ai.OpenRouterReferer = c.BaseURL
	}
	ai.APIKeys.OpenAI = getEnv("OPENAI_API_KEY", ai.APIKeys.OpenAI)
	ai.APIKeys.Anthropic = getEnv("ANTHROPIC_API_KEY", ai.APIKeys.Anthropic)
	ai.APIKeys.Gemini = getEnv("GEMINI_API_KEY", ai.APIKeys.Gemini)
	ai.APIKeys.OpenRouter = getEnv("OPENROUTER_API_KEY", ai.APIKeys.OpenRouter)
}

// Validate rejects unknown engines, providers and log settings
func (c *Config) Validate() error {
	switch c.Storage.Engine {
	case kv.EngineMemory, kv.EngineFile, kv.EngineSQLite:
	case kv.EnginePostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres engine")
		}
	case kv.EngineRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis engine")
		}
	default:
		return fmt.Errorf("unsupported storage engine: %q", c.Storage.Engine)
	}

	var err error
	if c.AI.Provider, err = models.ParseProvider(string(c.AI.Provider)); err != nil {
		return fmt.Errorf("invalid AI_PROVIDER: %w", err)
	}
	if c.AI.GateProvider, err = models.ParseProvider(string(c.AI.GateProvider)); err != nil {
		return fmt.Errorf("invalid AI_GATE_PROVIDER: %w", err)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %q", c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %q", c.LogLevel)
	}
	return nil
}

// KVOptions maps the storage section onto kv.Open options
func (c Config) KVOptions() kv.Options {
	return kv.Options{
		Engine:        c.Storage.Engine,
		Path:          c.Storage.Path,
		DSN:           c.Storage.DatabaseURL,
		RedisAddr:     c.Storage.RedisAddr,
		RedisPassword: c.Storage.RedisPassword,
		RedisDB:       c.Storage.RedisDB,
		Prefix:        c.Storage.Prefix,
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
