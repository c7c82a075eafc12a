package config

import (
	"os"
	"strconv"

	"trmcore/internal/errors"
)

// Config represents the complete application configuration.
type Config struct {
	LLM       LLMConfig    `validate:"required"`
	Server    ServerConfig `validate:"required"`
	TRM       TRMConfig    `validate:"required"`
}

// LLMConfig holds settings for the optional text-generation provider used
// by the LLM-guided transformation strategy.
type LLMConfig struct {
	OpenAIKey   string
	OpenAIModel string
	MaxTokens   int
	Temperature float64
}

// ServerConfig holds web server settings for the thin HTTP shell.
type ServerConfig struct {
	Port    string `validate:"required"`
	GinMode string
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	config := &Config{}

	config.LLM = *loadLLMConfig()
	config.Server = *loadServerConfig()

	trmConfig, err := loadTRMConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load TRM configuration")
	}
	config.TRM = *trmConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadLLMConfig() *LLMConfig {
	return &LLMConfig{
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: getEnvOrDefault("LLM_MODEL", "gpt-4.1-mini"),
		MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 1024),
		Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.6),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func validateConfig(config *Config) error {
	if config.TRM.Rank <= 0 {
		return errors.ConfigInvalid("TRM_RANK must be positive")
	}
	if len(config.TRM.DefaultPacks) == 0 {
		return errors.ConfigInvalid("TRM_DEFAULT_PACKS must name at least one pack")
	}
	if config.TRM.GenerationAdapter == "openai" && config.LLM.OpenAIKey == "" {
		return errors.ConfigInvalid("OPENAI_API_KEY is required when TRM_GENERATION_ADAPTER=openai")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

