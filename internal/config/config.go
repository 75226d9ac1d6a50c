// Package config loads service configuration from an optional YAML
// file (CONFIG_FILE) with environment variables taking precedence.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string `yaml:"api_port"`
	LogLevel string `yaml:"log_level"`

	OpenAIAPIKey         string  `yaml:"openai_api_key"`
	OpenAIBaseURL        string  `yaml:"openai_base_url"`
	OpenAIModel          string  `yaml:"openai_model"`
	OpenAITemperature    float64 `yaml:"openai_temperature"`
	OpenAIMaxTokens      int     `yaml:"openai_max_tokens"`
	OpenAITimeoutSeconds int     `yaml:"openai_timeout_seconds"`

	FirebaseProjectID       string `yaml:"firebase_project_id"`
	FirebaseCredentialsFile string `yaml:"firebase_credentials_file"`
	FirebaseCredentialsJSON string `yaml:"-"`

	TesseractBinary   string `yaml:"tesseract_binary"`
	TesseractLanguage string `yaml:"tesseract_language"`

	RateLimitRequests      int `yaml:"rate_limit_requests"`
	RateLimitWindowSeconds int `yaml:"rate_limit_window_seconds"`
}

func defaults() Config {
	return Config{
		APIPort:  "8080",
		LogLevel: "info",

		OpenAIBaseURL:        "https://api.openai.com/v1",
		OpenAIModel:          "gpt-4o",
		OpenAITemperature:    0.3,
		OpenAIMaxTokens:      4000,
		OpenAITimeoutSeconds: 120,

		TesseractBinary:   "tesseract",
		TesseractLanguage: "eng",

		RateLimitRequests:      10,
		RateLimitWindowSeconds: 60,
	}
}

func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrideString("API_PORT", &cfg.APIPort)
	overrideString("LOG_LEVEL", &cfg.LogLevel)

	overrideString("OPENAI_API_KEY", &cfg.OpenAIAPIKey)
	overrideString("OPENAI_API_BASE", &cfg.OpenAIBaseURL)
	overrideString("OPENAI_MODEL", &cfg.OpenAIModel)
	overrideFloat("OPENAI_TEMPERATURE", &cfg.OpenAITemperature)
	overrideInt("OPENAI_MAX_TOKENS", &cfg.OpenAIMaxTokens)
	overrideInt("OPENAI_TIMEOUT_SECONDS", &cfg.OpenAITimeoutSeconds)

	overrideString("FIREBASE_PROJECT_ID", &cfg.FirebaseProjectID)
	overrideString("GOOGLE_APPLICATION_CREDENTIALS", &cfg.FirebaseCredentialsFile)
	overrideString("FIREBASE_CREDENTIALS_JSON", &cfg.FirebaseCredentialsJSON)

	overrideString("TESSERACT_BINARY", &cfg.TesseractBinary)
	overrideString("TESSERACT_LANGUAGE", &cfg.TesseractLanguage)

	overrideInt("RATE_LIMIT_REQUESTS", &cfg.RateLimitRequests)
	overrideInt("RATE_LIMIT_WINDOW_SECONDS", &cfg.RateLimitWindowSeconds)
}

func overrideString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func overrideInt(key string, target *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*target = n
	}
}

func overrideFloat(key string, target *float64) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*target = f
	}
}
