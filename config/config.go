// Package config loads studio configuration from an optional JSON file
// with environment-variable overlays (a .env file is honored when present).
package config

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	ServerAddr string     `json:"server_addr,omitempty"`
	LogLevel   string     `json:"log_level,omitempty"`
	LogFormat  string     `json:"log_format,omitempty"`
	LLM        *LLMConfig `json:"llm,omitempty"`
}

type LLMConfig struct {
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
	ImageModel string `json:"image_model,omitempty"`
	APIKey     string `json:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty"`
}

// Load reads the JSON config (the file may be absent) and applies env
// overlays and defaults. The API key may live only in the environment.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist):
		// env-only configuration
	default:
		return Config{}, err
	}

	if cfg.LLM == nil {
		cfg.LLM = &LLMConfig{}
	}
	cfg.ServerAddr = getEnv("SERVER_ADDR", cfg.ServerAddr)
	cfg.LogLevel = getEnv("LOG_LEVEL", defaultStr(cfg.LogLevel, "info"))
	cfg.LogFormat = getEnv("LOG_FORMAT", defaultStr(cfg.LogFormat, "console"))
	cfg.LLM.Provider = getEnv("LLM_PROVIDER", defaultStr(cfg.LLM.Provider, "openai"))
	cfg.LLM.Model = getEnv("LLM_MODEL", defaultStr(cfg.LLM.Model, "gpt-4o-mini"))
	cfg.LLM.ImageModel = getEnv("LLM_IMAGE_MODEL", defaultStr(cfg.LLM.ImageModel, "gpt-image-1"))
	cfg.LLM.APIKey = getEnv("OPENAI_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
