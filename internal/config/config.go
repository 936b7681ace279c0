// Package config loads the service configuration from YAML with env-held
// credentials. Secrets are only ever named by env var, never stored in the
// file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LLMConfig configures the OpenAI-compatible completions client.
type LLMConfig struct {
	Enabled     bool   `yaml:"enabled"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type"` // "hashing" or "openai"
	Dimension int                   `yaml:"dimension,omitempty"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// WeatherConfig configures the OpenWeather-backed forecast provider.
type WeatherConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Location  string `yaml:"location"`
}

// ForecastConfig selects the solar forecast provider.
type ForecastConfig struct {
	Provider  string         `yaml:"provider"` // "stub", "naive" or "weather"
	HistoryMW []float64      `yaml:"history_mw,omitempty"`
	Weather   *WeatherConfig `yaml:"weather,omitempty"`
}

// PlantConfig holds the default BESS parameters used when a request carries
// no plant metadata.
type PlantConfig struct {
	SoC            float64 `yaml:"soc"`
	CapacityMWh    float64 `yaml:"capacity_mwh"`
	MaxChargeMW    float64 `yaml:"max_charge_mw"`
	MaxDischargeMW float64 `yaml:"max_discharge_mw"`
}

// RetrievalConfig configures the knowledge base.
type RetrievalConfig struct {
	NotesDir     string `yaml:"notes_dir"`
	Store        string `yaml:"store"` // "sqlite" or "memory"
	DataPath     string `yaml:"data_path"`
	TopK         int    `yaml:"top_k"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	Watch        bool   `yaml:"watch"`
}

// GuardrailConfig configures the relevance gate.
type GuardrailConfig struct {
	Mode       string   `yaml:"mode"` // "keyword" or "llm"
	ExtraTerms []string `yaml:"extra_terms,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Forecast  ForecastConfig  `yaml:"forecast"`
	Plant     PlantConfig     `yaml:"plant"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Guardrail GuardrailConfig `yaml:"guardrail"`
}

// Load reads a config from the given path. A missing file yields defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// Validate fails when a provider is explicitly selected but its credential
// env var is unset, so misconfiguration stops the process at startup.
func (cfg *AppConfig) Validate() error {
	if cfg.LLM.Enabled && os.Getenv(cfg.LLM.APIKeyEnv) == "" {
		return fmt.Errorf("llm is enabled but env %s is unset", cfg.LLM.APIKeyEnv)
	}
	if cfg.Embedder.Type == "openai" && os.Getenv(cfg.Embedder.OpenAI.APIKeyEnv) == "" {
		return fmt.Errorf("openai embedder selected but env %s is unset", cfg.Embedder.OpenAI.APIKeyEnv)
	}
	if cfg.Forecast.Provider == "weather" && os.Getenv(cfg.Forecast.Weather.APIKeyEnv) == "" {
		return fmt.Errorf("weather forecast selected but env %s is unset", cfg.Forecast.Weather.APIKeyEnv)
	}
	if cfg.Guardrail.Mode == "llm" && !cfg.LLM.Enabled {
		return fmt.Errorf("guardrail mode llm requires llm.enabled")
	}
	switch cfg.Retrieval.Store {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown retrieval store %q", cfg.Retrieval.Store)
	}
	return nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}

	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}

	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hashing"
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}

	if cfg.Forecast.Provider == "" {
		cfg.Forecast.Provider = "stub"
	}
	if cfg.Forecast.Provider == "weather" {
		if cfg.Forecast.Weather == nil {
			cfg.Forecast.Weather = &WeatherConfig{}
		}
		if cfg.Forecast.Weather.APIKeyEnv == "" {
			cfg.Forecast.Weather.APIKeyEnv = "OPENWEATHER_API_KEY"
		}
		if cfg.Forecast.Weather.Location == "" {
			cfg.Forecast.Weather.Location = "Abu Dhabi"
		}
	}

	if cfg.Plant.CapacityMWh == 0 {
		cfg.Plant.SoC = 0.35
		cfg.Plant.CapacityMWh = 50.0
		cfg.Plant.MaxChargeMW = 5.0
		cfg.Plant.MaxDischargeMW = 5.0
	}

	if cfg.Retrieval.NotesDir == "" {
		cfg.Retrieval.NotesDir = "./documents"
	}
	if cfg.Retrieval.Store == "" {
		cfg.Retrieval.Store = "sqlite"
	}
	if cfg.Retrieval.DataPath == "" {
		cfg.Retrieval.DataPath = "./data"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Retrieval.ChunkSize == 0 {
		cfg.Retrieval.ChunkSize = 500
	}
	if cfg.Retrieval.ChunkOverlap == 0 {
		cfg.Retrieval.ChunkOverlap = 50
	}

	if cfg.Guardrail.Mode == "" {
		cfg.Guardrail.Mode = "keyword"
	}
}
