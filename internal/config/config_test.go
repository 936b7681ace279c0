package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("unexpected default addr: %s", cfg.Server.Addr)
	}
	if cfg.Forecast.Provider != "stub" {
		t.Errorf("unexpected default forecast provider: %s", cfg.Forecast.Provider)
	}
	if cfg.Embedder.Type != "hashing" {
		t.Errorf("unexpected default embedder: %s", cfg.Embedder.Type)
	}
	if cfg.Guardrail.Mode != "keyword" {
		t.Errorf("unexpected default guardrail mode: %s", cfg.Guardrail.Mode)
	}
	if cfg.Plant.CapacityMWh != 50.0 || cfg.Plant.SoC != 0.35 {
		t.Errorf("unexpected default plant: %+v", cfg.Plant)
	}
}

func TestLoad_ParsesYAML(t *testing.T) {
	dir, _ := os.MkdirTemp("", "config-test-*")
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte(`
server:
  addr: ":9090"
forecast:
  provider: naive
  history_mw: [32, 38.5, 41]
retrieval:
  notes_dir: ./notes
  top_k: 5
`), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Forecast.Provider != "naive" || len(cfg.Forecast.HistoryMW) != 3 {
		t.Errorf("unexpected forecast config: %+v", cfg.Forecast)
	}
	if cfg.Retrieval.TopK != 5 || cfg.Retrieval.NotesDir != "./notes" {
		t.Errorf("unexpected retrieval config: %+v", cfg.Retrieval)
	}
	// Unset fields still get defaults.
	if cfg.Retrieval.ChunkSize != 500 {
		t.Errorf("chunk size should default, got %d", cfg.Retrieval.ChunkSize)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir, _ := os.MkdirTemp("", "config-test-*")
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("server: [not a mapping"), 0644)

	if _, err := Load(path); err == nil {
		t.Error("invalid YAML should error")
	}
}

func TestValidate_LLMEnabledWithoutKey(t *testing.T) {
	t.Setenv("TEST_MISSING_KEY", "")

	cfg := defaultConfig()
	cfg.LLM.Enabled = true
	cfg.LLM.APIKeyEnv = "TEST_MISSING_KEY"

	if err := cfg.Validate(); err == nil {
		t.Error("enabled llm without a key should fail validation")
	}
}

func TestValidate_WeatherProviderWithoutKey(t *testing.T) {
	t.Setenv("TEST_WEATHER_KEY", "")

	cfg := defaultConfig()
	cfg.Forecast.Provider = "weather"
	applyConfigDefaults(cfg)
	cfg.Forecast.Weather.APIKeyEnv = "TEST_WEATHER_KEY"

	if err := cfg.Validate(); err == nil {
		t.Error("weather provider without a key should fail validation")
	}
}

func TestValidate_LLMGuardrailRequiresLLM(t *testing.T) {
	cfg := defaultConfig()
	cfg.Guardrail.Mode = "llm"

	if err := cfg.Validate(); err == nil {
		t.Error("llm guardrail without llm.enabled should fail validation")
	}
}

func TestValidate_OfflineDefaultsPass(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("offline defaults should validate: %v", err)
	}
}

func TestValidate_UnknownStore(t *testing.T) {
	cfg := defaultConfig()
	cfg.Retrieval.Store = "postgres"

	if err := cfg.Validate(); err == nil {
		t.Error("unknown store should fail validation")
	}
}
