package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Niso4ever/agentic-dispatch-go/internal/adapters/embedding"
	"github.com/Niso4ever/agentic-dispatch-go/internal/adapters/forecast"
	"github.com/Niso4ever/agentic-dispatch-go/internal/adapters/guardrail"
	"github.com/Niso4ever/agentic-dispatch-go/internal/adapters/llm"
	"github.com/Niso4ever/agentic-dispatch-go/internal/adapters/loader"
	"github.com/Niso4ever/agentic-dispatch-go/internal/adapters/solver"
	"github.com/Niso4ever/agentic-dispatch-go/internal/adapters/vectordb"
	"github.com/Niso4ever/agentic-dispatch-go/internal/config"
	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/entities"
	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/ports"
	"github.com/Niso4ever/agentic-dispatch-go/internal/domain/usecases"
)

// app bundles the wired pipeline shared by the serve, ingest and ask
// commands.
type app struct {
	cfg      *config.AppConfig
	dispatch *usecases.DispatchUseCase
	ingest   *usecases.IngestUseCase
	weather  *forecast.OpenWeatherClient // nil unless the weather provider is configured
	noteExts []string                    // loader extensions, drives the file watcher
	closers  []func() error
}

func (a *app) close() {
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
}

// loadConfig reads .env credentials, loads the YAML config and fails fast
// when a selected provider is missing its key.
func loadConfig() (*config.AppConfig, error) {
	// A missing .env file is fine, env vars may be set externally.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildApp assembles adapters and usecases from the validated config.
func buildApp(cfg *config.AppConfig) (*app, error) {
	a := &app{cfg: cfg}

	var embedder ports.EmbeddingService
	switch cfg.Embedder.Type {
	case "hashing":
		embedder = embedding.NewHashingAdapter(cfg.Embedder.Dimension)
	case "openai":
		oa, err := embedding.NewOpenAIAdapter(embedding.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("embedder: %w", err)
		}
		embedder = oa
	default:
		return nil, fmt.Errorf("unknown embedder type %q", cfg.Embedder.Type)
	}

	var store ports.VectorStore
	switch cfg.Retrieval.Store {
	case "sqlite":
		s, err := vectordb.NewSQLiteStore(cfg.Retrieval.DataPath)
		if err != nil {
			return nil, fmt.Errorf("vector store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		store = s
	case "memory":
		store = vectordb.NewInMemoryStore()
	}

	var forecaster ports.Forecaster
	switch cfg.Forecast.Provider {
	case "stub":
		forecaster = forecast.NewStubForecaster()
	case "naive":
		forecaster = forecast.NewNaiveForecaster(cfg.Forecast.HistoryMW)
	case "weather":
		w := cfg.Forecast.Weather
		a.weather = forecast.NewOpenWeatherClient(w.BaseURL, os.Getenv(w.APIKeyEnv))
		forecaster = forecast.NewWeatherForecaster(a.weather, w.Location, 0)
	default:
		return nil, fmt.Errorf("unknown forecast provider %q", cfg.Forecast.Provider)
	}

	var llmSvc ports.LLMService
	if cfg.LLM.Enabled {
		adapter, err := llm.NewOpenAIAdapter(llm.Config{
			BaseURL:   cfg.LLM.BaseURL,
			APIKeyEnv: cfg.LLM.APIKeyEnv,
			Model:     cfg.LLM.Model,
			Timeout:   time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("llm: %w", err)
		}
		llmSvc = adapter
	}

	var gate ports.RelevanceGate
	switch cfg.Guardrail.Mode {
	case "keyword":
		gate = guardrail.NewKeywordGate(cfg.Guardrail.ExtraTerms...)
	case "llm":
		gate = guardrail.NewLLMGate(llmSvc)
	default:
		return nil, fmt.Errorf("unknown guardrail mode %q", cfg.Guardrail.Mode)
	}

	a.dispatch = usecases.NewDispatchUseCase(
		gate,
		forecaster,
		embedder,
		store,
		solver.NewGreedySolver(),
		llmSvc,
		cfg.Retrieval.TopK,
	)
	a.dispatch.SetDefaultPlant(entities.PlantMeta{
		SoC:            cfg.Plant.SoC,
		CapacityMWh:    cfg.Plant.CapacityMWh,
		MaxChargeMW:    cfg.Plant.MaxChargeMW,
		MaxDischargeMW: cfg.Plant.MaxDischargeMW,
	})
	notes := loader.NewMultiLoader()
	a.noteExts = notes.SupportedExtensions()
	a.ingest = usecases.NewIngestUseCase(
		notes,
		embedder,
		store,
		cfg.Retrieval.ChunkSize,
		cfg.Retrieval.ChunkOverlap,
	)
	return a, nil
}
