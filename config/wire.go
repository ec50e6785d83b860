package config

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/w-h-a/analyst"
	"github.com/w-h-a/analyst/dashboard"
	"github.com/w-h-a/analyst/embedder"
	azureembedder "github.com/w-h-a/analyst/embedder/azure"
	"github.com/w-h-a/analyst/generator"
	azuregenerator "github.com/w-h-a/analyst/generator/azure"
	googlegenerator "github.com/w-h-a/analyst/generator/google"
	"github.com/w-h-a/analyst/memory"
	"github.com/w-h-a/analyst/memory/providers/storer"
	"github.com/w-h-a/analyst/memory/providers/storer/chroma"
	"github.com/w-h-a/analyst/memory/providers/storer/postgres"
	"github.com/w-h-a/analyst/news"
	"github.com/w-h-a/analyst/planner"
	"github.com/w-h-a/analyst/telemetry/providers"
)

// Generators builds a backend per configured provider. A provider whose
// credentials are absent is skipped with a warning; the orchestrator rejects
// runs that request it.
func (c *Config) Generators(logger *zap.Logger) map[generator.Provider]generator.Generator {
	generators := map[generator.Provider]generator.Generator{}

	azure, err := azuregenerator.NewGenerator(
		generator.WithApiKey(c.OpenAIKey),
		generator.WithEndpoint(c.AzureEndpoint),
		generator.WithModel(c.AzureDeployment),
	)
	if err != nil {
		logger.Warn("azure openai generator unavailable", zap.Error(err))
	} else {
		generators[generator.ProviderAzureOpenAI] = azure
	}

	gemini, err := googlegenerator.NewGenerator(
		generator.WithApiKey(c.GeminiKey),
		generator.WithModel(c.GeminiModel),
	)
	if err != nil {
		logger.Warn("gemini generator unavailable", zap.Error(err))
	} else {
		generators[generator.ProviderGemini] = gemini
	}

	return generators
}

// Memory wires the embedder and the selected storer into the gateway. A
// missing embedding configuration yields a gateway that degrades to empty
// results instead of aborting the pipeline.
func (c *Config) Memory(logger *zap.Logger) *memory.Gateway {
	opts := []memory.Option{
		memory.WithLimit(c.MemoryLimit),
		memory.WithDeadline(c.MemoryDeadline),
		memory.WithLogger(logger),
	}

	emb, err := azureembedder.NewEmbedder(
		embedder.WithApiKey(c.OpenAIKey),
		embedder.WithEndpoint(c.AzureEndpoint),
		embedder.WithModel(c.AzureEmbeddingDeployment),
	)
	if err != nil {
		logger.Warn("embedder unavailable; memory disabled", zap.Error(err))
		return memory.New(opts...)
	}

	store, err := c.storer()
	if err != nil {
		logger.Warn("vector store unavailable; memory disabled", zap.Error(err))
		return memory.New(opts...)
	}

	opts = append(opts, memory.WithEmbedder(emb), memory.WithStorer(store))

	return memory.New(opts...)
}

func (c *Config) storer() (storer.Storer, error) {
	if c.MemoryBackend == "postgres" {
		return postgres.NewStorer(
			storer.WithLocation(c.MemoryLocation),
		)
	}
	return chroma.NewStorer(
		storer.WithLocation(c.MemoryLocation),
		storer.WithApiKey(c.MemoryApiKey),
	)
}

// Analyst assembles the orchestrator with live telemetry providers.
func (c *Config) Analyst(logger *zap.Logger) *analyst.Service {
	client := &http.Client{Timeout: 30 * time.Second}

	opts := []analyst.Option{
		analyst.WithPlanner(planner.New()),
		analyst.WithWeather(providers.NewOpenMeteoProvider(client)),
		analyst.WithSolar(providers.NewNasaPowerProvider(client)),
		analyst.WithMemory(c.Memory(logger)),
		analyst.WithDefaultCoords(&planner.Coords{
			Latitude:  c.HomeLatitude,
			Longitude: c.HomeLongitude,
		}),
		analyst.WithLogger(logger),
	}

	for provider, gen := range c.Generators(logger) {
		opts = append(opts, analyst.WithGenerator(provider, gen))
	}

	return analyst.New(opts...)
}

// News builds the news proxy collaborator.
func (c *Config) News() *news.Service {
	return news.New(
		news.WithApiKey(c.NewsApiKey),
	)
}

// Dashboard builds the cached live-snapshot service.
func (c *Config) Dashboard(logger *zap.Logger) *dashboard.Service {
	client := &http.Client{Timeout: 30 * time.Second}

	windowDays := 7
	if c.SnapshotWindow == "monthly" {
		windowDays = 30
	}

	return dashboard.New(
		dashboard.WithWeather(providers.NewOpenMeteoProvider(client)),
		dashboard.WithSolar(providers.NewNasaPowerProvider(client)),
		dashboard.WithCoords(planner.Coords{
			Latitude:  c.HomeLatitude,
			Longitude: c.HomeLongitude,
		}),
		dashboard.WithWindowDays(windowDays),
		dashboard.WithLogger(logger),
	)
}
