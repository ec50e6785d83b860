package config

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds every credential, endpoint, and knob the pipeline needs. It is
// parsed once at startup and passed into constructors explicitly; nothing in
// the pipeline reads ambient state.
type Config struct {
	Address   string `help:"Address for the HTTP server" default:":8080"`
	LogLevel  string `help:"Log level (debug, info, warn, error)" default:"info"`
	LogFormat string `help:"Log format (json or console)" default:"json"`

	// Azure OpenAI (chat + embeddings)
	OpenAIKey                string `help:"Azure OpenAI API key" env:"OPENAI_API_KEY" default:""`
	AzureEndpoint            string `help:"Azure OpenAI resource endpoint" env:"AZURE_ENDPOINT" default:""`
	AzureDeployment          string `help:"Azure OpenAI chat deployment" env:"AZURE_DEPLOYMENT" default:"gpt-4o-mini"`
	AzureEmbeddingDeployment string `help:"Azure OpenAI embedding deployment" env:"AZURE_EMBEDDING_DEPLOYMENT" default:""`

	// Gemini
	GeminiKey   string `help:"Gemini API key" env:"GEMINI_API_KEY" default:""`
	GeminiModel string `help:"Gemini model identifier" env:"GEMINI_MODEL" default:"gemini-1.5-flash"`

	// Vector memory
	MemoryBackend  string        `help:"Vector memory backend (chroma or postgres)" env:"MEMORY_BACKEND" default:"chroma" enum:"chroma,postgres"`
	MemoryLocation string        `help:"Memory service base URL or postgres connection string" env:"MEMORY_LOCATION" default:""`
	MemoryApiKey   string        `help:"Memory service API key" env:"MEMORY_API_KEY" default:""`
	MemoryLimit    int           `help:"Nearest neighbors returned per recall" default:"5"`
	MemoryDeadline time.Duration `help:"Hard deadline on memory store round trips" default:"15s"`

	// News collaborator
	NewsApiKey string `help:"News API key" env:"NEWS_API_KEY" default:""`

	// Last-known coordinates and dashboard snapshot
	HomeLatitude     float64       `help:"Fallback latitude when a query has no coordinates" env:"HOME_LATITUDE" default:"37.7749"`
	HomeLongitude    float64       `help:"Fallback longitude when a query has no coordinates" env:"HOME_LONGITUDE" default:"-122.4194"`
	SnapshotWindow   string        `help:"Solar window for the dashboard snapshot (weekly or monthly)" default:"weekly" enum:"weekly,monthly"`
	SnapshotInterval time.Duration `help:"Dashboard snapshot refresh interval" default:"15m"`
}

// NewLogger builds the process logger from the configured level and format.
func NewLogger(levelStr, format string) *zap.Logger {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, _ := cfg.Build()
	return logger
}
