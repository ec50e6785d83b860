package analyst

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/w-h-a/analyst/generator"
	"github.com/w-h-a/analyst/memory"
	"github.com/w-h-a/analyst/planner"
	"github.com/w-h-a/analyst/telemetry"
	"github.com/w-h-a/analyst/telemetry/providers"
)

// WeatherProvider fetches the hourly surface-weather series for a coordinate
// and hyphenated date range.
type WeatherProvider interface {
	FetchHourly(ctx context.Context, lat, lon float64, startDate, endDate string) (providers.SurfaceWeather, error)
}

// SolarProvider fetches the daily solar series for a coordinate and compact
// yyyymmdd date range.
type SolarProvider interface {
	FetchSolar(ctx context.Context, lat, lon float64, start, end string) (telemetry.Series, error)
}

type Option func(*Options)

type Options struct {
	Generators    map[generator.Provider]generator.Generator
	Planner       *planner.Planner
	Weather       WeatherProvider
	Solar         SolarProvider
	Memory        *memory.Gateway
	DefaultCoords *planner.Coords
	Logger        *zap.Logger
	Now           func() time.Time
	Context       context.Context
}

func WithGenerator(provider generator.Provider, gen generator.Generator) Option {
	return func(o *Options) {
		o.Generators[provider] = gen
	}
}

func WithPlanner(p *planner.Planner) Option {
	return func(o *Options) {
		o.Planner = p
	}
}

func WithWeather(w WeatherProvider) Option {
	return func(o *Options) {
		o.Weather = w
	}
}

func WithSolar(s SolarProvider) Option {
	return func(o *Options) {
		o.Solar = s
	}
}

func WithMemory(m *memory.Gateway) Option {
	return func(o *Options) {
		o.Memory = m
	}
}

// WithDefaultCoords sets the last-known-location fallback used when a query
// carries no explicit coordinates.
func WithDefaultCoords(coords *planner.Coords) Option {
	return func(o *Options) {
		o.DefaultCoords = coords
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Generators: map[generator.Provider]generator.Generator{},
		Planner:    planner.New(),
		Memory:     memory.New(),
		Logger:     zap.NewNop(),
		Now:        time.Now,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
