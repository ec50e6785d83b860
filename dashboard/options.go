package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/w-h-a/analyst/planner"
)

type Option func(*Options)

type Options struct {
	Weather    WeatherProvider
	Solar      SolarProvider
	Coords     planner.Coords
	WindowDays int
	Logger     *zap.Logger
	Now        func() time.Time
	Context    context.Context
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

func WithCoords(coords planner.Coords) Option {
	return func(o *Options) {
		o.Coords = coords
	}
}

// WithWindowDays sets the solar lookback window (7 for weekly, 30 for
// monthly).
func WithWindowDays(days int) Option {
	return func(o *Options) {
		o.WindowDays = days
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Coords:     planner.Coords{Latitude: 37.7749, Longitude: -122.4194},
		WindowDays: 7,
		Logger:     zap.NewNop(),
		Now:        time.Now,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
