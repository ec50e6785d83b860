package memory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/w-h-a/analyst/embedder"
	"github.com/w-h-a/analyst/memory/providers/storer"
)

type Option func(*Options)

type Options struct {
	Embedder embedder.Embedder
	Storer   storer.Storer
	Limit    int
	Deadline time.Duration
	Logger   *zap.Logger
	Context  context.Context
}

func WithEmbedder(embedder embedder.Embedder) Option {
	return func(o *Options) {
		o.Embedder = embedder
	}
}

func WithStorer(storer storer.Storer) Option {
	return func(o *Options) {
		o.Storer = storer
	}
}

func WithLimit(limit int) Option {
	return func(o *Options) {
		o.Limit = limit
	}
}

func WithDeadline(deadline time.Duration) Option {
	return func(o *Options) {
		o.Deadline = deadline
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Limit:    5,
		Deadline: 15 * time.Second,
		Logger:   zap.NewNop(),
		Context:  context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
