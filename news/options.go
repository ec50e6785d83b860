package news

import "context"

type Option func(*Options)

type Options struct {
	Location string
	ApiKey   string
	Limit    int
	Context  context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithLimit(limit int) Option {
	return func(o *Options) {
		o.Limit = limit
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Location: "https://newsapi.org/v2/everything",
		Limit:    3,
		Context:  context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
