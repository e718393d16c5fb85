package repository

import "github.com/okian/compare/pkg/logger"

const defaultKeyPrefix = "compare"

type options struct {
	log       logger.Logger
	keyPrefix string
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithLogger sets the logger stores report through.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithKeyPrefix namespaces the keys a Redis store writes.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.keyPrefix = prefix
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{
		log:       logger.Get(),
		keyPrefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
