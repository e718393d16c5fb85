package api

import "github.com/okian/compare/pkg/logger"

const defaultMaxLimit = 1000

type options struct {
	log            logger.Logger
	maxLimit       int
	allowedOrigins []string
}

// Option configures the API server.
type Option func(*options)

// WithLogger sets the logger used for failed requests.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMaxLeaderboardLimit bounds the leaderboard limit parameter.
func WithMaxLeaderboardLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLimit = n
		}
	}
}

// WithAllowedOrigins sets the CORS origins allowed to call the API.
func WithAllowedOrigins(origins ...string) Option {
	return func(o *options) {
		o.allowedOrigins = origins
	}
}

func applyOptions(opts []Option) options {
	o := options{
		log:            logger.Named("api"),
		maxLimit:       defaultMaxLimit,
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
