package service

import (
	"github.com/okian/compare/internal/adapters/repository"
	"github.com/okian/compare/internal/domain/matchmaking"
	"github.com/okian/compare/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the history store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithEngineOptions sets the options every engine build uses.
func WithEngineOptions(opts ...matchmaking.Option) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithDedupeSize sets how many match IDs are remembered for idempotency.
// Zero remembers every ID; negative sizes are ignored.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithMusicFolder starts a new session from the files in dir instead of
// resuming the stored one.
func WithMusicFolder(dir string) Option {
	return func(s *Service) {
		s.musicFolder = dir
	}
}
