// Package repository persists the song library and match history that a
// ranking session is rebuilt from.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/compare/internal/domain/model"
	"github.com/okian/compare/pkg/metrics"
)

// Backend names accepted by New.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Store is the durable history of a session.
type Store interface {
	// Reset drops every song and match, starting a new session.
	Reset(ctx context.Context) error
	// SaveSongs upserts songs by ID.
	SaveSongs(ctx context.Context, songs []model.Song) error
	// LoadSongs returns every song ordered by ascending ID.
	LoadSongs(ctx context.Context) ([]model.Song, error)
	// AppendMatch appends m to the history. A match whose ID was already
	// stored is left untouched and ErrDuplicateMatch is returned.
	AppendMatch(ctx context.Context, m model.Match) error
	// LoadMatches returns the history in the order it was appended.
	LoadMatches(ctx context.Context) ([]model.Match, error)
	Close() error
}

// observe records the latency of one store operation and counts it as a
// failure when err is non-nil. A duplicate append is not a failure.
func observe(backend, op string, start time.Time, err error) {
	metrics.RecordStoreOperation(backend, op, time.Since(start).Seconds())
	if err != nil && !errors.Is(err, ErrDuplicateMatch) {
		metrics.RecordStoreError(backend, op)
	}
}
