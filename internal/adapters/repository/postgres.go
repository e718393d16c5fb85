package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/okian/compare/internal/domain/model"
	"github.com/okian/compare/pkg/logger"
)

// PgPool is the subset of *pgxpool.Pool the Postgres store needs.
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS song (
	id        INTEGER PRIMARY KEY,
	path      TEXT NOT NULL,
	title     TEXT NOT NULL,
	extension TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS matchup (
	seq           BIGSERIAL PRIMARY KEY,
	id            TEXT NOT NULL UNIQUE,
	winner_id     INTEGER NOT NULL,
	loser_id      INTEGER NOT NULL,
	winner_rating DOUBLE PRECISION NOT NULL,
	loser_rating  DOUBLE PRECISION NOT NULL,
	played_at     TIMESTAMPTZ NOT NULL
);`

const (
	resetSQL = `TRUNCATE matchup, song RESTART IDENTITY`

	saveSongsSQL = `
INSERT INTO song (id, path, title, extension)
SELECT * FROM unnest($1::int[], $2::text[], $3::text[], $4::text[])
ON CONFLICT (id) DO UPDATE
SET path = EXCLUDED.path, title = EXCLUDED.title, extension = EXCLUDED.extension`

	loadSongsSQL = `SELECT id, path, title, extension FROM song ORDER BY id`

	appendMatchSQL = `
INSERT INTO matchup (id, winner_id, loser_id, winner_rating, loser_rating, played_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING`

	loadMatchesSQL = `
SELECT id, winner_id, loser_id, winner_rating, loser_rating, played_at
FROM matchup ORDER BY seq`
)

// PostgresStore keeps history in the song and matchup tables.
type PostgresStore struct {
	pool  PgPool
	close func()
	log   logger.Logger
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to url, verifies the connection and creates the
// schema if needed.
func NewPostgresStore(ctx context.Context, url string, opts ...Option) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres: %w", ErrStoreUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: postgres ping: %w", ErrStoreUnavailable, err)
	}

	s := NewPostgresStoreWithPool(pool, opts...)
	s.close = pool.Close
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStoreWithPool wraps an existing pool. The caller owns the pool.
func NewPostgresStoreWithPool(pool PgPool, opts ...Option) *PostgresStore {
	o := applyOptions(opts)
	return &PostgresStore{
		pool:  pool,
		close: func() {},
		log:   o.log.Named("postgres_store"),
	}
}

// Migrate creates the tables when they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) (err error) {
	defer func(start time.Time) { observe(BackendPostgres, "migrate", start, err) }(time.Now())

	if _, err = s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("%w: migrate: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Reset(ctx context.Context) (err error) {
	defer func(start time.Time) { observe(BackendPostgres, "reset", start, err) }(time.Now())

	if _, err = s.pool.Exec(ctx, resetSQL); err != nil {
		return fmt.Errorf("%w: reset: %w", ErrStoreUnavailable, err)
	}
	s.log.Info(ctx, "session history reset")
	return nil
}

func (s *PostgresStore) SaveSongs(ctx context.Context, songs []model.Song) (err error) {
	defer func(start time.Time) { observe(BackendPostgres, "save_songs", start, err) }(time.Now())

	if len(songs) == 0 {
		return nil
	}
	ids := lo.Map(songs, func(s model.Song, _ int) int32 { return int32(s.ID) })
	paths := lo.Map(songs, func(s model.Song, _ int) string { return s.Path })
	titles := lo.Map(songs, func(s model.Song, _ int) string { return s.Title })
	exts := lo.Map(songs, func(s model.Song, _ int) string { return s.Extension })

	if _, err = s.pool.Exec(ctx, saveSongsSQL, ids, paths, titles, exts); err != nil {
		return fmt.Errorf("%w: save songs: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) LoadSongs(ctx context.Context) (_ []model.Song, err error) {
	defer func(start time.Time) { observe(BackendPostgres, "load_songs", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, loadSongsSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: load songs: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var songs []model.Song
	for rows.Next() {
		var (
			song model.Song
			id   int32
		)
		if err = rows.Scan(&id, &song.Path, &song.Title, &song.Extension); err != nil {
			return nil, fmt.Errorf("%w: song row: %w", ErrCorruptRecord, err)
		}
		song.ID = int(id)
		songs = append(songs, song)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load songs: %w", ErrStoreUnavailable, err)
	}
	return songs, nil
}

func (s *PostgresStore) AppendMatch(ctx context.Context, m model.Match) (err error) {
	defer func(start time.Time) { observe(BackendPostgres, "append_match", start, err) }(time.Now())

	tag, err := s.pool.Exec(ctx, appendMatchSQL,
		m.ID, int32(m.WinnerID), int32(m.LoserID), m.WinnerRating, m.LoserRating, m.PlayedAt)
	if err != nil {
		return fmt.Errorf("%w: append match: %w", ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateMatch, m.ID)
	}
	return nil
}

func (s *PostgresStore) LoadMatches(ctx context.Context) (_ []model.Match, err error) {
	defer func(start time.Time) { observe(BackendPostgres, "load_matches", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, loadMatchesSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: load matches: %w", ErrStoreUnavailable, err)
	}
	matches, err := pgx.CollectRows(rows, scanMatch)
	if err != nil {
		if errors.Is(err, ErrCorruptRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: load matches: %w", ErrStoreUnavailable, err)
	}
	return matches, nil
}

func scanMatch(row pgx.CollectableRow) (model.Match, error) {
	var (
		m             model.Match
		winner, loser int32
	)
	if err := row.Scan(&m.ID, &winner, &loser, &m.WinnerRating, &m.LoserRating, &m.PlayedAt); err != nil {
		return model.Match{}, fmt.Errorf("%w: match row: %w", ErrCorruptRecord, err)
	}
	m.WinnerID, m.LoserID = int(winner), int(loser)
	return m, nil
}

func (s *PostgresStore) Close() error {
	s.close()
	return nil
}
