// Package service runs one ranking session: it owns the matchmaking engine,
// serializes access to it, persists every verdict and rebuilds the engine
// from stored history on start.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/okian/compare/internal/adapters/repository"
	"github.com/okian/compare/internal/domain/dedupe"
	"github.com/okian/compare/internal/domain/library"
	"github.com/okian/compare/internal/domain/matchmaking"
	"github.com/okian/compare/internal/domain/model"
	"github.com/okian/compare/internal/domain/types"
	"github.com/okian/compare/pkg/logger"
	"github.com/okian/compare/pkg/metrics"
)

const defaultDedupeSize = 50000

// Service implements the API dependencies for a ranking session.
type Service struct {
	// mu guards the engine and the song index. The engine itself is not
	// safe for concurrent use, so reads take the write lock too.
	mu sync.Mutex

	engine  *matchmaking.Engine
	songs   map[int]model.Song
	matches int
	store   repository.Store
	deduper dedupe.Deduper

	engineOpts  []matchmaking.Option
	dedupeSize  int
	musicFolder string

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dedupeSize: defaultDedupeSize,
		songs:      make(map[int]model.Song),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start builds the engine. With a music folder it starts a new session from
// the folder, replacing stored history; otherwise it resumes the stored one.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.musicFolder != "" {
		if err := s.startNewSession(ctx); err != nil {
			return err
		}
	} else if err := s.reload(ctx); err != nil {
		return err
	}

	s.started = true
	s.logger.Info(ctx, "ranking service started",
		logger.Int("songs", len(s.songs)),
		logger.Int("matches", s.matches),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

func (s *Service) startNewSession(ctx context.Context) error {
	songs, err := library.Scan(ctx, s.musicFolder)
	if err != nil {
		return fmt.Errorf("scan music folder: %w", err)
	}
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	if err := s.store.SaveSongs(ctx, songs); err != nil {
		return fmt.Errorf("save songs: %w", err)
	}
	s.logger.Info(ctx, "new session from music folder",
		logger.String("folder", s.musicFolder),
		logger.Int("songs", len(songs)),
	)
	return s.build(ctx, songs, nil)
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(context.Background(), "failed to close store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "ranking service stopped")
}

// Reload discards the engine and rebuilds it from the store.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	return s.reload(ctx)
}

func (s *Service) reload(ctx context.Context) error {
	songs, err := s.store.LoadSongs(ctx)
	if err != nil {
		return fmt.Errorf("load songs: %w", err)
	}
	matches, err := s.store.LoadMatches(ctx)
	if err != nil {
		return fmt.Errorf("load matches: %w", err)
	}
	return s.build(ctx, songs, matches)
}

// build replays songs then matches into a fresh engine and swaps it in only
// when the whole history applied. Must be called with s.mu held.
func (s *Service) build(ctx context.Context, songs []model.Song, matches []model.Match) error {
	start := time.Now()
	engine, err := matchmaking.New(s.engineOpts...)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	index := make(map[int]model.Song, len(songs))
	for _, song := range songs {
		if err := engine.NewPlayer(matchmaking.PlayerID(song.ID)); err != nil {
			return fmt.Errorf("%w: song %d: %w", ErrReplay, song.ID, err)
		}
		index[song.ID] = song
	}
	for _, m := range matches {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrReplay, err)
		}
		if err := engine.Update(matchmaking.PlayerID(m.WinnerID), matchmaking.PlayerID(m.LoserID)); err != nil {
			return fmt.Errorf("%w: match %s: %w", ErrReplay, m.ID, err)
		}
	}

	s.deduper.Reset(ctx)
	for _, m := range matches {
		s.deduper.SeenAndRecord(ctx, m.ID)
	}
	s.engine = engine
	s.songs = index
	s.matches = len(matches)

	metrics.RecordReplayedMatches(len(matches))
	s.updateGauges()
	s.logger.Info(ctx, "engine rebuilt from history",
		logger.Int("songs", len(songs)),
		logger.Int("matches", len(matches)),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// NextMatchup proposes the two songs the listener should compare next.
func (s *Service) NextMatchup(ctx context.Context) (types.Matchup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return types.Matchup{}, ErrNotStarted
	}

	start := time.Now()
	m, candidates, err := s.engine.PickMatchup()
	if err != nil {
		return types.Matchup{}, err
	}
	metrics.RecordMatchupLatency(time.Since(start).Seconds())
	metrics.RecordMatchupCandidates(candidates)
	metrics.RecordMatchupServed()

	s.logger.Debug(ctx, "matchup proposed",
		logger.Int("a", int(m.A)),
		logger.Int("b", int(m.B)),
		logger.Float64("ev", m.EV),
		logger.Int("candidates", candidates),
	)
	return types.Matchup{A: s.songs[int(m.A)], B: s.songs[int(m.B)]}, nil
}

// RecordMatch applies a verdict. Resubmitting a match ID is reported as a
// duplicate and changes nothing; self-play is accepted and ignored.
func (s *Service) RecordMatch(ctx context.Context, v types.Verdict) (types.MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return types.MatchResult{}, ErrNotStarted
	}

	m := model.Match{ID: v.MatchID, WinnerID: v.WinnerID, LoserID: v.LoserID}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := m.Validate(); err != nil {
		return types.MatchResult{}, err
	}
	for _, id := range []int{v.WinnerID, v.LoserID} {
		if _, ok := s.songs[id]; !ok {
			return types.MatchResult{}, fmt.Errorf("%w: song %d", matchmaking.ErrNotFound, id)
		}
	}

	if m.SelfPlay() {
		metrics.RecordMatch(metrics.OutcomeSelfPlay)
		return types.MatchResult{Match: m, SelfPlay: true}, nil
	}
	if s.deduper.SeenAndRecord(ctx, m.ID) {
		metrics.RecordMatch(metrics.OutcomeDuplicate)
		s.logger.Debug(ctx, "duplicate match ignored", logger.String("match_id", m.ID))
		return types.MatchResult{Match: m, Duplicate: true}, nil
	}

	winner, loser := matchmaking.PlayerID(m.WinnerID), matchmaking.PlayerID(m.LoserID)
	wr, lr, err := s.engine.PreviewUpdate(winner, loser)
	if err != nil {
		s.deduper.Unrecord(ctx, m.ID)
		return types.MatchResult{}, err
	}
	stored := m
	stored.WinnerRating, stored.LoserRating = wr, lr
	stored.PlayedAt = time.Now().UTC()

	err = s.store.AppendMatch(ctx, stored)
	if errors.Is(err, repository.ErrDuplicateMatch) {
		// Evicted from the deduper but already stored.
		metrics.RecordMatch(metrics.OutcomeDuplicate)
		s.logger.Debug(ctx, "duplicate match ignored by store", logger.String("match_id", m.ID))
		return types.MatchResult{Match: m, Duplicate: true}, nil
	}
	if err != nil {
		s.deduper.Unrecord(ctx, m.ID)
		s.logger.Error(ctx, "failed to persist match",
			logger.String("match_id", m.ID),
			logger.Error(err),
		)
		return types.MatchResult{}, fmt.Errorf("persist match %s: %w", m.ID, err)
	}
	if err := s.engine.Update(winner, loser); err != nil {
		// Unreachable: both ids were previewed above.
		return types.MatchResult{}, err
	}
	s.matches++
	m = stored

	metrics.RecordMatch(metrics.OutcomeRecorded)
	s.updateGauges()
	s.logger.Info(ctx, "match recorded",
		logger.String("match_id", m.ID),
		logger.Int("winner", m.WinnerID),
		logger.Int("loser", m.LoserID),
	)
	return types.MatchResult{Match: m}, nil
}

// AddSong registers a new song under the next free ID.
func (s *Service) AddSong(ctx context.Context, req types.NewSong) (model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return model.Song{}, ErrNotStarted
	}

	next := 0
	if len(s.songs) > 0 {
		next = lo.Max(lo.Keys(s.songs)) + 1
	}
	song := model.Song{ID: next, Path: req.Path, Title: req.Title, Extension: req.Extension}
	if err := song.Validate(); err != nil {
		return model.Song{}, err
	}

	if err := s.store.SaveSongs(ctx, []model.Song{song}); err != nil {
		return model.Song{}, fmt.Errorf("persist song: %w", err)
	}
	if err := s.engine.NewPlayer(matchmaking.PlayerID(song.ID)); err != nil {
		return model.Song{}, err
	}
	s.songs[song.ID] = song
	s.updateGauges()

	s.logger.Info(ctx, "song added", logger.Int("id", song.ID), logger.String("title", song.Title))
	return song, nil
}

// Leaderboard returns standings ordered by rank. limit <= 0 returns all.
func (s *Service) Leaderboard(_ context.Context, limit int) ([]types.Standing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrNotStarted
	}

	ranks := s.engine.Ranks()
	certs := s.engine.RatingCertainties()
	out := make([]types.Standing, 0, len(ranks))
	for id, rank := range ranks {
		r, err := s.engine.OverallRating(id)
		if err != nil {
			return nil, err
		}
		out = append(out, types.Standing{
			Rank:      rank,
			Song:      s.songs[int(id)],
			Rating:    r,
			Certainty: certs[id],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// Standing returns one song's standing.
func (s *Service) Standing(_ context.Context, songID int) (types.Standing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return types.Standing{}, ErrNotStarted
	}

	id := matchmaking.PlayerID(songID)
	r, err := s.engine.OverallRating(id)
	if err != nil {
		return types.Standing{}, err
	}
	return types.Standing{
		Rank:      s.engine.Ranks()[id],
		Song:      s.songs[songID],
		Rating:    r,
		Certainty: s.engine.RatingCertainties()[id],
	}, nil
}

// Songs returns every song ordered by ID.
func (s *Service) Songs(_ context.Context) []model.Song {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := lo.Values(s.songs)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]interface{}{
		"started":    s.started,
		"songs":      len(s.songs),
		"matches":    s.matches,
		"dedupeSize": s.dedupeSize,
		"dedupeSeen": s.deduper.Size(),
	}
	if s.started {
		stats["meanCertainty"] = s.meanCertainty()
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	metrics.UpdateSystemMemoryUsage(mem.HeapAlloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	return stats
}

// meanCertainty must be called with s.mu held.
func (s *Service) meanCertainty() float64 {
	certs := lo.Values(s.engine.RatingCertainties())
	if len(certs) == 0 {
		return 0
	}
	return lo.Sum(certs) / float64(len(certs))
}

// updateGauges must be called with s.mu held.
func (s *Service) updateGauges() {
	metrics.UpdatePoolSize(s.engine.Size())
	metrics.UpdateMeanCertainty(s.meanCertainty())
}
