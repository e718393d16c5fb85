package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/compare/internal/domain/model"
)

// MemoryStore keeps history in process memory. It is lost on exit.
type MemoryStore struct {
	mu       sync.RWMutex
	songs    map[int]model.Song
	matches  []model.Match
	matchIDs map[string]struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		songs:    make(map[int]model.Song),
		matchIDs: make(map[string]struct{}),
	}
}

func (s *MemoryStore) Reset(_ context.Context) error {
	defer observe(BackendMemory, "reset", time.Now(), nil)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.songs = make(map[int]model.Song)
	s.matches = nil
	s.matchIDs = make(map[string]struct{})
	return nil
}

func (s *MemoryStore) SaveSongs(_ context.Context, songs []model.Song) error {
	defer observe(BackendMemory, "save_songs", time.Now(), nil)
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, song := range songs {
		s.songs[song.ID] = song
	}
	return nil
}

func (s *MemoryStore) LoadSongs(_ context.Context) ([]model.Song, error) {
	defer observe(BackendMemory, "load_songs", time.Now(), nil)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Song, 0, len(s.songs))
	for _, song := range s.songs {
		out = append(out, song)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) AppendMatch(_ context.Context, m model.Match) error {
	defer observe(BackendMemory, "append_match", time.Now(), nil)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matchIDs[m.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateMatch, m.ID)
	}
	s.matchIDs[m.ID] = struct{}{}
	s.matches = append(s.matches, m)
	return nil
}

func (s *MemoryStore) LoadMatches(_ context.Context) ([]model.Match, error) {
	defer observe(BackendMemory, "load_matches", time.Now(), nil)
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Match, len(s.matches))
	copy(out, s.matches)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
