package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"

	"github.com/okian/compare/internal/domain/model"
	"github.com/okian/compare/pkg/logger"
)

// RedisClient is the subset of *redis.Client the Redis store needs.
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	Close() error
}

// RedisStore keeps songs in a hash keyed by song ID and matches in a list in
// append order. A set of match IDs makes appends idempotent.
type RedisStore struct {
	client RedisClient
	log    logger.Logger

	songsKey    string
	matchesKey  string
	matchIDsKey string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int, opts ...Option) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping %s: %w", ErrStoreUnavailable, addr, err)
	}
	return NewRedisStoreWithClient(client, opts...), nil
}

// NewRedisStoreWithClient wraps an existing client. Close closes it.
func NewRedisStoreWithClient(client RedisClient, opts ...Option) *RedisStore {
	o := applyOptions(opts)
	return &RedisStore{
		client:      client,
		log:         o.log.Named("redis_store"),
		songsKey:    o.keyPrefix + ":songs",
		matchesKey:  o.keyPrefix + ":matches",
		matchIDsKey: o.keyPrefix + ":match_ids",
	}
}

func (s *RedisStore) Reset(ctx context.Context) (err error) {
	defer func(start time.Time) { observe(BackendRedis, "reset", start, err) }(time.Now())

	if err = s.client.Del(ctx, s.songsKey, s.matchesKey, s.matchIDsKey).Err(); err != nil {
		return fmt.Errorf("%w: reset: %w", ErrStoreUnavailable, err)
	}
	s.log.Info(ctx, "session history reset", logger.String("prefix", s.songsKey))
	return nil
}

func (s *RedisStore) SaveSongs(ctx context.Context, songs []model.Song) (err error) {
	defer func(start time.Time) { observe(BackendRedis, "save_songs", start, err) }(time.Now())

	if len(songs) == 0 {
		return nil
	}
	fields := make([]interface{}, 0, 2*len(songs))
	for _, song := range songs {
		raw, merr := json.Marshal(song)
		if merr != nil {
			return fmt.Errorf("encode song %d: %w", song.ID, merr)
		}
		fields = append(fields, strconv.Itoa(song.ID), string(raw))
	}
	if err = s.client.HSet(ctx, s.songsKey, fields...).Err(); err != nil {
		return fmt.Errorf("%w: save songs: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) LoadSongs(ctx context.Context) (_ []model.Song, err error) {
	defer func(start time.Time) { observe(BackendRedis, "load_songs", start, err) }(time.Now())

	raw, err := s.client.HGetAll(ctx, s.songsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: load songs: %w", ErrStoreUnavailable, err)
	}

	songs := make([]model.Song, 0, len(raw))
	for field, value := range raw {
		var song model.Song
		if err = json.Unmarshal([]byte(value), &song); err != nil {
			return nil, fmt.Errorf("%w: song %s: %w", ErrCorruptRecord, field, err)
		}
		songs = append(songs, song)
	}
	sort.Slice(songs, func(i, j int) bool { return songs[i].ID < songs[j].ID })
	return songs, nil
}

func (s *RedisStore) AppendMatch(ctx context.Context, m model.Match) (err error) {
	defer func(start time.Time) { observe(BackendRedis, "append_match", start, err) }(time.Now())

	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode match %s: %w", m.ID, err)
	}

	added, err := s.client.SAdd(ctx, s.matchIDsKey, m.ID).Result()
	if err != nil {
		return fmt.Errorf("%w: append match: %w", ErrStoreUnavailable, err)
	}
	if added == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateMatch, m.ID)
	}

	if err = s.client.RPush(ctx, s.matchesKey, string(raw)).Err(); err != nil {
		// Release the id so a retry is not mistaken for a duplicate.
		if rerr := s.client.SRem(ctx, s.matchIDsKey, m.ID).Err(); rerr != nil {
			s.log.Warn(ctx, "failed to release match id", logger.String("match_id", m.ID), logger.Error(rerr))
		}
		return fmt.Errorf("%w: append match: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) LoadMatches(ctx context.Context) (_ []model.Match, err error) {
	defer func(start time.Time) { observe(BackendRedis, "load_matches", start, err) }(time.Now())

	raw, err := s.client.LRange(ctx, s.matchesKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: load matches: %w", ErrStoreUnavailable, err)
	}

	matches := make([]model.Match, 0, len(raw))
	for i, value := range raw {
		var m model.Match
		if err = json.Unmarshal([]byte(value), &m); err != nil {
			return nil, fmt.Errorf("%w: match at %d: %w", ErrCorruptRecord, i, err)
		}
		matches = append(matches, m)
	}
	return lo.UniqBy(matches, func(m model.Match) string { return m.ID }), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
