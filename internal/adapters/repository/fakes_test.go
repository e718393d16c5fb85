package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

// fakePool emulates the song and matchup tables for the statements the
// Postgres store issues.
type fakePool struct {
	songs   map[int32][]any
	matches [][]any
	ids     map[string]bool
	execs   []string

	failExec  error
	failQuery error
}

func newFakePool() *fakePool {
	return &fakePool{songs: make(map[int32][]any), ids: make(map[string]bool)}
}

func (p *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if p.failExec != nil {
		return pgconn.CommandTag{}, p.failExec
	}
	sql = strings.TrimSpace(sql)
	p.execs = append(p.execs, sql)

	switch {
	case strings.HasPrefix(sql, "CREATE TABLE"):
		return pgconn.NewCommandTag("CREATE TABLE"), nil
	case strings.HasPrefix(sql, "TRUNCATE"):
		p.songs = make(map[int32][]any)
		p.matches = nil
		p.ids = make(map[string]bool)
		return pgconn.NewCommandTag("TRUNCATE TABLE"), nil
	case strings.HasPrefix(sql, "INSERT INTO song"):
		ids := args[0].([]int32)
		paths, titles, exts := args[1].([]string), args[2].([]string), args[3].([]string)
		for i, id := range ids {
			p.songs[id] = []any{id, paths[i], titles[i], exts[i]}
		}
		return pgconn.NewCommandTag(fmt.Sprintf("INSERT 0 %d", len(ids))), nil
	case strings.HasPrefix(sql, "INSERT INTO matchup"):
		id := args[0].(string)
		if p.ids[id] {
			return pgconn.NewCommandTag("INSERT 0 0"), nil
		}
		p.ids[id] = true
		p.matches = append(p.matches, args)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("unexpected exec: %s", sql)
}

func (p *fakePool) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	if p.failQuery != nil {
		return nil, p.failQuery
	}
	sql = strings.TrimSpace(sql)
	switch {
	case strings.HasPrefix(sql, "SELECT id, path"):
		keys := make([]int, 0, len(p.songs))
		for id := range p.songs {
			keys = append(keys, int(id))
		}
		sort.Ints(keys)
		rows := make([][]any, 0, len(keys))
		for _, id := range keys {
			rows = append(rows, p.songs[int32(id)])
		}
		return &fakeRows{rows: rows}, nil
	case strings.HasPrefix(sql, "SELECT id, winner_id"):
		return &fakeRows{rows: p.matches}, nil
	}
	return nil, fmt.Errorf("unexpected query: %s", sql)
}

func (p *fakePool) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return fakeRow{err: errors.New("not supported")}
}

type fakeRow struct{ err error }

func (r fakeRow) Scan(...any) error { return r.err }

// fakeRows serves pre-built rows and copies values into typed destinations.
type fakeRows struct {
	rows [][]any
	pos  int
	cur  []any
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.cur, nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.cur = r.rows[r.pos]
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	if len(dest) != len(r.cur) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(r.cur))
	}
	for i, d := range dest {
		switch v := d.(type) {
		case *int32:
			n, ok := r.cur[i].(int32)
			if !ok {
				return fmt.Errorf("column %d is %T, not int32", i, r.cur[i])
			}
			*v = n
		case *string:
			s, ok := r.cur[i].(string)
			if !ok {
				return fmt.Errorf("column %d is %T, not string", i, r.cur[i])
			}
			*v = s
		case *float64:
			f, ok := r.cur[i].(float64)
			if !ok {
				return fmt.Errorf("column %d is %T, not float64", i, r.cur[i])
			}
			*v = f
		case *time.Time:
			ts, ok := r.cur[i].(time.Time)
			if !ok {
				return fmt.Errorf("column %d is %T, not time", i, r.cur[i])
			}
			*v = ts
		default:
			return fmt.Errorf("unsupported destination %T", d)
		}
	}
	return nil
}

// fakeRedis keeps hashes, sets and lists in maps. Commands return
// pre-resolved results built with go-redis' result constructors.
type fakeRedis struct {
	hashes map[string]map[string]string
	sets   map[string]map[string]bool
	lists  map[string][]string
	closed bool

	failRPush error
	failAll   error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		hashes: make(map[string]map[string]string),
		sets:   make(map[string]map[string]bool),
		lists:  make(map[string][]string),
	}
}

func (f *fakeRedis) Ping(_ context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", f.failAll)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if f.failAll != nil {
		return redis.NewIntResult(0, f.failAll)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.hashes[k]; ok {
			n++
		}
		if _, ok := f.sets[k]; ok {
			n++
		}
		if _, ok := f.lists[k]; ok {
			n++
		}
		delete(f.hashes, k)
		delete(f.sets, k)
		delete(f.lists, k)
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) HSet(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	if f.failAll != nil {
		return redis.NewIntResult(0, f.failAll)
	}
	h, ok := f.hashes[key]
	if !ok {
		h = make(map[string]string)
		f.hashes[key] = h
	}
	var added int64
	for i := 0; i+1 < len(values); i += 2 {
		field := fmt.Sprint(values[i])
		if _, exists := h[field]; !exists {
			added++
		}
		h[field] = fmt.Sprint(values[i+1])
	}
	return redis.NewIntResult(added, nil)
}

func (f *fakeRedis) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	if f.failAll != nil {
		return redis.NewMapStringStringResult(nil, f.failAll)
	}
	out := make(map[string]string, len(f.hashes[key]))
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (f *fakeRedis) SAdd(_ context.Context, key string, members ...interface{}) *redis.IntCmd {
	if f.failAll != nil {
		return redis.NewIntResult(0, f.failAll)
	}
	s, ok := f.sets[key]
	if !ok {
		s = make(map[string]bool)
		f.sets[key] = s
	}
	var added int64
	for _, m := range members {
		k := fmt.Sprint(m)
		if !s[k] {
			s[k] = true
			added++
		}
	}
	return redis.NewIntResult(added, nil)
}

func (f *fakeRedis) SRem(_ context.Context, key string, members ...interface{}) *redis.IntCmd {
	var removed int64
	for _, m := range members {
		k := fmt.Sprint(m)
		if f.sets[key][k] {
			delete(f.sets[key], k)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func (f *fakeRedis) RPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	if f.failRPush != nil {
		return redis.NewIntResult(0, f.failRPush)
	}
	for _, v := range values {
		f.lists[key] = append(f.lists[key], fmt.Sprint(v))
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeRedis) LRange(_ context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	if f.failAll != nil {
		return redis.NewStringSliceResult(nil, f.failAll)
	}
	list := f.lists[key]
	if stop < 0 {
		stop = int64(len(list)) + stop
	}
	if start >= int64(len(list)) || start > stop {
		return redis.NewStringSliceResult([]string{}, nil)
	}
	out := append([]string(nil), list[start:stop+1]...)
	return redis.NewStringSliceResult(out, nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}
