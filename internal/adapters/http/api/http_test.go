package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/compare/internal/adapters/http/api"
	service "github.com/okian/compare/internal/app"
	"github.com/okian/compare/internal/domain/matchmaking"
	"github.com/okian/compare/internal/domain/model"
	"github.com/okian/compare/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies lets each test override only what it exercises.
type mockDependencies struct {
	NextMatchupFunc func(ctx context.Context) (types.Matchup, error)
	RecordMatchFunc func(ctx context.Context, v types.Verdict) (types.MatchResult, error)
	AddSongFunc     func(ctx context.Context, req types.NewSong) (model.Song, error)
	SongsFunc       func(ctx context.Context) []model.Song
	LeaderboardFunc func(ctx context.Context, limit int) ([]types.Standing, error)
	StandingFunc    func(ctx context.Context, songID int) (types.Standing, error)
	ReloadFunc      func(ctx context.Context) error
}

func (m *mockDependencies) NextMatchup(ctx context.Context) (types.Matchup, error) {
	if m.NextMatchupFunc != nil {
		return m.NextMatchupFunc(ctx)
	}
	return types.Matchup{}, nil
}

func (m *mockDependencies) RecordMatch(ctx context.Context, v types.Verdict) (types.MatchResult, error) {
	if m.RecordMatchFunc != nil {
		return m.RecordMatchFunc(ctx, v)
	}
	return types.MatchResult{}, nil
}

func (m *mockDependencies) AddSong(ctx context.Context, req types.NewSong) (model.Song, error) {
	if m.AddSongFunc != nil {
		return m.AddSongFunc(ctx, req)
	}
	return model.Song{}, nil
}

func (m *mockDependencies) Songs(ctx context.Context) []model.Song {
	if m.SongsFunc != nil {
		return m.SongsFunc(ctx)
	}
	return nil
}

func (m *mockDependencies) Leaderboard(ctx context.Context, limit int) ([]types.Standing, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(ctx, limit)
	}
	return nil, nil
}

func (m *mockDependencies) Standing(ctx context.Context, songID int) (types.Standing, error) {
	if m.StandingFunc != nil {
		return m.StandingFunc(ctx, songID)
	}
	return types.Standing{}, nil
}

func (m *mockDependencies) Reload(ctx context.Context) error {
	if m.ReloadFunc != nil {
		return m.ReloadFunc(ctx)
	}
	return nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var out map[string]string
	_ = json.NewDecoder(w.Body).Decode(&out)
	return out
}

func TestServer_Routes(t *testing.T) {
	Convey("Given an API server", t, func() {
		deps := &mockDependencies{}
		stats := &mockStatsProvider{stats: map[string]interface{}{"songs": 3}}
		h := api.NewServer(deps, stats, api.WithMaxLeaderboardLimit(50)).Routes()

		Convey("Health answers ok", func() {
			w := serve(h, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Metrics are exposed from the custom registry", func() {
			serve(h, http.MethodGet, "/healthz", "")
			w := serve(h, http.MethodGet, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "http_requests_total")
		})

		Convey("Stats are passed through", func() {
			w := serve(h, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"songs":3`)
		})

		Convey("The OpenAPI document is served", func() {
			w := serve(h, http.MethodGet, "/openapi.yaml", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/yaml")
			So(w.Body.String(), ShouldContainSubstring, "/matchup")
		})

		Convey("Unknown paths are 404", func() {
			w := serve(h, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Wrong methods are 405", func() {
			w := serve(h, http.MethodDelete, "/songs", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestServer_CORS(t *testing.T) {
	Convey("Given a server allowing one origin", t, func() {
		h := api.NewServer(&mockDependencies{}, &mockStatsProvider{},
			api.WithAllowedOrigins("http://localhost:5173")).Routes()

		Convey("An allowed origin is echoed", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("Origin", "http://localhost:5173")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://localhost:5173")
		})

		Convey("Another origin is not", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("Origin", "http://evil.example")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
		})
	})
}

func TestMatchupHandler(t *testing.T) {
	Convey("Given a matchup endpoint", t, func() {
		deps := &mockDependencies{}
		h := api.NewServer(deps, &mockStatsProvider{}).Routes()

		Convey("A proposed pair is returned", func() {
			deps.NextMatchupFunc = func(context.Context) (types.Matchup, error) {
				return types.Matchup{
					A: model.Song{ID: 1, Title: "a", Extension: ".mp3"},
					B: model.Song{ID: 2, Title: "b", Extension: ".mp3"},
				}, nil
			}
			w := serve(h, http.MethodGet, "/matchup", "")
			So(w.Code, ShouldEqual, http.StatusOK)

			var m types.Matchup
			So(json.NewDecoder(w.Body).Decode(&m), ShouldBeNil)
			So(m.A.ID, ShouldEqual, 1)
			So(m.B.ID, ShouldEqual, 2)
		})

		Convey("Fewer than two songs is a conflict", func() {
			deps.NextMatchupFunc = func(context.Context) (types.Matchup, error) {
				return types.Matchup{}, matchmaking.ErrInsufficientPlayers
			}
			w := serve(h, http.MethodGet, "/matchup", "")
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(decodeError(w)["code"], ShouldEqual, "insufficient_players")
		})

		Convey("A stopped service is unavailable", func() {
			deps.NextMatchupFunc = func(context.Context) (types.Matchup, error) {
				return types.Matchup{}, service.ErrNotStarted
			}
			w := serve(h, http.MethodGet, "/matchup", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestMatchesHandler(t *testing.T) {
	Convey("Given a matches endpoint", t, func() {
		var got types.Verdict
		deps := &mockDependencies{
			RecordMatchFunc: func(_ context.Context, v types.Verdict) (types.MatchResult, error) {
				got = v
				return types.MatchResult{Match: model.Match{ID: "m1", WinnerID: v.WinnerID, LoserID: v.LoserID}}, nil
			},
		}
		h := api.NewServer(deps, &mockStatsProvider{}).Routes()

		Convey("A recorded verdict is 201", func() {
			w := serve(h, http.MethodPost, "/matches", `{"match_id":"m1","winner_id":0,"loser_id":4}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(got, ShouldResemble, types.Verdict{MatchID: "m1", WinnerID: 0, LoserID: 4})

			var res types.MatchResult
			So(json.NewDecoder(w.Body).Decode(&res), ShouldBeNil)
			So(res.Match.ID, ShouldEqual, "m1")
		})

		Convey("A duplicate is 200", func() {
			deps.RecordMatchFunc = func(_ context.Context, v types.Verdict) (types.MatchResult, error) {
				return types.MatchResult{Duplicate: true}, nil
			}
			w := serve(h, http.MethodPost, "/matches", `{"match_id":"m1","winner_id":1,"loser_id":2}`)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Self-play is 200", func() {
			deps.RecordMatchFunc = func(_ context.Context, v types.Verdict) (types.MatchResult, error) {
				return types.MatchResult{SelfPlay: true}, nil
			}
			w := serve(h, http.MethodPost, "/matches", `{"winner_id":1,"loser_id":1}`)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Malformed bodies are 400", func() {
			for _, body := range []string{
				`{invalid`,
				`{"winner_id":-1,"loser_id":2}`,
				`{"winner_id":1,"loser_id":2,"extra":true}`,
			} {
				w := serve(h, http.MethodPost, "/matches", body)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			}
		})

		Convey("Unknown songs are 404", func() {
			deps.RecordMatchFunc = func(context.Context, types.Verdict) (types.MatchResult, error) {
				return types.MatchResult{}, fmt.Errorf("%w: song 9", matchmaking.ErrNotFound)
			}
			w := serve(h, http.MethodPost, "/matches", `{"winner_id":9,"loser_id":2}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Store failures are 500", func() {
			deps.RecordMatchFunc = func(context.Context, types.Verdict) (types.MatchResult, error) {
				return types.MatchResult{}, errors.New("connection refused")
			}
			w := serve(h, http.MethodPost, "/matches", `{"winner_id":1,"loser_id":2}`)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decodeError(w)["code"], ShouldEqual, "internal_error")
		})
	})
}

func TestSongsHandler(t *testing.T) {
	Convey("Given a songs endpoint", t, func() {
		deps := &mockDependencies{
			SongsFunc: func(context.Context) []model.Song {
				return []model.Song{{ID: 0, Title: "a", Extension: ".mp3"}, {ID: 1, Title: "b", Extension: ".ogg"}}
			},
			AddSongFunc: func(_ context.Context, req types.NewSong) (model.Song, error) {
				return model.Song{ID: 2, Path: req.Path, Title: req.Title, Extension: req.Extension}, nil
			},
		}
		h := api.NewServer(deps, &mockStatsProvider{}).Routes()

		Convey("Listing returns every song", func() {
			w := serve(h, http.MethodGet, "/songs", "")
			So(w.Code, ShouldEqual, http.StatusOK)

			var songs []model.Song
			So(json.NewDecoder(w.Body).Decode(&songs), ShouldBeNil)
			So(len(songs), ShouldEqual, 2)
		})

		Convey("Adding a song is 201", func() {
			w := serve(h, http.MethodPost, "/songs", `{"path":"/m/c.flac","title":"c","extension":".flac"}`)
			So(w.Code, ShouldEqual, http.StatusCreated)

			var song model.Song
			So(json.NewDecoder(w.Body).Decode(&song), ShouldBeNil)
			So(song.ID, ShouldEqual, 2)
			So(song.Title, ShouldEqual, "c")
		})

		Convey("A song without title is 400", func() {
			w := serve(h, http.MethodPost, "/songs", `{"path":"/m/c.flac","extension":".flac"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An extension without dot is 400", func() {
			w := serve(h, http.MethodPost, "/songs", `{"title":"c","extension":"flac"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestLeaderboardHandler(t *testing.T) {
	Convey("Given a leaderboard endpoint bounded to 50", t, func() {
		var gotLimit int
		deps := &mockDependencies{
			LeaderboardFunc: func(_ context.Context, limit int) ([]types.Standing, error) {
				gotLimit = limit
				return []types.Standing{{Rank: 1, Song: model.Song{ID: 3}, Rating: 12.5, Certainty: 0.4}}, nil
			},
		}
		h := api.NewServer(deps, &mockStatsProvider{}, api.WithMaxLeaderboardLimit(50)).Routes()

		Convey("An explicit limit is passed through", func() {
			w := serve(h, http.MethodGet, "/leaderboard?limit=10", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(gotLimit, ShouldEqual, 10)

			var standings []types.Standing
			So(json.NewDecoder(w.Body).Decode(&standings), ShouldBeNil)
			So(standings[0].Song.ID, ShouldEqual, 3)
		})

		Convey("A missing limit uses the maximum", func() {
			w := serve(h, http.MethodGet, "/leaderboard", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(gotLimit, ShouldEqual, 50)
		})

		Convey("Invalid limits are 400", func() {
			for _, q := range []string{"abc", "0", "-3"} {
				w := serve(h, http.MethodGet, "/leaderboard?limit="+q, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("A limit over the maximum is 400", func() {
			w := serve(h, http.MethodGet, "/leaderboard?limit=51", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "limit_exceeded")
		})
	})
}

func TestRankHandler(t *testing.T) {
	Convey("Given a rank endpoint", t, func() {
		deps := &mockDependencies{
			StandingFunc: func(_ context.Context, id int) (types.Standing, error) {
				if id != 7 {
					return types.Standing{}, matchmaking.ErrNotFound
				}
				return types.Standing{Rank: 2, Song: model.Song{ID: 7}}, nil
			},
		}
		h := api.NewServer(deps, &mockStatsProvider{}).Routes()

		Convey("A known song returns its standing", func() {
			w := serve(h, http.MethodGet, "/rank/7", "")
			So(w.Code, ShouldEqual, http.StatusOK)

			var st types.Standing
			So(json.NewDecoder(w.Body).Decode(&st), ShouldBeNil)
			So(st.Rank, ShouldEqual, 2)
		})

		Convey("An unknown song is 404", func() {
			w := serve(h, http.MethodGet, "/rank/8", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w)["code"], ShouldEqual, "not_found")
		})

		Convey("A non-numeric id is 400", func() {
			w := serve(h, http.MethodGet, "/rank/abc", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestAdminHandler(t *testing.T) {
	Convey("Given a reload endpoint", t, func() {
		calls := 0
		deps := &mockDependencies{
			ReloadFunc: func(context.Context) error {
				calls++
				return nil
			},
		}
		h := api.NewServer(deps, &mockStatsProvider{}).Routes()

		Convey("Reload rebuilds the service", func() {
			w := serve(h, http.MethodPost, "/admin/reload", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(calls, ShouldEqual, 1)
		})

		Convey("Replay failures are 500", func() {
			deps.ReloadFunc = func(context.Context) error { return service.ErrReplay }
			w := serve(h, http.MethodPost, "/admin/reload", "")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}
