package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/okian/compare/internal/domain/matchmaking"
	"github.com/okian/compare/internal/domain/model"
	"github.com/okian/compare/internal/domain/types"
	"github.com/okian/compare/pkg/logger"
)

// RunRemote drives a running service through its HTTP API instead of a
// local engine. cfg.Songs is replaced by the service's song count and
// cfg.Epsilon and cfg.EngineOptions are ignored. Every verdict carries a
// fresh match ID so reruns against the same service keep adding history.
func RunRemote(ctx context.Context, c *Client, cfg Config) (Report, error) {
	start := time.Now()
	log := logger.Named("simulate")

	if err := c.Health(ctx); err != nil {
		return Report{}, fmt.Errorf("service health check failed: %w", err)
	}
	songs, err := c.Songs(ctx)
	if err != nil {
		return Report{}, err
	}
	cfg.Songs = len(songs)
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}

	ids := lo.Map(songs, func(s model.Song, _ int) matchmaking.PlayerID { return matchmaking.PlayerID(s.ID) })
	listener := NewListenerFor(ids, cfg.Noise, rand.New(rand.NewSource(cfg.Seed))) //nolint:gosec // simulation
	report := Report{Seed: cfg.Seed}

	snapshot := func(n int) error {
		standings, err := standingsOf(ctx, c, ids)
		if err != nil {
			return err
		}
		ranks := make(map[matchmaking.PlayerID]int, len(standings))
		for _, st := range standings {
			ranks[matchmaking.PlayerID(st.Song.ID)] = st.Rank
		}
		cp := Checkpoint{
			Comparisons:   n,
			KendallTau:    listener.KendallTau(ranks),
			MeanCertainty: lo.SumBy(standings, func(st types.Standing) float64 { return st.Certainty }) / float64(len(standings)),
		}
		report.Checkpoints = append(report.Checkpoints, cp)
		log.Info(ctx, "checkpoint",
			logger.Int("comparisons", cp.Comparisons),
			logger.Float64("kendall_tau", cp.KendallTau),
			logger.Float64("mean_certainty", cp.MeanCertainty),
		)
		return nil
	}

	if err := snapshot(0); err != nil {
		return report, err
	}
	for n := 1; n <= cfg.Comparisons; n++ {
		m, err := c.Matchup(ctx)
		if err != nil {
			return report, err
		}
		winner, loser := listener.Judge(matchmaking.PlayerID(m.A.ID), matchmaking.PlayerID(m.B.ID))
		if _, err := c.Submit(ctx, types.Verdict{
			MatchID:  uuid.NewString(),
			WinnerID: int(winner),
			LoserID:  int(loser),
		}); err != nil {
			return report, err
		}
		if n == cfg.Comparisons || (cfg.Checkpoint > 0 && n%cfg.Checkpoint == 0) {
			if err := snapshot(n); err != nil {
				return report, err
			}
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}

// standingsOf returns a standing for every id. The leaderboard is capped by
// the server's max_leaderboard_limit; songs past the cap are read one by one.
func standingsOf(ctx context.Context, c *Client, ids []matchmaking.PlayerID) ([]types.Standing, error) {
	standings, err := c.Leaderboard(ctx, 0)
	if err != nil {
		return nil, err
	}
	if len(standings) >= len(ids) {
		return standings, nil
	}
	seen := lo.SliceToMap(standings, func(st types.Standing) (int, struct{}) { return st.Song.ID, struct{}{} })
	for _, id := range ids {
		if _, ok := seen[int(id)]; ok {
			continue
		}
		st, err := c.Rank(ctx, int(id))
		if err != nil {
			return nil, err
		}
		standings = append(standings, st)
	}
	return standings, nil
}
