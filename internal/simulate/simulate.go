// Package simulate measures how quickly the matchmaking engine recovers a
// hidden ordering when fed verdicts from a synthetic listener.
package simulate

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/okian/compare/internal/domain/matchmaking"
	"github.com/okian/compare/pkg/logger"
)

// Checkpoint is the engine's state after a number of comparisons.
type Checkpoint struct {
	Comparisons   int     `json:"comparisons"`
	KendallTau    float64 `json:"kendall_tau"`
	MeanCertainty float64 `json:"mean_certainty"`
}

// Report is the outcome of one run.
type Report struct {
	Seed        int64         `json:"seed"`
	Checkpoints []Checkpoint  `json:"checkpoints"`
	Duration    time.Duration `json:"duration"`
}

// Final returns the last checkpoint.
func (r Report) Final() Checkpoint {
	if len(r.Checkpoints) == 0 {
		return Checkpoint{}
	}
	return r.Checkpoints[len(r.Checkpoints)-1]
}

// Run plays cfg.Comparisons verdicts. The initial state is always reported
// as the first checkpoint and the final state as the last.
func Run(ctx context.Context, cfg Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	start := time.Now()
	log := logger.Named("simulate")

	opts := append([]matchmaking.Option{
		matchmaking.WithSeed(cfg.Seed),
		matchmaking.WithRelativeMatchupEpsilon(cfg.Epsilon),
	}, cfg.EngineOptions...)
	engine, err := matchmaking.New(opts...)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrEngine, err)
	}
	for i := 0; i < cfg.Songs; i++ {
		if err := engine.NewPlayer(matchmaking.PlayerID(i)); err != nil {
			return Report{}, fmt.Errorf("%w: %w", ErrEngine, err)
		}
	}

	listener := NewListener(cfg.Songs, cfg.Noise, rand.New(rand.NewSource(cfg.Seed))) //nolint:gosec // simulation
	report := Report{Seed: cfg.Seed}
	snapshot := func(n int) {
		cp := Checkpoint{
			Comparisons:   n,
			KendallTau:    listener.KendallTau(engine.Ranks()),
			MeanCertainty: lo.Sum(lo.Values(engine.RatingCertainties())) / float64(cfg.Songs),
		}
		report.Checkpoints = append(report.Checkpoints, cp)
		log.Debug(ctx, "checkpoint",
			logger.Int64("seed", cfg.Seed),
			logger.Int("comparisons", cp.Comparisons),
			logger.Float64("kendall_tau", cp.KendallTau),
			logger.Float64("mean_certainty", cp.MeanCertainty),
		)
	}

	snapshot(0)
	for n := 1; n <= cfg.Comparisons; n++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		a, b, err := engine.PickTwoPlayers()
		if err != nil {
			return report, fmt.Errorf("%w: %w", ErrEngine, err)
		}
		winner, loser := listener.Judge(a, b)
		if err := engine.Update(winner, loser); err != nil {
			return report, fmt.Errorf("%w: %w", ErrEngine, err)
		}
		if n == cfg.Comparisons || (cfg.Checkpoint > 0 && n%cfg.Checkpoint == 0) {
			snapshot(n)
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}

// RunMany runs the session once per seed cfg.Seed, cfg.Seed+1, ... in
// parallel. Reports are returned in seed order.
func RunMany(ctx context.Context, cfg Config, runs int) ([]Report, error) {
	if runs < 1 {
		return nil, fmt.Errorf("%w: runs must be >= 1, got %d", ErrInvalidConfig, runs)
	}
	reports := make([]Report, runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := 0; i < runs; i++ {
		c := cfg
		c.Seed = cfg.Seed + int64(i)
		g.Go(func() error {
			r, err := Run(gctx, c)
			if err != nil {
				return fmt.Errorf("seed %d: %w", c.Seed, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// MeanFinal averages the final checkpoints of reports.
func MeanFinal(reports []Report) Checkpoint {
	if len(reports) == 0 {
		return Checkpoint{}
	}
	finals := lo.Map(reports, func(r Report, _ int) Checkpoint { return r.Final() })
	n := float64(len(finals))
	return Checkpoint{
		Comparisons:   finals[0].Comparisons,
		KendallTau:    lo.SumBy(finals, func(c Checkpoint) float64 { return c.KendallTau }) / n,
		MeanCertainty: lo.SumBy(finals, func(c Checkpoint) float64 { return c.MeanCertainty }) / n,
	}
}
