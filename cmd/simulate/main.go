package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/okian/compare/internal/simulate"
	"github.com/okian/compare/pkg/logger"
)

func main() {
	def := simulate.DefaultConfig()
	var (
		songs       = flag.Int("songs", def.Songs, "Number of songs in the pool")
		comparisons = flag.Int("comparisons", def.Comparisons, "Number of verdicts to submit")
		checkpoint  = flag.Int("checkpoint", def.Checkpoint, "Report every N verdicts (0 reports only the end)")
		noise       = flag.Float64("noise", def.Noise, "Listener noise; 0 means the stronger song always wins")
		seed        = flag.Int64("seed", def.Seed, "Seed of the first run")
		epsilon     = flag.Float64("epsilon", def.Epsilon, "Relative matchup epsilon")
		runs        = flag.Int("runs", 1, "Independent runs with consecutive seeds")
		baseURL     = flag.String("url", "", "Drive a running service at this base URL instead of a local engine")
		timeout     = flag.Duration("timeout", 10*time.Second, "HTTP request timeout in remote mode")
		asJSON      = flag.Bool("json", false, "Print reports as JSON")
		logLevel    = flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(*logLevel); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := simulate.Config{
		Songs:       *songs,
		Comparisons: *comparisons,
		Checkpoint:  *checkpoint,
		Noise:       *noise,
		Seed:        *seed,
		Epsilon:     *epsilon,
	}
	var (
		reports []simulate.Report
		err     error
	)
	if *baseURL != "" {
		var r simulate.Report
		r, err = simulate.RunRemote(ctx, simulate.NewClient(*baseURL, *timeout), cfg)
		reports = []simulate.Report{r}
	} else {
		reports, err = simulate.RunMany(ctx, cfg, *runs)
	}
	if err != nil {
		logger.Get().Error(ctx, "simulation failed", logger.Error(err))
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(reports)
		return
	}
	printReports(os.Stdout, reports)
}

func printReports(out io.Writer, reports []simulate.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, r := range reports {
		fmt.Fprintf(w, "seed %d (%s)\t\t\t\n", r.Seed, r.Duration)
		fmt.Fprintln(w, "comparisons\tkendall tau\tmean certainty\t")
		for _, cp := range r.Checkpoints {
			fmt.Fprintf(w, "%d\t%.3f\t%.3f\t\n", cp.Comparisons, cp.KendallTau, cp.MeanCertainty)
		}
		fmt.Fprintln(w, "\t\t\t")
	}
	if len(reports) > 1 {
		m := simulate.MeanFinal(reports)
		fmt.Fprintf(w, "mean of %d runs\t%.3f\t%.3f\t\n", len(reports), m.KendallTau, m.MeanCertainty)
	}
	_ = w.Flush()
}
