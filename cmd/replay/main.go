package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cheggaaa/pb/v3"

	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/orchestrator"
	"github.com/danielpatrickdp/motion-scan/internal/replay"
	"github.com/danielpatrickdp/motion-scan/internal/store"
)

// #region main

func main() {
	settings := config.LoadSettings()

	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	configPath := flag.String("config", settings.ConfigPath, "scoring document; empty uses built-in defaults")
	workers := flag.Int("workers", settings.Workers, "cases evaluated in parallel")
	save := flag.Bool("save", false, "persist every successful result in the SQLite store")
	dbPath := flag.String("db", settings.DBPath, "SQLite store path used with -save")
	quiet := flag.Bool("quiet", false, "no progress bar")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--workers N] [--save]")
		os.Exit(2)
	}
	os.Exit(run(*fixturePath, *configPath, *workers, *save, *dbPath, *quiet))
}

// #endregion main

// #region run

func run(fixturePath, configPath string, workers int, save bool, dbPath string, quiet bool) int {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}
	w, err := orchestrator.NewWorker(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc := replay.DefaultReplayConfig()
	if workers > 0 {
		rc.Workers = workers
	}
	var bar *pb.ProgressBar
	if !quiet {
		bar = pb.StartNew(len(f.Cases))
		rc.Progress = func() { bar.Increment() }
	}
	results, err := replay.Replay(ctx, w, f.Cases, rc)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	if save {
		if err := saveResults(ctx, dbPath, results); err != nil {
			fmt.Fprintf(os.Stderr, "save: %v\n", err)
			return 2
		}
	}
	return printComparison(f.Description, results)
}

func saveResults(ctx context.Context, dbPath string, results []replay.CaseResult) error {
	st, err := store.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if _, err := st.Save(r.Result); err != nil {
			return err
		}
	}
	return nil
}

// #endregion run

// #region output

// printComparison outputs a comparison table and returns the exit code.
func printComparison(description string, results []replay.CaseResult) int {
	if description != "" {
		fmt.Println(description)
	}
	fmt.Printf("%-24s| %-18s| %-6s| %-18s| %s\n", "Case", "Test", "Score", "Status", "Match")
	fmt.Printf("%-24s+%-19s+%-7s+%-19s+%s\n",
		"------------------------", "-------------------", "-------", "-------------------", "------")

	for _, r := range results {
		score, st := "-", "error:"+r.ErrorKind
		if r.Err == nil {
			score = fmt.Sprintf("%d/3", r.Result.Score)
			st = string(r.Result.Status)
		}
		match := "OK"
		if !r.Match {
			match = "DIFF (" + r.Reason + ")"
		}
		fmt.Printf("%-24s| %-18s| %-6s| %-18s| %s\n", truncate(r.Name, 24), r.TestType, score, st, match)
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d total, %d match, %d diverge, %d failed\n", s.Total, s.Matched, s.Mismatched, s.Failed)

	if s.Mismatched > 0 {
		return 1
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}

// #endregion output
