package replay

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/orchestrator"
)

// #region types

// Error kinds a case can be expected to end in.
const (
	ErrorInput         = "input"
	ErrorConfiguration = "configuration"
)

// ReplayConfig controls a replay run.
type ReplayConfig struct {
	Workers  int    // concurrent cases; values below 1 mean 1
	Progress func() // called once per finished case, possibly from several goroutines
}

// DefaultReplayConfig returns a four-worker run without progress reporting.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{Workers: 4}
}

// CaseResult captures the outcome of replaying one fixture case.
type CaseResult struct {
	Name      string
	TestType  string
	Result    orchestrator.Result
	Err       error
	ErrorKind string // "" when Process succeeded
	Match     bool
	Reason    string
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	Total      int
	Matched    int
	Mismatched int
	Failed     int // cases whose Process call returned an error
	ByStatus   map[string]int
}

// #endregion types

// #region replay

// Replay runs every case through w with at most cfg.Workers in flight.
// Results keep the order of cases. A cancelled ctx stops scheduling new
// cases and is returned as the error.
func Replay(ctx context.Context, w *orchestrator.Worker, cases []FixtureCase, cfg ReplayConfig) ([]CaseResult, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	results := make([]CaseResult, len(cases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range cases {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = replayCase(w, c)
			if cfg.Progress != nil {
				cfg.Progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}

	s := Summarize(results)
	log.Printf("[REPLAY] %d cases: %d matched, %d mismatched, %d failed", s.Total, s.Matched, s.Mismatched, s.Failed)
	return results, nil
}

func replayCase(w *orchestrator.Worker, c FixtureCase) CaseResult {
	// 1. Process
	res, err := w.Process(c.Request())
	cr := CaseResult{Name: c.Name, TestType: c.TestType, Result: res, Err: err, ErrorKind: errorKind(err)}

	// 2. Compare against expectations
	cr.Match, cr.Reason = compare(c, cr)
	return cr
}

func errorKind(err error) string {
	if err == nil {
		return ""
	}
	var ie *landmark.InputError
	if errors.As(err, &ie) {
		return ErrorInput
	}
	var ce *config.ConfigurationError
	if errors.As(err, &ce) {
		return ErrorConfiguration
	}
	return "other"
}

func compare(c FixtureCase, cr CaseResult) (bool, string) {
	if c.ExpectedError != "" {
		if cr.ErrorKind != c.ExpectedError {
			return false, fmt.Sprintf("expected %s error, got %q", c.ExpectedError, cr.ErrorKind)
		}
		return true, "expected error"
	}
	if cr.Err != nil {
		return false, cr.Err.Error()
	}
	if c.ExpectedScore != nil && cr.Result.Score != *c.ExpectedScore {
		return false, fmt.Sprintf("score %d, expected %d", cr.Result.Score, *c.ExpectedScore)
	}
	if c.ExpectedStatus != "" && string(cr.Result.Status) != c.ExpectedStatus {
		return false, fmt.Sprintf("status %s, expected %s", cr.Result.Status, c.ExpectedStatus)
	}
	return true, "match"
}

// #endregion replay

// #region summarize

// Summarize computes aggregate stats from replay results.
func Summarize(results []CaseResult) ReplaySummary {
	s := ReplaySummary{Total: len(results), ByStatus: map[string]int{}}
	for _, r := range results {
		if r.Match {
			s.Matched++
		} else {
			s.Mismatched++
		}
		if r.Err != nil {
			s.Failed++
			continue
		}
		s.ByStatus[string(r.Result.Status)]++
	}
	return s
}

// #endregion summarize
