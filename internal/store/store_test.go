package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/motion-scan/internal/evaluator"
	"github.com/danielpatrickdp/motion-scan/internal/logging"
	"github.com/danielpatrickdp/motion-scan/internal/optional"
	"github.com/danielpatrickdp/motion-scan/internal/orchestrator"
	"github.com/danielpatrickdp/motion-scan/internal/quality"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(testType string, score int) orchestrator.Result {
	return orchestrator.Result{
		Video:    "a1b2c3d4e5f6",
		TestType: testType,
		Score:    score,
		Status:   evaluator.StatusComplete,
		Metrics: []evaluator.Metric{{
			Name:           "knee_flexion",
			Values:         []optional.Float{optional.Some(90), optional.None()},
			Representative: optional.Some(90),
			Score:          score,
			Detail:         "knee_flexion: 90.0° -> 3/3",
		}},
		Quality:  quality.Assessment{Band: quality.BandPoor, DetectionRate: 0.5},
		Stages:   []orchestrator.Stage{orchestrator.StageInit, orchestrator.StageDone},
		Warnings: []quality.Warning{{Level: quality.LevelWarning, Code: quality.CodeLowDetection, Message: "poor", Video: "a1b2c3d4e5f6"}},
	}
}

func TestOpenMigratesTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s.Close()
	s, err = Open(context.Background(), path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s.Close()
}

func TestSaveAndGet(t *testing.T) {
	s := openStore(t)

	rec, err := s.Save(sampleResult("single_leg_squat", 3))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", rec)
	}

	got, err := s.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Score != 3 || got.Band != "poor" || got.Status != "complete" || got.VideoID != "a1b2c3d4e5f6" {
		t.Fatalf("unexpected record %+v", got)
	}

	res, err := got.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if res.Metrics[0].Values[1].Defined() {
		t.Error("absent value must survive the round trip as absent")
	}
	if v, _ := res.Metrics[0].Representative.Get(); v != 90 {
		t.Errorf("expected representative 90, got %v", v)
	}
}

func TestSaveLogsWarnings(t *testing.T) {
	s := openStore(t)
	rec, _ := s.Save(sampleResult("cross_step", 1))

	entries, err := logging.ListWarnings(s.DB(), rec.ID)
	if err != nil {
		t.Fatalf("ListWarnings: %v", err)
	}
	if len(entries) != 1 || entries[0].Code != quality.CodeLowDetection {
		t.Fatalf("expected one low detection warning, got %+v", entries)
	}
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)
	if _, err := s.Get("nope"); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestGetMalformedTimestamp(t *testing.T) {
	s := openStore(t)
	rec, _ := s.Save(sampleResult("cross_step", 1))
	if _, err := s.DB().Exec(`UPDATE evaluations SET created_at = 'yesterday' WHERE id = ?`, rec.ID); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := s.Get(rec.ID); err == nil {
		t.Fatal("expected error for malformed created_at")
	}
	if _, err := s.List(Filter{}); err == nil {
		t.Fatal("expected List to report malformed created_at")
	}
}

func TestListFilter(t *testing.T) {
	s := openStore(t)
	s.Save(sampleResult("cross_step", 1))
	s.Save(sampleResult("cross_step", 2))
	s.Save(sampleResult("push_pull", 3))

	all, err := s.List(Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}

	cs, _ := s.List(Filter{TestType: "cross_step"})
	if len(cs) != 2 {
		t.Fatalf("expected 2 cross_step records, got %d", len(cs))
	}

	one, _ := s.List(Filter{Limit: 1})
	if len(one) != 1 {
		t.Fatalf("expected limit 1, got %d", len(one))
	}
}
