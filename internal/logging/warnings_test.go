package logging

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/quality"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	_, err = db.Exec(`CREATE TABLE warning_log (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		evaluation_id TEXT NOT NULL,
		video_id      TEXT NOT NULL,
		level         TEXT NOT NULL,
		code          TEXT NOT NULL,
		keypoint      TEXT,
		message       TEXT NOT NULL,
		details_json  TEXT,
		created_at    TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func sampleWarnings() []quality.Warning {
	return []quality.Warning{
		{Level: quality.LevelWarning, Code: quality.CodeFrameGap, Message: "5 consecutive frames without pose from frame 5",
			Video: "a1b2c3d4e5f6", Details: map[string]float64{"start": 5, "length": 5}},
		{Level: quality.LevelWarning, Code: quality.CodeLowConfidence, Message: "mean confidence 0.300 below 0.70",
			Video: "a1b2c3d4e5f6", Keypoint: landmark.LeftKnee},
	}
}

// #endregion helpers

// #region log-warnings-tests
func TestLogWarnings_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := LogWarnings(db, "eval-1", sampleWarnings(), at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := ListWarnings(db, "eval-1")
	if err != nil {
		t.Fatalf("ListWarnings: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(entries))
	}
	if entries[0].Code != quality.CodeFrameGap || entries[0].DetailsJSON == "" {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Keypoint != "left_knee" {
		t.Errorf("expected keypoint left_knee, got %q", entries[1].Keypoint)
	}
	if entries[1].DetailsJSON != "" {
		t.Errorf("expected no details, got %q", entries[1].DetailsJSON)
	}
	if !entries[0].CreatedAt.Equal(at) {
		t.Errorf("expected created_at %v, got %v", at, entries[0].CreatedAt)
	}
}

func TestLogWarnings_NullKeypoint(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	LogWarnings(db, "eval-2", sampleWarnings()[:1], time.Time{})

	var keypoint sql.NullString
	db.QueryRow("SELECT keypoint FROM warning_log WHERE evaluation_id = 'eval-2'").Scan(&keypoint)
	if keypoint.Valid {
		t.Errorf("expected NULL keypoint, got %q", keypoint.String)
	}
}

func TestListWarnings_MalformedTimestamp(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	LogWarnings(db, "eval-4", sampleWarnings()[:1], time.Time{})
	db.Exec(`UPDATE warning_log SET created_at = 'soon' WHERE evaluation_id = 'eval-4'`)

	if _, err := ListWarnings(db, "eval-4"); err == nil {
		t.Fatal("expected error for malformed created_at")
	}
}

func TestLogWarnings_MissingTable(t *testing.T) {
	db, _ := sql.Open("sqlite", ":memory:")
	defer db.Close()

	if err := LogWarnings(db, "eval-3", sampleWarnings(), time.Time{}); err == nil {
		t.Fatal("expected error without warning_log table")
	}
}

// #endregion log-warnings-tests

// #region warnings-file-tests
func TestBuildDocument(t *testing.T) {
	doc := BuildDocument(SummarizeConfig(config.Default()), "single_leg_squat", sampleWarnings())
	if doc.Summary.Total != 2 || doc.Summary.ByLevel["WARNING"] != 2 || doc.Summary.ByLevel["ERROR"] != 0 {
		t.Fatalf("unexpected summary %+v", doc.Summary)
	}
	if doc.Config.ConfidenceMin != 0.7 || doc.Config.RandomSeed != 42 {
		t.Errorf("unexpected config summary %+v", doc.Config)
	}
	if doc.Warnings[0].TestType != "single_leg_squat" {
		t.Errorf("expected test type on records, got %q", doc.Warnings[0].TestType)
	}
}

func TestWriteDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warnings.json")
	doc := BuildDocument(SummarizeConfig(config.Default()), "cross_step", nil)
	if err := WriteDocument(path, doc); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	data, _ := os.ReadFile(path)
	var back WarningsDocument
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Warnings == nil || len(back.Warnings) != 0 {
		t.Errorf("expected empty warnings list, got %v", back.Warnings)
	}
}

// #endregion warnings-file-tests
