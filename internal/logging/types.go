package logging

import (
	"database/sql"
	"time"
)

// #region execer
// Execer is satisfied by both *sql.DB and *sql.Tx.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// #endregion execer

// #region warning-entry
// WarningEntry is a single row in the warning_log table.
type WarningEntry struct {
	EvaluationID string
	VideoID      string
	Level        string // "INFO" | "WARNING" | "ERROR"
	Code         string
	Keypoint     string
	Message      string
	DetailsJSON  string
	CreatedAt    time.Time
}

// #endregion warning-entry

// #region warnings-document
// WarningsDocument is the exported warnings file: every warning of a run,
// their counts and the thresholds that produced them.
type WarningsDocument struct {
	Warnings []WarningRecord `json:"warnings"`
	Summary  WarningsSummary `json:"summary"`
	Config   ConfigSummary   `json:"config_summary"`
}

// WarningRecord is a warning tagged with the evaluation it belongs to.
type WarningRecord struct {
	TestType string             `json:"test_type"`
	Level    string             `json:"level"`
	Code     string             `json:"code"`
	Message  string             `json:"message"`
	Video    string             `json:"video"`
	Keypoint string             `json:"keypoint,omitempty"`
	Details  map[string]float64 `json:"details,omitempty"`
}

// WarningsSummary counts warnings by level.
type WarningsSummary struct {
	Total   int            `json:"total"`
	ByLevel map[string]int `json:"by_level"`
	ByCode  map[string]int `json:"by_code"`
}

// ConfigSummary records the thresholds active for the run.
type ConfigSummary struct {
	ConfidenceMin      float64 `json:"confidence_min"`
	FrameSkipTolerance int     `json:"frame_skip_tolerance"`
	RandomSeed         int64   `json:"random_seed"`
}

// #endregion warnings-document
