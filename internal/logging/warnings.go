package logging

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/quality"
)

// #region log-warnings
// LogWarnings writes the warnings of one evaluation to the warning_log table.
func LogWarnings(db Execer, evaluationID string, warnings []quality.Warning, at time.Time) error {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	for _, w := range warnings {
		var details string
		if len(w.Details) > 0 {
			b, err := json.Marshal(w.Details)
			if err != nil {
				return fmt.Errorf("marshal warning details: %w", err)
			}
			details = string(b)
		}
		_, err := db.Exec(
			`INSERT INTO warning_log (evaluation_id, video_id, level, code, keypoint, message, details_json, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			evaluationID,
			w.Video,
			string(w.Level),
			w.Code,
			nullIfEmpty(string(w.Keypoint)),
			w.Message,
			nullIfEmpty(details),
			at.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("log warning: %w", err)
		}
	}
	return nil
}

// #endregion log-warnings

// #region list-warnings
// ListWarnings reads back the warnings logged for one evaluation, in the
// order they were written.
func ListWarnings(db *sql.DB, evaluationID string) ([]WarningEntry, error) {
	rows, err := db.Query(
		`SELECT evaluation_id, video_id, level, code, keypoint, message, details_json, created_at
		 FROM warning_log WHERE evaluation_id = ? ORDER BY id`, evaluationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list warnings: %w", err)
	}
	defer rows.Close()

	var out []WarningEntry
	for rows.Next() {
		var e WarningEntry
		var keypoint, details sql.NullString
		var created string
		if err := rows.Scan(&e.EvaluationID, &e.VideoID, &e.Level, &e.Code, &keypoint, &e.Message, &details, &created); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		e.Keypoint = keypoint.String
		e.DetailsJSON = details.String
		at, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse warning created_at: %w", err)
		}
		e.CreatedAt = at
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion list-warnings

// #region warnings-file
// SummarizeConfig extracts the thresholds recorded in a warnings file.
func SummarizeConfig(cfg *config.Config) ConfigSummary {
	return ConfigSummary{
		ConfidenceMin:      cfg.ConfidenceMin,
		FrameSkipTolerance: cfg.FrameSkipTolerance,
		RandomSeed:         cfg.RandomSeed,
	}
}

// BuildDocument assembles the exported warnings file for a run. summary
// describes the configuration that produced the warnings.
func BuildDocument(summary ConfigSummary, testType string, warnings []quality.Warning) WarningsDocument {
	doc := WarningsDocument{
		Warnings: make([]WarningRecord, 0, len(warnings)),
		Config:   summary,
	}
	for _, w := range warnings {
		doc.Warnings = append(doc.Warnings, WarningRecord{
			TestType: testType,
			Level:    string(w.Level),
			Code:     w.Code,
			Message:  w.Message,
			Video:    w.Video,
			Keypoint: string(w.Keypoint),
			Details:  w.Details,
		})
	}

	s := quality.Summarize(warnings)
	doc.Summary = WarningsSummary{Total: s.Total, ByLevel: map[string]int{}, ByCode: s.ByCode}
	for level, n := range s.ByLevel {
		doc.Summary.ByLevel[string(level)] = n
	}
	return doc
}

// WriteDocument writes doc as indented JSON to path.
func WriteDocument(path string, doc WarningsDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write warnings: %w", err)
	}
	return nil
}

// #endregion warnings-file

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
