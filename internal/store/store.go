package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/motion-scan/internal/logging"
	"github.com/danielpatrickdp/motion-scan/internal/orchestrator"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout has a fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region store-struct
// Store persists evaluation results in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// Open opens a SQLite database and applies pending migrations.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, sub)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	for _, r := range results {
		log.Printf("[STORE] applied migration %s (%s)", r.Source.Path, r.Duration)
	}
	return nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion close

// #region save
// Save stores res and its warnings atomically under a fresh id.
func (s *Store) Save(res orchestrator.Result) (Record, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return Record{}, fmt.Errorf("marshal result: %w", err)
	}
	rec := Record{
		ID:         uuid.New().String(),
		VideoID:    res.Video,
		TestType:   res.TestType,
		Score:      res.Score,
		Status:     string(res.Status),
		Band:       string(res.Quality.Band),
		ResultJSON: string(data),
		CreatedAt:  time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Record{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO evaluations (id, video_id, test_type, score, status, band, result_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.VideoID, rec.TestType, rec.Score, rec.Status, rec.Band, rec.ResultJSON,
		rec.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert evaluation: %w", err)
	}
	if err := logging.LogWarnings(tx, rec.ID, res.Warnings, rec.CreatedAt); err != nil {
		return Record{}, err
	}
	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("commit: %w", err)
	}

	log.Printf("[STORE] saved evaluation %s video=%s test=%s score=%d", rec.ID, rec.VideoID, rec.TestType, rec.Score)
	return rec, nil
}

// #endregion save

// #region get
// Get retrieves a stored evaluation by id.
func (s *Store) Get(id string) (Record, error) {
	row := s.db.QueryRow(
		`SELECT id, video_id, test_type, score, status, band, result_json, created_at
		 FROM evaluations WHERE id = ?`, id,
	)
	rec, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("get evaluation %s: %w", id, err)
	}
	return rec, nil
}

// Result decodes the stored result of rec.
func (r Record) Result() (orchestrator.Result, error) {
	var res orchestrator.Result
	if err := json.Unmarshal([]byte(r.ResultJSON), &res); err != nil {
		return orchestrator.Result{}, fmt.Errorf("unmarshal result %s: %w", r.ID, err)
	}
	return res, nil
}

// #endregion get

// #region list
// List returns stored evaluations, newest first.
func (s *Store) List(f Filter) ([]Record, error) {
	var where []string
	var args []any
	if f.TestType != "" {
		where = append(where, "test_type = ?")
		args = append(args, f.TestType)
	}
	if f.VideoID != "" {
		where = append(where, "video_id = ?")
		args = append(args, f.VideoID)
	}

	q := `SELECT id, video_id, test_type, score, status, band, result_json, created_at FROM evaluations`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// #endregion list

// #region helpers
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var rec Record
	var created string
	if err := sc.Scan(&rec.ID, &rec.VideoID, &rec.TestType, &rec.Score, &rec.Status, &rec.Band, &rec.ResultJSON, &created); err != nil {
		return Record{}, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at of %s: %w", rec.ID, err)
	}
	rec.CreatedAt = t
	return rec, nil
}

// #endregion helpers
