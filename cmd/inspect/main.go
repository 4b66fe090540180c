package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/logging"
	"github.com/danielpatrickdp/motion-scan/internal/orchestrator"
	"github.com/danielpatrickdp/motion-scan/internal/store"
)

// #region main

func main() {
	settings := config.LoadSettings()

	dbPath := flag.String("db", settings.DBPath, "path to the SQLite result store")
	last := flag.Int("last", 20, "show N most recent evaluations")
	id := flag.String("id", "", "show single evaluation detail")
	testType := flag.String("test", "", "filter list to one test type")
	video := flag.String("video", "", "filter list to one short video id")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/motionscan.db [--last N] [--id id] [--test type] [--video id] [--json]")
		os.Exit(2)
	}

	st, err := store.Open(context.Background(), *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *id != "" {
		err = runDetailMode(st, *id, *jsonOut)
	} else {
		err = runListMode(st, store.Filter{TestType: *testType, VideoID: *video, Limit: *last}, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	ID        string `json:"id"`
	VideoID   string `json:"video_id"`
	TestType  string `json:"test_type"`
	Score     int    `json:"score"`
	Status    string `json:"status"`
	Band      string `json:"band"`
	CreatedAt string `json:"created_at"`
}

func runListMode(st *store.Store, f store.Filter, jsonOut bool) error {
	recs, err := st.List(f)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(os.Stderr, "no evaluations found")
		return nil
	}

	rows := make([]listRow, len(recs))
	for i, r := range recs {
		rows[i] = listRow{
			ID:        r.ID,
			VideoID:   r.VideoID,
			TestType:  r.TestType,
			Score:     r.Score,
			Status:    r.Status,
			Band:      r.Band,
			CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-8s  %-12s  %-18s  %5s  %-17s  %-17s  %s\n",
		"ID", "Video", "Test", "Score", "Status", "Quality", "Time")
	fmt.Printf("%-8s+-%-12s+-%-18s+-%5s+-%-17s+-%-17s+-%s\n",
		"--------", "------------", "------------------", "-----", "-----------------", "-----------------", "--------------------")
	for _, r := range rows {
		fmt.Printf("%-8s  %-12s  %-18s  %3d/3  %-17s  %-17s  %s\n",
			shortID(r.ID), r.VideoID, r.TestType, r.Score, r.Status, r.Band, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	ID        string                 `json:"id"`
	CreatedAt string                 `json:"created_at"`
	Result    orchestrator.Result    `json:"result"`
	Logged    []logging.WarningEntry `json:"logged_warnings"`
}

func runDetailMode(st *store.Store, id string, jsonOut bool) error {
	rec, err := st.Get(id)
	if err != nil {
		return err
	}
	res, err := rec.Result()
	if err != nil {
		return err
	}
	logged, err := logging.ListWarnings(st.DB(), rec.ID)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(detailOutput{
			ID:        rec.ID,
			CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
			Result:    res,
			Logged:    logged,
		})
	}

	fmt.Printf("ID:      %s\n", rec.ID)
	fmt.Printf("Created: %s\n", rec.CreatedAt.Format("2006-01-02T15:04:05Z"))
	fmt.Print(orchestrator.Summary(res))
	fmt.Printf("Logged warnings: %d\n", len(logged))
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
