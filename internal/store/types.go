package store

import "time"

// #region record
// Record is one stored evaluation. ResultJSON is the serialized
// orchestrator.Result exactly as produced; ID and CreatedAt are added here
// and never enter the result itself.
type Record struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"video_id"`
	TestType   string    `json:"test_type"`
	Score      int       `json:"score"`
	Status     string    `json:"status"`
	Band       string    `json:"band"`
	ResultJSON string    `json:"result_json"`
	CreatedAt  time.Time `json:"created_at"`
}

// #endregion record

// #region filter
// Filter narrows List. Zero values match everything; Limit 0 means no limit.
type Filter struct {
	TestType string
	VideoID  string
	Limit    int
}

// #endregion filter
