package models

import "time"

// RefreshRun records one execution of the refresh operation.
type RefreshRun struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Mode       string    `json:"mode"`        // replace | drop
	Fetched    int       `json:"fetched"`     // measurements returned by the upstream API
	Inserted   int       `json:"inserted"`    // rows written to the records table
	UpstreamOK bool      `json:"upstream_ok"` // false when the fetch was swallowed as "no data"
	DurationMS int64     `json:"duration_ms"`
}

// TableName for the refresh history.
func (RefreshRun) TableName() string {
	return "refresh_runs"
}
