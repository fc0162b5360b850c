package models

import "github.com/smoketrack/smoketrack/internal/domain"

// LogRequest is the POST /logs payload. Triggers are free-text labels; the
// UI offers a preset vocabulary but any string is accepted, and repeated
// labels each count toward trigger frequency.
type LogRequest struct {
	Triggers []string `json:"triggers"`
}

// LogResponse is returned by POST /logs.
type LogResponse struct {
	ID int64 `json:"id"`
}

// LogListResponse is returned by GET /logs.
type LogListResponse struct {
	Logs []domain.EventWithTriggers `json:"logs"`
}
