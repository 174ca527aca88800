package storage

import (
	"context"
	"time"
)

// Publish attempt outcomes.
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Entry is one recorded publish attempt.
type Entry struct {
	ID         int64
	Title      string
	SourcePath string
	ParentID   string
	PageID     string
	URL        string
	Total      int
	Delivered  int
	Status     string
	Error      string
	CreatedAt  time.Time
}

// HistoryStore persists publish attempts.
type HistoryStore interface {
	// Record appends an entry and returns its id.
	Record(ctx context.Context, e Entry) (int64, error)

	// Recent lists the newest entries first.
	Recent(ctx context.Context, limit int) ([]Entry, error)

	Close() error
}
