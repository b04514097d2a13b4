// Package report defines the exported-artifact aggregate: a rendered run
// report stored in object storage plus its catalog row.
package report

import (
	"context"
	"time"
)

// Format identifies a rendering of a run report.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// Extension returns the file extension for a format.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	default:
		return "json"
	}
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatCSV, FormatMarkdown:
		return true
	}
	return false
}

// Report is the catalog entry for one exported artifact.
type Report struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Format    Format    `json:"format"`
	Bucket    string    `json:"bucket"`
	ObjectKey string    `json:"object_key"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository catalogs report artifacts.
type Repository interface {
	Create(ctx context.Context, rep *Report) error
	GetByID(ctx context.Context, id string) (*Report, error)
	ListByRun(ctx context.Context, runID string) ([]*Report, error)
}
