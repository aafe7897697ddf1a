// Package store archives analysis reports.
//
// Reports are keyed by their deterministic id, so storing the same analysis
// twice replaces the earlier copy. Two backends are provided:
//   - [MemoryStore]: in-process, for tests and single-instance servers
//   - [MongoStore]: MongoDB collection, for shared deployments
package store

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/vxgraph/pkg/report"
)

// ErrNotFound is returned when no report has the requested id.
var ErrNotFound = errors.New("report not found")

// DefaultListLimit bounds [Store.List] when no limit is given.
const DefaultListLimit = 50

// Summary describes a stored report without its body.
type Summary struct {
	ID           string    `json:"report_id" bson:"_id"`
	Document     string    `json:"document" bson:"document"`
	DocumentHash string    `json:"document_hash" bson:"document_hash"`
	VXVersion    string    `json:"vx_version" bson:"vx_version"`
	Errors       int       `json:"errors" bson:"errors"`
	Warnings     int       `json:"warnings" bson:"warnings"`
	StoredAt     time.Time `json:"stored_at" bson:"stored_at"`
}

func summarize(r *report.Report, now time.Time) Summary {
	return Summary{
		ID:           r.ID,
		Document:     r.Document,
		DocumentHash: r.DocumentHash,
		VXVersion:    r.VXVersion,
		Errors:       r.Stats.Errors,
		Warnings:     r.Stats.Warnings,
		StoredAt:     now.UTC(),
	}
}

// Store is the interface for report archives.
type Store interface {
	// Put stores r, replacing any report with the same id.
	Put(ctx context.Context, r *report.Report) error

	// Get returns the report with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*report.Report, error)

	// List returns up to limit summaries, most recently stored first.
	// A limit of zero or less uses DefaultListLimit.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Close releases the backend.
	Close(ctx context.Context) error
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
