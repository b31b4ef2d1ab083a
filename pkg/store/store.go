// Package store persists compile results so the HTTP service can return
// them by ID after the request that produced them has finished.
//
// [MemoryStore] keeps results in process; [MongoStore] keeps them in a
// MongoDB collection shared by every replica.
package store

import (
	"context"
	"time"

	"github.com/matzehuels/qtranspile/pkg/errors"
)

// Record is a stored compile result.
type Record struct {
	ID         string         `json:"id" bson:"_id"`
	Name       string         `json:"name" bson:"name"`
	Target     string         `json:"target" bson:"target"`
	SourceHash string         `json:"source_hash" bson:"source_hash"`
	Output     string         `json:"output" bson:"output"`
	Size       int            `json:"size" bson:"size"`
	Depth      int            `json:"depth" bson:"depth"`
	Swaps      int            `json:"swaps" bson:"swaps"`
	Ops        map[string]int `json:"ops" bson:"ops"`
	Warnings   []string       `json:"warnings,omitempty" bson:"warnings,omitempty"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
}

// Store saves and fetches records.
type Store interface {
	// Save inserts rec or replaces the record with the same ID.
	Save(ctx context.Context, rec *Record) error

	// Get returns the record with id or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]*Record, error)

	Close(ctx context.Context) error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "no result with id %q", id)
}

func checkRecord(rec *Record) error {
	if rec == nil || rec.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "record needs an id")
	}
	return nil
}
