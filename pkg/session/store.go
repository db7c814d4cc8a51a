package session

import (
	"context"

	"github.com/matzehuels/boxlayout/pkg/errors"
)

// Store persists session records.
type Store interface {
	// Save inserts or replaces the record with the same ID.
	Save(ctx context.Context, rec *Record) error

	// Load returns the record, or an error with code SESSION_NOT_FOUND.
	Load(ctx context.Context, id string) (*Record, error)

	// Delete removes a record; deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored records.
	List(ctx context.Context) ([]string, error)

	Close() error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSessionNotFound, "session %q", id)
}
