// Package store provides lead persistence backends for Leadline.
//
// The canonical conversation state for each phone number lives here.
// SQLite backs the default single-node deployment, Postgres the hosted
// one, and an in-memory implementation serves tests and demo mode.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/FinalExpenseIQ/leadline/internal/models"
)

// Store is the lead persistence contract.
//
// FetchOrCreate must be safe under concurrent calls for the same phone
// number: the unique constraint on the canonical phone number guarantees
// at most one row is created, and a losing writer reads the committed row.
type Store interface {
	// FetchOrCreate returns the lead for a canonical phone number,
	// creating a fresh one at step 1 with active status if none exists.
	FetchOrCreate(ctx context.Context, phoneNumber string) (*models.Lead, error)

	// GetLeadByPhone returns the lead for a canonical phone number, or
	// nil if none exists.
	GetLeadByPhone(ctx context.Context, phoneNumber string) (*models.Lead, error)

	// UpdateLead merges the non-nil fields of the update into the stored
	// lead and refreshes updated_at. It returns the number of rows
	// affected; zero means no lead matched, which callers must surface
	// as a logic error rather than treat as success.
	UpdateLead(ctx context.Context, phoneNumber string, update models.LeadUpdate) (int64, error)

	// ListLeads returns all leads ordered by creation time, newest first.
	ListLeads(ctx context.Context) ([]models.Lead, error)

	// CanonicalizePhoneNumbers rewrites legacy phone number encodings to
	// canonical form. Run once at startup; steady-state lookups are
	// strictly canonical.
	CanonicalizePhoneNumbers(ctx context.Context) (int64, error)

	// Close releases the underlying storage handle.
	Close() error
}

// StorageError wraps a storage-layer failure so the controller can
// distinguish it from delivery failures when deciding recovery.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err originated in the storage layer.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// storageErr wraps a driver error with the failing operation.
func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// Opts holds configuration for the SQL-backed stores.
type Opts struct {
	DSN string
}

// Option configures a store.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite3" so the
// entry point can pick a backend from a single connection string.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite3"
}
