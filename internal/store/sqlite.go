// Package store provides lead persistence backends for Leadline.
//
// This file implements the SQLite-backed lead store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "embed"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/FinalExpenseIQ/leadline/internal/models"
	"github.com/FinalExpenseIQ/leadline/internal/phone"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// FetchOrCreate returns the lead for a canonical phone number, inserting a
// fresh row if none exists. INSERT OR IGNORE plus the unique constraint on
// phone_number means a concurrent race resolves with one writer winning
// and both callers reading the committed row.
func (s *SQLiteStore) FetchOrCreate(ctx context.Context, phoneNumber string) (*models.Lead, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO leads (id, phone_number, step, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), phoneNumber, 1, string(models.LeadStatusActive), now, now)
	if err != nil {
		slog.Error("SQLiteStore FetchOrCreate insert failed", "error", err, "phone", phoneNumber)
		return nil, storageErr("fetch-or-create lead", err)
	}

	lead, err := s.GetLeadByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		// The row we just inserted (or raced on) must exist.
		err := fmt.Errorf("lead missing after insert for %s", phoneNumber)
		slog.Error("SQLiteStore FetchOrCreate read-back failed", "error", err)
		return nil, storageErr("fetch-or-create lead", err)
	}
	slog.Debug("SQLiteStore FetchOrCreate succeeded", "phone", phoneNumber, "id", lead.ID, "step", lead.Step)
	return lead, nil
}

// GetLeadByPhone returns the lead for a canonical phone number, or nil if
// none exists.
func (s *SQLiteStore) GetLeadByPhone(ctx context.Context, phoneNumber string) (*models.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE phone_number = ?`, phoneNumber)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetLeadByPhone failed", "error", err, "phone", phoneNumber)
		return nil, storageErr("get lead", err)
	}
	return &lead, nil
}

// UpdateLead merges non-nil fields and refreshes updated_at. Returns the
// affected row count; zero means no lead matched the phone number.
func (s *SQLiteStore) UpdateLead(ctx context.Context, phoneNumber string, update models.LeadUpdate) (int64, error) {
	cols, vals := updateColumns(update)
	if len(cols) == 0 {
		slog.Debug("SQLiteStore UpdateLead no fields to update", "phone", phoneNumber)
		return 0, nil
	}

	setClauses := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		setClauses = append(setClauses, c+" = ?")
	}
	setClauses = append(setClauses, "updated_at = ?")
	vals = append(vals, time.Now().UTC(), phoneNumber)

	query := `UPDATE leads SET ` + strings.Join(setClauses, ", ") + ` WHERE phone_number = ?`
	res, err := s.db.ExecContext(ctx, query, vals...)
	if err != nil {
		slog.Error("SQLiteStore UpdateLead failed", "error", err, "phone", phoneNumber)
		return 0, storageErr("update lead", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("update lead", err)
	}
	slog.Debug("SQLiteStore UpdateLead succeeded", "phone", phoneNumber, "affected", affected)
	return affected, nil
}

// ListLeads returns all leads, newest first.
func (s *SQLiteStore) ListLeads(ctx context.Context) ([]models.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("SQLiteStore ListLeads query failed", "error", err)
		return nil, storageErr("list leads", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			slog.Error("SQLiteStore ListLeads scan failed", "error", err)
			return nil, storageErr("list leads", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore ListLeads rows iteration failed", "error", err)
		return nil, storageErr("list leads", err)
	}
	slog.Debug("SQLiteStore ListLeads succeeded", "count", len(leads))
	return leads, nil
}

// CanonicalizePhoneNumbers rewrites legacy phone number encodings
// (space-prefixed, plus-stripped) to canonical form. A row whose
// canonical form collides with an existing row is left in place and
// logged rather than merged; leads are never deleted.
func (s *SQLiteStore) CanonicalizePhoneNumbers(ctx context.Context) (int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, phone_number FROM leads`)
	if err != nil {
		slog.Error("SQLiteStore CanonicalizePhoneNumbers query failed", "error", err)
		return 0, storageErr("canonicalize phone numbers", err)
	}

	type rewrite struct {
		id        string
		canonical string
	}
	var rewrites []rewrite
	for rows.Next() {
		var id, stored string
		if err := rows.Scan(&id, &stored); err != nil {
			rows.Close()
			return 0, storageErr("canonicalize phone numbers", err)
		}
		if canonical := phone.Normalize(stored); canonical != stored {
			rewrites = append(rewrites, rewrite{id: id, canonical: canonical})
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, storageErr("canonicalize phone numbers", err)
	}
	rows.Close()

	var migrated int64
	for _, rw := range rewrites {
		_, err := s.db.ExecContext(ctx,
			`UPDATE leads SET phone_number = ?, updated_at = ? WHERE id = ?`,
			rw.canonical, time.Now().UTC(), rw.id)
		if err != nil {
			// Most likely a unique collision with an already-canonical row.
			slog.Warn("SQLiteStore CanonicalizePhoneNumbers skipping row", "id", rw.id, "canonical", rw.canonical, "error", err)
			continue
		}
		migrated++
	}

	if migrated > 0 {
		slog.Info("SQLiteStore CanonicalizePhoneNumbers migrated legacy rows", "count", migrated)
	}
	return migrated, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
