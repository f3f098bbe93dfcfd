// Package store provides lead persistence backends for Leadline.
//
// This file implements the PostgreSQL-backed lead store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "embed"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/FinalExpenseIQ/leadline/internal/models"
	"github.com/FinalExpenseIQ/leadline/internal/phone"
)

// Database connection pool configuration constants.
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database.
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool.
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused.
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// FetchOrCreate returns the lead for a canonical phone number, inserting a
// fresh row if none exists. ON CONFLICT DO NOTHING plus the unique
// constraint resolves concurrent creation races.
func (s *PostgresStore) FetchOrCreate(ctx context.Context, phoneNumber string) (*models.Lead, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, phone_number, step, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (phone_number) DO NOTHING`,
		uuid.NewString(), phoneNumber, 1, string(models.LeadStatusActive), now, now)
	if err != nil {
		slog.Error("PostgresStore FetchOrCreate insert failed", "error", err, "phone", phoneNumber)
		return nil, storageErr("fetch-or-create lead", err)
	}

	lead, err := s.GetLeadByPhone(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		err := fmt.Errorf("lead missing after insert for %s", phoneNumber)
		slog.Error("PostgresStore FetchOrCreate read-back failed", "error", err)
		return nil, storageErr("fetch-or-create lead", err)
	}
	slog.Debug("PostgresStore FetchOrCreate succeeded", "phone", phoneNumber, "id", lead.ID, "step", lead.Step)
	return lead, nil
}

// GetLeadByPhone returns the lead for a canonical phone number, or nil if
// none exists.
func (s *PostgresStore) GetLeadByPhone(ctx context.Context, phoneNumber string) (*models.Lead, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE phone_number = $1`, phoneNumber)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetLeadByPhone failed", "error", err, "phone", phoneNumber)
		return nil, storageErr("get lead", err)
	}
	return &lead, nil
}

// UpdateLead merges non-nil fields and refreshes updated_at. Returns the
// affected row count; zero means no lead matched the phone number.
func (s *PostgresStore) UpdateLead(ctx context.Context, phoneNumber string, update models.LeadUpdate) (int64, error) {
	cols, vals := updateColumns(update)
	if len(cols) == 0 {
		slog.Debug("PostgresStore UpdateLead no fields to update", "phone", phoneNumber)
		return 0, nil
	}

	setClauses := make([]string, 0, len(cols)+1)
	for i, c := range cols {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", c, i+1))
	}
	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", len(cols)+1))
	vals = append(vals, time.Now().UTC(), phoneNumber)

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE phone_number = $%d`,
		strings.Join(setClauses, ", "), len(cols)+2)
	res, err := s.db.ExecContext(ctx, query, vals...)
	if err != nil {
		slog.Error("PostgresStore UpdateLead failed", "error", err, "phone", phoneNumber)
		return 0, storageErr("update lead", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("update lead", err)
	}
	slog.Debug("PostgresStore UpdateLead succeeded", "phone", phoneNumber, "affected", affected)
	return affected, nil
}

// ListLeads returns all leads, newest first.
func (s *PostgresStore) ListLeads(ctx context.Context) ([]models.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("PostgresStore ListLeads query failed", "error", err)
		return nil, storageErr("list leads", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			slog.Error("PostgresStore ListLeads scan failed", "error", err)
			return nil, storageErr("list leads", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore ListLeads rows iteration failed", "error", err)
		return nil, storageErr("list leads", err)
	}
	slog.Debug("PostgresStore ListLeads succeeded", "count", len(leads))
	return leads, nil
}

// CanonicalizePhoneNumbers rewrites legacy phone number encodings to
// canonical form. Collisions with existing canonical rows are logged and
// skipped; leads are never deleted.
func (s *PostgresStore) CanonicalizePhoneNumbers(ctx context.Context) (int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, phone_number FROM leads`)
	if err != nil {
		slog.Error("PostgresStore CanonicalizePhoneNumbers query failed", "error", err)
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
			`UPDATE leads SET phone_number = $1, updated_at = $2 WHERE id = $3`,
			rw.canonical, time.Now().UTC(), rw.id)
		if err != nil {
			slog.Warn("PostgresStore CanonicalizePhoneNumbers skipping row", "id", rw.id, "canonical", rw.canonical, "error", err)
			continue
		}
		migrated++
	}

	if migrated > 0 {
		slog.Info("PostgresStore CanonicalizePhoneNumbers migrated legacy rows", "count", migrated)
	}
	return migrated, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	return s.db.Close()
}
