// Package sqlite provides the SQLite-backed metadata store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/layer-3/walletgate/adapters/store/sqlite/migrations"
	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/ports"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists wallets, token metadata and the audit log in SQLite.
type Store struct {
	db     *sql.DB
	logger watermill.LoggerAdapter
	now    func() time.Time
}

var _ ports.MetadataStore = (*Store)(nil)

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string, logger watermill.LoggerAdapter) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// LookupAuthorization returns the stored authorization of identity.
func (s *Store) LookupAuthorization(ctx context.Context, identity string) (core.AuthorizationRecord, error) {
	var (
		name, role string
		active     bool
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT name, role, is_active FROM authorized_wallets WHERE wallet_address = ?`,
		identity,
	).Scan(&name, &role, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return core.AuthorizationRecord{}, core.ErrNotFound
	}
	if err != nil {
		return core.AuthorizationRecord{}, fmt.Errorf("lookup authorization: %w", err)
	}

	return core.AuthorizationRecord{
		Identity:    identity,
		Role:        core.ParseRole(role),
		DisplayName: name,
		IsActive:    active,
	}, nil
}

// SetRequestIdentity scopes identity to the returned context. Every write
// issued with that context is attributed to identity in the audit log.
func (s *Store) SetRequestIdentity(ctx context.Context, identity string) (context.Context, error) {
	if identity == "" {
		return ctx, core.ErrNoRequestIdentity
	}
	return core.WithRequestIdentity(ctx, identity), nil
}

func requestIdentity(ctx context.Context) (string, error) {
	identity, ok := core.RequestIdentityFromContext(ctx)
	if !ok {
		return "", core.ErrNoRequestIdentity
	}
	return identity, nil
}

// withTx runs fn in a transaction attributed to the request identity.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx, actor string) error) error {
	actor, err := requestIdentity(ctx)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx, actor); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) audit(ctx context.Context, tx *sql.Tx, table, operation, actor string, oldValues, newValues any) error {
	encode := func(v any) (sql.NullString, error) {
		if v == nil {
			return sql.NullString{}, nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return sql.NullString{}, err
		}
		return sql.NullString{String: string(b), Valid: true}, nil
	}

	oldJSON, err := encode(oldValues)
	if err != nil {
		return fmt.Errorf("encode audit values: %w", err)
	}
	newJSON, err := encode(newValues)
	if err != nil {
		return fmt.Errorf("encode audit values: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO audit_log (table_name, operation, old_values, new_values, wallet_address, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		table, operation, oldJSON, newJSON, actor, toMillis(s.now()),
	); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}

	s.logger.Debug("Audit entry recorded", watermill.LogFields{
		"table":     table,
		"operation": operation,
		"wallet":    actor,
	})
	return nil
}

// AuditEntry is one row of the audit log.
type AuditEntry struct {
	Table         string
	Operation     string
	OldValues     string
	NewValues     string
	WalletAddress string
	Timestamp     time.Time
}

// AuditLog returns audit entries for table, oldest first.
func (s *Store) AuditLog(ctx context.Context, table string) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT table_name, operation, COALESCE(old_values, ''), COALESCE(new_values, ''), wallet_address, timestamp
		 FROM audit_log WHERE table_name = ? ORDER BY id`,
		table,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var (
			e  AuditEntry
			ts int64
		)
		if err := rows.Scan(&e.Table, &e.Operation, &e.OldValues, &e.NewValues, &e.WalletAddress, &ts); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		e.Timestamp = fromMillis(ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
