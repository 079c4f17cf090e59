package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/mailacct/internal/model"
	"github.com/nhle/mailacct/internal/uri"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// An in-memory database exists per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertAccount inserts or replaces an account, keyed by name. The URI is
// parsed and re-serialized so a password in the input never reaches the
// database. A new UUID is assigned when the record has none and no
// account of that name exists yet.
func (s *SQLiteStore) UpsertAccount(
	ctx context.Context,
	rec model.AccountRecord,
) (model.AccountRecord, error) {
	if strings.TrimSpace(rec.Name) == "" {
		return model.AccountRecord{}, fmt.Errorf("account name must not be empty")
	}

	u, err := uri.Parse(rec.URI)
	if err != nil {
		return model.AccountRecord{}, fmt.Errorf("account %s: %w", rec.Name, err)
	}
	rec.URI, err = u.Format(0)
	if err != nil {
		return model.AccountRecord{}, fmt.Errorf("account %s: %w", rec.Name, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.AccountRecord{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var existing model.AccountRecord
	err = tx.GetContext(ctx, &existing, "SELECT * FROM accounts WHERE name = ?", rec.Name)
	switch {
	case err == nil:
		if rec.ID == "" {
			rec.ID = existing.ID
		}
		rec.CreatedAt = existing.CreatedAt
	case errors.Is(err, sql.ErrNoRows):
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		rec.CreatedAt = time.Now().UTC()
	default:
		return model.AccountRecord{}, fmt.Errorf("looking up account %s: %w", rec.Name, err)
	}
	rec.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO accounts (id, name, uri, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.URI, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return model.AccountRecord{}, fmt.Errorf("upserting account %s: %w", rec.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return model.AccountRecord{}, fmt.Errorf("committing account %s: %w", rec.Name, err)
	}
	return rec, nil
}

// GetAccounts retrieves all registered accounts ordered by name.
func (s *SQLiteStore) GetAccounts(ctx context.Context) ([]model.AccountRecord, error) {
	var accounts []model.AccountRecord
	err := s.db.SelectContext(ctx, &accounts, "SELECT * FROM accounts ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	return accounts, nil
}

// GetAccountByName retrieves a single account by its name.
func (s *SQLiteStore) GetAccountByName(
	ctx context.Context,
	name string,
) (*model.AccountRecord, error) {
	var rec model.AccountRecord
	err := s.db.GetContext(ctx, &rec, "SELECT * FROM accounts WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting account %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting account %s: %w", name, err)
	}
	return &rec, nil
}

// DeleteAccount removes an account by ID.
func (s *SQLiteStore) DeleteAccount(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting account %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("deleting account %s: %w", id, ErrNotFound)
	}
	return nil
}
