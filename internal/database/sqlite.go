package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"adrop/internal/adrop"
	"adrop/internal/database/migrations"
	"adrop/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the adrop.Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db, path: ""}
}

// OpenConnection opens and configures a SQLite database connection with
// appropriate PRAGMAs. Exported for tools and tests that need a properly
// configured connection. path can be a file path or ":memory:".
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Wait for row locks instead of failing immediately; racing accepts
	// on the same transfer row must serialize, not error.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Each pooled connection to ":memory:" would get its own database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

// Keypair operations

func (s *SQLiteDatabase) CreateKeypair(kp *model.Keypair) error {
	_, err := s.db.Exec(
		`INSERT INTO keypairs (identity, public_key, private_key, created_at) VALUES (?, ?, ?, ?)`,
		kp.Identity, kp.PublicKey, kp.PrivateKey, kp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating keypair: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) FindKeypair(identity string) (*model.Keypair, error) {
	var kp model.Keypair
	err := s.db.QueryRow(
		`SELECT identity, public_key, private_key, created_at FROM keypairs WHERE identity = ?`,
		identity,
	).Scan(&kp.Identity, &kp.PublicKey, &kp.PrivateKey, &kp.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding keypair: %w", err)
	}
	return &kp, nil
}

// Transfer operations

const transferColumns = `id, owner_id, recipient_id, file_name, size, wrapped_key, nonce, password_hash, expires_at, status, created_at`

func (s *SQLiteDatabase) CreateTransfer(tr *model.Transfer) error {
	_, err := s.db.Exec(
		`INSERT INTO transfers (`+transferColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tr.ID, tr.OwnerID, tr.RecipientID, tr.FileName, tr.Size,
		tr.WrappedKey, tr.Nonce, tr.PasswordHash, tr.ExpiresAt, tr.Status, tr.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating transfer: %w", err)
	}
	return nil
}

// FindTransferForRecipient scopes the lookup to the recipient in the query
// itself, so a missing row and someone else's row are the same outcome.
func (s *SQLiteDatabase) FindTransferForRecipient(id, recipientID string) (*model.Transfer, error) {
	row := s.db.QueryRow(
		`SELECT `+transferColumns+` FROM transfers WHERE id = ? AND recipient_id = ?`,
		id, recipientID,
	)
	tr, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found (or not this recipient's)
		}
		return nil, fmt.Errorf("finding transfer: %w", err)
	}
	return tr, nil
}

// MarkTransferAccepted performs the pending-to-accepted transition as a
// single conditional UPDATE. Two concurrent calls on the same row yield
// exactly one true result.
func (s *SQLiteDatabase) MarkTransferAccepted(id string) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE transfers SET status = ? WHERE id = ? AND status = ?`,
		model.StatusAccepted, id, model.StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("marking transfer accepted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteDatabase) ListTransfersBySender(ownerID string, limit, offset int) ([]*model.Transfer, int64, error) {
	var total int64
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM transfers WHERE owner_id = ?`, ownerID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting sent transfers: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT `+transferColumns+` FROM transfers WHERE owner_id = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing sent transfers: %w", err)
	}
	defer rows.Close()

	transfers, err := collectTransfers(rows)
	if err != nil {
		return nil, 0, err
	}
	return transfers, total, nil
}

func (s *SQLiteDatabase) ListTransfersForRecipient(recipientID, status string, limit, offset int) ([]*model.Transfer, int64, error) {
	var total int64
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM transfers WHERE recipient_id = ? AND status = ?`, recipientID, status,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting received transfers: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT `+transferColumns+` FROM transfers WHERE recipient_id = ? AND status = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		recipientID, status, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing received transfers: %w", err)
	}
	defer rows.Close()

	transfers, err := collectTransfers(rows)
	if err != nil {
		return nil, 0, err
	}
	return transfers, total, nil
}

// DeleteTransfersExpiredBefore removes expired rows in one transaction and
// returns their IDs for vault blob cleanup.
func (s *SQLiteDatabase) DeleteTransfersExpiredBefore(cutoff time.Time) ([]string, error) {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT id FROM transfers WHERE expires_at <= ?`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("finding expired transfers: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning expired transfer: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating expired transfers: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return nil, nil
	}

	if _, err := tx.Exec(`DELETE FROM transfers WHERE expires_at <= ?`, cutoff); err != nil {
		return nil, fmt.Errorf("deleting expired transfers: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return ids, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row rowScanner) (*model.Transfer, error) {
	var tr model.Transfer
	err := row.Scan(
		&tr.ID, &tr.OwnerID, &tr.RecipientID, &tr.FileName, &tr.Size,
		&tr.WrappedKey, &tr.Nonce, &tr.PasswordHash, &tr.ExpiresAt, &tr.Status, &tr.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tr, nil
}

func collectTransfers(rows *sql.Rows) ([]*model.Transfer, error) {
	var transfers []*model.Transfer
	for rows.Next() {
		tr, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transfer: %w", err)
		}
		transfers = append(transfers, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transfers: %w", err)
	}
	return transfers, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// MigrateUp brings the database schema to the latest version.
func (s *SQLiteDatabase) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements adrop.Database
var _ adrop.Database = (*SQLiteDatabase)(nil)
