package securestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/common"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/cryptox"
	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/dbx"
)

const saltSize = 16

// ErrUnreadable wraps values that exist but cannot be opened with the
// current key.
var ErrUnreadable = errors.New("stored value unreadable")

type SQLiteRepository struct {
	db  dbx.DBTX
	key []byte
}

// NewSQLiteRepository binds a repository to db, which may be a *sql.DB or a
// *sql.Tx, sealing values with key.
func NewSQLiteRepository(db dbx.DBTX, key []byte) *SQLiteRepository {
	return &SQLiteRepository{db: db, key: key}
}

// InstallKey returns the sealing key for this install, creating the install
// salt on first call.
func InstallKey(ctx context.Context, db dbx.DBTX, secret []byte) ([]byte, error) {
	var salt []byte
	err := db.QueryRowContext(ctx, `SELECT salt FROM install WHERE id = 1`).Scan(&salt)
	if errors.Is(err, sql.ErrNoRows) {
		salt = common.GenerateRandByteArray(saltSize)
		if _, err := db.ExecContext(ctx, `INSERT INTO install (id, salt) VALUES (1, ?)`, salt); err != nil {
			return nil, fmt.Errorf("failed to create install salt: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read install salt: %w", err)
	}
	return cryptox.DeriveStorageKey(secret, salt), nil
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var sealed []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM secure_store WHERE key = ?`, key).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get secure_store[%s]: %w", key, err)
	}

	value, err := cryptox.Open(r.key, sealed, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("secure_store[%s]: %w: %v", key, ErrUnreadable, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := cryptox.Seal(r.key, value, []byte(key))
	if err != nil {
		return fmt.Errorf("failed to seal secure_store[%s]: %w", key, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO secure_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, sealed)
	if err != nil {
		return fmt.Errorf("failed to set secure_store[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM secure_store WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete secure_store[%s]: %w", key, err)
	}
	return nil
}
