// Package securestore keeps sensitive values (session tokens) sealed at rest.
// Values are encrypted per key before they reach the secure_items table, so
// the database file alone does not reveal them.
package securestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/socialfeed/internal/dbx"
)

// Sealer encrypts and decrypts values bound to additional data.
// *cryptox.Sealer satisfies this interface.
type Sealer interface {
	Seal(plaintext, additionalData []byte) (ciphertext, nonce []byte, err error)
	Open(ciphertext, nonce, additionalData []byte) ([]byte, error)
}

type Repository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

type SQLiteRepository struct {
	db     dbx.DBTX
	sealer Sealer
}

func NewSQLiteRepository(db dbx.DBTX, sealer Sealer) *SQLiteRepository {
	return &SQLiteRepository{db: db, sealer: sealer}
}

// Get returns the decrypted value and whether the key was present.
func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var ciphertext, nonce []byte
	err := r.db.QueryRowContext(ctx, `SELECT ciphertext, nonce FROM secure_items WHERE key = ?`, key).Scan(&ciphertext, &nonce)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get secure item[%s]: %w", key, err)
	}

	plaintext, err := r.sealer.Open(ciphertext, nonce, []byte(key))
	if err != nil {
		return "", false, fmt.Errorf("failed to open secure item[%s]: %w", key, err)
	}
	return string(plaintext), true, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value string) error {
	ciphertext, nonce, err := r.sealer.Seal([]byte(value), []byte(key))
	if err != nil {
		return fmt.Errorf("failed to seal secure item[%s]: %w", key, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO secure_items (key, ciphertext, nonce) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET ciphertext = excluded.ciphertext, nonce = excluded.nonce
	`, key, ciphertext, nonce)
	if err != nil {
		return fmt.Errorf("failed to set secure item[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM secure_items WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete secure item[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM secure_items`); err != nil {
		return fmt.Errorf("failed to clear secure items: %w", err)
	}
	return nil
}
