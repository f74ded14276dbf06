package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/billbook/internal/db"
	"github.com/andy/billbook/internal/domain"
)

// PointerRepo is a SQLite implementation of PointerRepository
type PointerRepo struct {
	db *db.DB
}

// NewPointerRepo creates a new PointerRepo
func NewPointerRepo(database *db.DB) *PointerRepo {
	return &PointerRepo{db: database}
}

// Get retrieves the last-saved key, or nil if nothing has been saved yet
func (r *PointerRepo) Get(ctx context.Context) (*domain.RecordKey, error) {
	query := "SELECT name, date FROM last_saved WHERE id = 1"

	key := &domain.RecordKey{}
	err := r.db.QueryRowContext(ctx, query).Scan(&key.Name, &key.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last-saved pointer: %w", err)
	}

	return key, nil
}

// Save records the key as the most recently saved record (insert or replace)
func (r *PointerRepo) Save(ctx context.Context, key domain.RecordKey) error {
	query := `
		INSERT OR REPLACE INTO last_saved (id, name, date, saved_at)
		VALUES (1, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, key.Name, key.Date, formatTime())
	if err != nil {
		return fmt.Errorf("failed to save last-saved pointer: %w", err)
	}

	return nil
}

// Clear removes the last-saved pointer
func (r *PointerRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM last_saved WHERE id = 1")
	if err != nil {
		return fmt.Errorf("failed to clear last-saved pointer: %w", err)
	}
	return nil
}
