package repository

import (
	"context"
	"fmt"

	"github.com/andy/billbook/internal/db"
	"github.com/andy/billbook/internal/domain"
)

// IndexRepo is a SQLite implementation of IndexRepository
type IndexRepo struct {
	db *db.DB
}

// NewIndexRepo creates a new IndexRepo
func NewIndexRepo(database *db.DB) *IndexRepo {
	return &IndexRepo{db: database}
}

// Get retrieves all index entries in insertion order
func (r *IndexRepo) Get(ctx context.Context) ([]domain.RecordKey, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name, date FROM record_index ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	defer rows.Close()

	keys := make([]domain.RecordKey, 0)
	for rows.Next() {
		var k domain.RecordKey
		if err := rows.Scan(&k.Name, &k.Date); err != nil {
			return nil, fmt.Errorf("failed to scan index entry: %w", err)
		}
		keys = append(keys, k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating index: %w", err)
	}

	return keys, nil
}

// Put replaces the index contents with the given keys, preserving order
func (r *IndexRepo) Put(ctx context.Context, keys []domain.RecordKey) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM record_index"); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	for _, k := range keys {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO record_index (name, date) VALUES (?, ?)", k.Name, k.Date,
		)
		if err != nil {
			return fmt.Errorf("failed to write index entry %s: %w", k, err)
		}
	}

	return nil
}
