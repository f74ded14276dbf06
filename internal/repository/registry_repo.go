package repository

import (
	"context"
	"fmt"

	"github.com/andy/billbook/internal/db"
)

// RegistryRepo is a SQLite implementation of RegistryRepository
type RegistryRepo struct {
	db *db.DB
}

// NewRegistryRepo creates a new RegistryRepo
func NewRegistryRepo(database *db.DB) *RegistryRepo {
	return &RegistryRepo{db: database}
}

// Get retrieves all registered customer names, sorted
func (r *RegistryRepo) Get(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM customers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to read customer registry: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan customer name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customer registry: %w", err)
	}

	return names, nil
}

// Put replaces the registry contents with the given names
func (r *RegistryRepo) Put(ctx context.Context, names []string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM customers"); err != nil {
		return fmt.Errorf("failed to clear customer registry: %w", err)
	}

	for _, name := range names {
		_, err := r.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO customers (name, created_at) VALUES (?, ?)",
			name, formatTime(),
		)
		if err != nil {
			return fmt.Errorf("failed to register customer %q: %w", name, err)
		}
	}

	return nil
}
