package repository

import (
	"context"

	"github.com/andy/billbook/internal/domain"
)

// The four repositories below make up the entry store: the per-record
// snapshots, the ordered key index, the customer name registry, and the
// last-saved pointer. None of them wrap multi-table updates in a
// transaction; the record service owns the write ordering that keeps the
// tables mutually consistent.

// RecordRepository manages customer record snapshots keyed by (name, date)
type RecordRepository interface {
	Get(ctx context.Context, name, date string) (*domain.CustomerRecord, error) // nil if absent
	Put(ctx context.Context, record *domain.CustomerRecord) error
	Remove(ctx context.Context, name, date string) error // no-op when absent
	Exists(ctx context.Context, name, date string) (bool, error)
}

// IndexRepository manages the ordered list of persisted record keys
type IndexRepository interface {
	Get(ctx context.Context) ([]domain.RecordKey, error)
	Put(ctx context.Context, keys []domain.RecordKey) error
}

// RegistryRepository manages the master customer name list
type RegistryRepository interface {
	Get(ctx context.Context) ([]string, error)
	Put(ctx context.Context, names []string) error
}

// PointerRepository manages the most-recently-saved record key (singleton)
type PointerRepository interface {
	Get(ctx context.Context) (*domain.RecordKey, error) // nil if not set
	Save(ctx context.Context, key domain.RecordKey) error
	Clear(ctx context.Context) error
}
