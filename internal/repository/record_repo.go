package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andy/billbook/internal/db"
	"github.com/andy/billbook/internal/domain"
)

// RecordRepo is a SQLite implementation of RecordRepository
type RecordRepo struct {
	db *db.DB
}

// NewRecordRepo creates a new RecordRepo
func NewRecordRepo(database *db.DB) *RecordRepo {
	return &RecordRepo{db: database}
}

// Get retrieves a record snapshot, or nil if no record exists for the key
func (r *RecordRepo) Get(ctx context.Context, name, date string) (*domain.CustomerRecord, error) {
	query := `
		SELECT payload, created_at, updated_at
		FROM records
		WHERE name = ? AND date = ?
	`

	var payload, createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, query, name, date).Scan(&payload, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	record := &domain.CustomerRecord{}
	if err := json.Unmarshal([]byte(payload), record); err != nil {
		return nil, fmt.Errorf("failed to decode record payload: %w", err)
	}

	if record.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if record.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return record, nil
}

// Put stores the record snapshot, replacing any existing snapshot for the
// same (name, date) key while preserving its creation time
func (r *RecordRepo) Put(ctx context.Context, record *domain.CustomerRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	query := `
		INSERT INTO records (name, date, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name, date) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		record.Name,
		record.Date,
		string(payload),
		record.CreatedAt.Format(timeLayout),
		record.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to put record: %w", err)
	}

	return nil
}

// Remove deletes the record for the key. Removing a missing key is a no-op.
func (r *RecordRepo) Remove(ctx context.Context, name, date string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM records WHERE name = ? AND date = ?", name, date)
	if err != nil {
		return fmt.Errorf("failed to remove record: %w", err)
	}
	return nil
}

// Exists reports whether a record is stored for the key
func (r *RecordRepo) Exists(ctx context.Context, name, date string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM records WHERE name = ? AND date = ?", name, date,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check record: %w", err)
	}
	return true, nil
}
