package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/logger"
	"github.com/andy/billbook/internal/repository"
	"github.com/rs/zerolog"
)

var ErrRecordNotFound = errors.New("record not found")

// RecordService manages the customer record lifecycle. It owns the write
// ordering across the record, index, registry, and pointer tables: the
// record snapshot is always written before its index entry, so a failure
// between the two leaves at most an index gap (self-healed on the next
// listing), never an index entry pointing at a missing record.
type RecordService interface {
	// CreateOrReplace validates, recomputes, and persists the record,
	// then brings the index, registry, and last-saved pointer up to date.
	// Validation failure aborts the whole operation with nothing written.
	CreateOrReplace(ctx context.Context, record *domain.CustomerRecord) error

	// Delete removes each key's record, its index entry, and the
	// last-saved pointer if it referenced that key. Missing keys are
	// skipped; the rest of the batch still processes.
	Delete(ctx context.Context, keys []domain.RecordKey) error

	// Get loads a record snapshot, or ErrRecordNotFound
	Get(ctx context.Context, key domain.RecordKey) (*domain.CustomerRecord, error)

	// RecomputeOnFieldChange re-derives the subset of figures affected by
	// an edit: sold/rate/pwt/vc edits recompute the line plus the record
	// totals and summary; a balance edit recomputes only the outstanding
	// figure and never touches the running bill.
	RecomputeOnFieldChange(record *domain.CustomerRecord, field domain.Field, line int)

	// ListByDate returns index keys, filtered to date when non-empty,
	// ordered by date descending then name ascending
	ListByDate(ctx context.Context, date string) ([]domain.RecordKey, error)

	// Customers returns the master customer name list
	Customers(ctx context.Context) ([]string, error)

	// LastSaved returns the most recently saved key, or nil
	LastSaved(ctx context.Context) (*domain.RecordKey, error)
}

type recordService struct {
	recordRepo   repository.RecordRepository
	indexRepo    repository.IndexRepository
	registryRepo repository.RegistryRepository
	pointerRepo  repository.PointerRepository
	log          zerolog.Logger
}

// NewRecordService creates a new record service
func NewRecordService(
	recordRepo repository.RecordRepository,
	indexRepo repository.IndexRepository,
	registryRepo repository.RegistryRepository,
	pointerRepo repository.PointerRepository,
) RecordService {
	return &recordService{
		recordRepo:   recordRepo,
		indexRepo:    indexRepo,
		registryRepo: registryRepo,
		pointerRepo:  pointerRepo,
		log:          logger.WithComponent("records"),
	}
}

func (s *recordService) CreateOrReplace(ctx context.Context, record *domain.CustomerRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}

	// Never trust caller-supplied derived values; the persisted snapshot
	// is always recomputed from the raw inputs.
	record.Recalculate()

	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	// Record first. If anything after this fails, the index simply does
	// not know about the record yet.
	if err := s.recordRepo.Put(ctx, record); err != nil {
		return err
	}

	key := record.Key()

	index, err := s.indexRepo.Get(ctx)
	if err != nil {
		return err
	}
	kept := index[:0:0]
	for _, k := range index {
		if k != key {
			kept = append(kept, k)
		}
	}
	kept = append(kept, key)
	if err := s.indexRepo.Put(ctx, kept); err != nil {
		return err
	}

	if err := s.registerName(ctx, record.Name); err != nil {
		return err
	}

	if err := s.pointerRepo.Save(ctx, key); err != nil {
		return err
	}

	s.log.Debug().Str("key", key.String()).Msg("record saved")
	return nil
}

// registerName adds the name to the customer registry if it is new
func (s *recordService) registerName(ctx context.Context, name string) error {
	names, err := s.registryRepo.Get(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == name {
			return nil
		}
	}
	return s.registryRepo.Put(ctx, append(names, name))
}

func (s *recordService) Delete(ctx context.Context, keys []domain.RecordKey) error {
	index, err := s.indexRepo.Get(ctx)
	if err != nil {
		return err
	}

	for _, key := range keys {
		exists, err := s.recordRepo.Exists(ctx, key.Name, key.Date)
		if err != nil {
			return err
		}
		if !exists {
			s.log.Debug().Str("key", key.String()).Msg("delete of missing record skipped")
		}

		// Record first, then the index entry, then the pointer, so that a
		// crash mid-delete never leaves the index ahead of the store.
		if err := s.recordRepo.Remove(ctx, key.Name, key.Date); err != nil {
			return err
		}

		kept := index[:0:0]
		for _, k := range index {
			if k != key {
				kept = append(kept, k)
			}
		}
		if len(kept) != len(index) {
			if err := s.indexRepo.Put(ctx, kept); err != nil {
				return err
			}
			index = kept
		}

		ptr, err := s.pointerRepo.Get(ctx)
		if err != nil {
			return err
		}
		if ptr != nil && *ptr == key {
			if err := s.pointerRepo.Clear(ctx); err != nil {
				return err
			}
		}

		// The customer registry intentionally keeps the name: deleted
		// customers stay available for autocomplete.

		s.log.Debug().Str("key", key.String()).Msg("record deleted")
	}

	return nil
}

func (s *recordService) Get(ctx context.Context, key domain.RecordKey) (*domain.CustomerRecord, error) {
	record, err := s.recordRepo.Get(ctx, key.Name, key.Date)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, key)
	}
	return record, nil
}

func (s *recordService) RecomputeOnFieldChange(record *domain.CustomerRecord, field domain.Field, line int) {
	if field == domain.FieldBalance {
		record.RecalculateOutstanding()
		return
	}
	record.RecalculateLine(line)
}

func (s *recordService) ListByDate(ctx context.Context, date string) ([]domain.RecordKey, error) {
	index, err := s.indexRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	// Drop index entries whose record no longer exists. Orphans can only
	// appear after a crash between a record removal and the index write.
	kept := index[:0:0]
	for _, k := range index {
		exists, err := s.recordRepo.Exists(ctx, k.Name, k.Date)
		if err != nil {
			return nil, err
		}
		if !exists {
			s.log.Warn().Str("key", k.String()).Msg("dropping orphan index entry")
			continue
		}
		kept = append(kept, k)
	}
	if len(kept) != len(index) {
		if err := s.indexRepo.Put(ctx, kept); err != nil {
			return nil, err
		}
	}

	keys := make([]domain.RecordKey, 0, len(kept))
	for _, k := range kept {
		if date == "" || k.Date == date {
			keys = append(keys, k)
		}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date > keys[j].Date
		}
		return keys[i].Name < keys[j].Name
	})

	return keys, nil
}

func (s *recordService) Customers(ctx context.Context) ([]string, error) {
	names, err := s.registryRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (s *recordService) LastSaved(ctx context.Context) (*domain.RecordKey, error) {
	return s.pointerRepo.Get(ctx)
}
