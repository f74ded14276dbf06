package service

import (
	"context"
	"testing"

	"github.com/andy/billbook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeState is shared by the fake repositories so tests can assert
// cross-table consistency and write ordering.
type fakeState struct {
	records  map[domain.RecordKey]*domain.CustomerRecord
	index    []domain.RecordKey
	registry []string
	pointer  *domain.RecordKey
	ops      []string
}

func newFakeState() *fakeState {
	return &fakeState{records: make(map[domain.RecordKey]*domain.CustomerRecord)}
}

type fakeRecordRepo struct{ s *fakeState }

func (f *fakeRecordRepo) Get(ctx context.Context, name, date string) (*domain.CustomerRecord, error) {
	rec, ok := f.s.records[domain.RecordKey{Name: name, Date: date}]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeRecordRepo) Put(ctx context.Context, record *domain.CustomerRecord) error {
	f.s.ops = append(f.s.ops, "put-record")
	cp := *record
	f.s.records[record.Key()] = &cp
	return nil
}

func (f *fakeRecordRepo) Remove(ctx context.Context, name, date string) error {
	f.s.ops = append(f.s.ops, "remove-record")
	delete(f.s.records, domain.RecordKey{Name: name, Date: date})
	return nil
}

func (f *fakeRecordRepo) Exists(ctx context.Context, name, date string) (bool, error) {
	_, ok := f.s.records[domain.RecordKey{Name: name, Date: date}]
	return ok, nil
}

type fakeIndexRepo struct{ s *fakeState }

func (f *fakeIndexRepo) Get(ctx context.Context) ([]domain.RecordKey, error) {
	out := make([]domain.RecordKey, len(f.s.index))
	copy(out, f.s.index)
	return out, nil
}

func (f *fakeIndexRepo) Put(ctx context.Context, keys []domain.RecordKey) error {
	f.s.ops = append(f.s.ops, "put-index")
	f.s.index = make([]domain.RecordKey, len(keys))
	copy(f.s.index, keys)
	return nil
}

type fakeRegistryRepo struct{ s *fakeState }

func (f *fakeRegistryRepo) Get(ctx context.Context) ([]string, error) {
	out := make([]string, len(f.s.registry))
	copy(out, f.s.registry)
	return out, nil
}

func (f *fakeRegistryRepo) Put(ctx context.Context, names []string) error {
	f.s.ops = append(f.s.ops, "put-registry")
	f.s.registry = make([]string, len(names))
	copy(f.s.registry, names)
	return nil
}

type fakePointerRepo struct{ s *fakeState }

func (f *fakePointerRepo) Get(ctx context.Context) (*domain.RecordKey, error) {
	if f.s.pointer == nil {
		return nil, nil
	}
	cp := *f.s.pointer
	return &cp, nil
}

func (f *fakePointerRepo) Save(ctx context.Context, key domain.RecordKey) error {
	f.s.ops = append(f.s.ops, "save-pointer")
	f.s.pointer = &key
	return nil
}

func (f *fakePointerRepo) Clear(ctx context.Context) error {
	f.s.ops = append(f.s.ops, "clear-pointer")
	f.s.pointer = nil
	return nil
}

func newTestService() (*fakeState, RecordService) {
	state := newFakeState()
	svc := NewRecordService(
		&fakeRecordRepo{s: state},
		&fakeIndexRepo{s: state},
		&fakeRegistryRepo{s: state},
		&fakePointerRepo{s: state},
	)
	return state, svc
}

func testRecord(name, date string) *domain.CustomerRecord {
	rec := domain.NewCustomerRecord(name, date, []string{"ML", "NB", "Book"})
	rec.CompanyLines[0].Sold = domain.NewAmount(10)
	rec.CompanyLines[0].Rate = domain.NewAmount(5)
	rec.CompanyLines[0].PWT = domain.NewAmount(2)
	rec.CompanyLines[0].VC = domain.NewAmount(1)
	return rec
}

// assertBijection checks that the index key set equals the stored key set
func assertBijection(t *testing.T, state *fakeState) {
	t.Helper()
	require.Len(t, state.index, len(state.records))
	seen := make(map[domain.RecordKey]bool)
	for _, k := range state.index {
		assert.False(t, seen[k], "duplicate index entry %s", k)
		seen[k] = true
		_, ok := state.records[k]
		assert.True(t, ok, "index entry %s has no backing record", k)
	}
}

func TestCreateOrReplacePersistsComputedSnapshot(t *testing.T) {
	ctx := context.Background()
	state, svc := newTestService()

	rec := testRecord("Acme", "2024-01-01")
	// Caller-supplied derived values must not survive the save
	rec.Summary.RunningBill = domain.NewAmount(9999)
	rec.Totals.CurrentBill = domain.NewAmount(9999)

	require.NoError(t, svc.CreateOrReplace(ctx, rec))

	stored := state.records[domain.RecordKey{Name: "Acme", Date: "2024-01-01"}]
	require.NotNil(t, stored)
	assert.Equal(t, "47.00", stored.Totals.CurrentBill.String())
	assert.Equal(t, "47.00", stored.Summary.RunningBill.String())
	assert.Equal(t, "47.00", stored.Summary.Outstanding.String())
	assert.False(t, stored.CreatedAt.IsZero())

	assert.Equal(t, []domain.RecordKey{{Name: "Acme", Date: "2024-01-01"}}, state.index)
	assert.Equal(t, []string{"Acme"}, state.registry)
	require.NotNil(t, state.pointer)
	assert.Equal(t, domain.RecordKey{Name: "Acme", Date: "2024-01-01"}, *state.pointer)
}

func TestCreateOrReplaceWriteOrdering(t *testing.T) {
	ctx := context.Background()
	state, svc := newTestService()

	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Acme", "2024-01-01")))

	assert.Equal(t, []string{"put-record", "put-index", "put-registry", "save-pointer"}, state.ops)
}

func TestCreateOrReplaceValidationAbortsWholeOperation(t *testing.T) {
	ctx := context.Background()
	state, svc := newTestService()

	blank := domain.NewCustomerRecord("  ", "2024-01-01", []string{"ML"})
	err := svc.CreateOrReplace(ctx, blank)
	assert.ErrorIs(t, err, domain.ErrNameRequired)

	noLines := domain.NewCustomerRecord("Acme", "2024-01-01", nil)
	err = svc.CreateOrReplace(ctx, noLines)
	assert.ErrorIs(t, err, domain.ErrNoLines)

	// Nothing may be written on a failed validation
	assert.Empty(t, state.ops)
	assert.Empty(t, state.records)
	assert.Empty(t, state.index)
	assert.Empty(t, state.registry)
	assert.Nil(t, state.pointer)
}

func TestCreateOrReplaceReplacesExistingIndexEntry(t *testing.T) {
	ctx := context.Background()
	state, svc := newTestService()

	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Acme", "2024-01-01")))
	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Acme", "2024-01-01")))

	assert.Len(t, state.index, 1)
	assertBijection(t, state)
}

func TestIndexBijectionAcrossOperations(t *testing.T) {
	ctx := context.Background()
	state, svc := newTestService()

	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Acme", "2024-01-01")))
	assertBijection(t, state)

	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Beta", "2024-01-01")))
	assertBijection(t, state)

	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Acme", "2024-01-02")))
	assertBijection(t, state)

	require.NoError(t, svc.Delete(ctx, []domain.RecordKey{{Name: "Acme", Date: "2024-01-01"}}))
	assertBijection(t, state)

	require.NoError(t, svc.Delete(ctx, []domain.RecordKey{
		{Name: "Beta", Date: "2024-01-01"},
		{Name: "Acme", Date: "2024-01-02"},
	}))
	assertBijection(t, state)
	assert.Empty(t, state.records)
}

func TestDeleteRemovesRecordIndexAndPointer(t *testing.T) {
	ctx := context.Background()
	state, svc := newTestService()

	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Acme", "2024-01-01")))
	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Beta", "2024-01-01")))

	// Pointer references Beta (saved last); deleting Acme must not clear it
	require.NoError(t, svc.Delete(ctx, []domain.RecordKey{{Name: "Acme", Date: "2024-01-01"}}))
	require.NotNil(t, state.pointer)
	assert.Equal(t, "Beta", state.pointer.Name)

	require.NoError(t, svc.Delete(ctx, []domain.RecordKey{{Name: "Beta", Date: "2024-01-01"}}))
	assert.Nil(t, state.pointer)
	assert.Empty(t, state.records)
	assert.Empty(t, state.index)
}

func TestDeleteMissingKeyIsNoOp(t *testing.T) {
	ctx := context.Background()
	state, svc := newTestService()

	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Acme", "2024-01-01")))

	err := svc.Delete(ctx, []domain.RecordKey{{Name: "Ghost", Date: "2024-01-01"}})
	require.NoError(t, err)
	assert.Len(t, state.records, 1)
	assertBijection(t, state)
}

func TestDeleteBatchContinuesPastMissingKeys(t *testing.T) {
	ctx := context.Background()
	state, svc := newTestService()

	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Acme", "2024-01-01")))

	err := svc.Delete(ctx, []domain.RecordKey{
		{Name: "Ghost", Date: "2024-01-01"},
		{Name: "Acme", Date: "2024-01-01"},
	})
	require.NoError(t, err)
	assert.Empty(t, state.records)
	assertBijection(t, state)
}

func TestDeleteKeepsCustomerRegistry(t *testing.T) {
	ctx := context.Background()
	state, svc := newTestService()

	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Acme", "2024-01-01")))
	require.NoError(t, svc.Delete(ctx, []domain.RecordKey{{Name: "Acme", Date: "2024-01-01"}}))

	// Names stay registered after their records are deleted
	assert.Equal(t, []string{"Acme"}, state.registry)
}

func TestRecomputeOnFieldChange(t *testing.T) {
	_, svc := newTestService()

	rec := testRecord("Acme", "2024-01-01")
	rec.Recalculate()
	require.Equal(t, "47.00", rec.Summary.RunningBill.String())

	// A balance edit updates outstanding only
	rec.Summary.Balance = domain.NewAmount(10)
	svc.RecomputeOnFieldChange(rec, domain.FieldBalance, 0)
	assert.Equal(t, "57.00", rec.Summary.Outstanding.String())
	assert.Equal(t, "47.00", rec.Summary.RunningBill.String())

	// A sold edit recomputes the line, totals, and summary
	rec.CompanyLines[1].Sold = domain.NewAmount(2)
	rec.CompanyLines[1].Rate = domain.NewAmount(5)
	svc.RecomputeOnFieldChange(rec, domain.FieldSold, 1)
	assert.Equal(t, "10.00", rec.CompanyLines[1].CurrentBill.String())
	assert.Equal(t, "57.00", rec.Summary.RunningBill.String())
	assert.Equal(t, "67.00", rec.Summary.Outstanding.String())
}

func TestListByDateOrderingAndFilter(t *testing.T) {
	ctx := context.Background()
	_, svc := newTestService()

	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Zeta", "2024-01-02")))
	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Acme", "2024-01-02")))
	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Beta", "2024-01-01")))

	keys, err := svc.ListByDate(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []domain.RecordKey{
		{Name: "Acme", Date: "2024-01-02"},
		{Name: "Zeta", Date: "2024-01-02"},
		{Name: "Beta", Date: "2024-01-01"},
	}, keys)

	keys, err = svc.ListByDate(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, []domain.RecordKey{{Name: "Beta", Date: "2024-01-01"}}, keys)
}

func TestListByDatePrunesOrphanIndexEntries(t *testing.T) {
	ctx := context.Background()
	state, svc := newTestService()

	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Acme", "2024-01-01")))

	// Simulate a crash that left an index entry without a record
	state.index = append(state.index, domain.RecordKey{Name: "Ghost", Date: "2024-01-01"})

	keys, err := svc.ListByDate(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []domain.RecordKey{{Name: "Acme", Date: "2024-01-01"}}, keys)

	// The orphan was pruned from the durable index too
	assertBijection(t, state)
}

func TestCustomersSorted(t *testing.T) {
	ctx := context.Background()
	_, svc := newTestService()

	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Zeta", "2024-01-01")))
	require.NoError(t, svc.CreateOrReplace(ctx, testRecord("Acme", "2024-01-01")))

	names, err := svc.Customers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Zeta"}, names)
}
