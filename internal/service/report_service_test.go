package service

import (
	"context"
	"testing"

	"github.com/andy/billbook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReportService(state *fakeState, pageHeight int) ReportService {
	return NewReportService(&fakeRecordRepo{s: state}, pageHeight)
}

func TestBuildReportSections(t *testing.T) {
	ctx := context.Background()
	state, records := newTestService()
	reports := newTestReportService(state, 0)

	rec := testRecord("Acme", "2024-01-01")
	rec.Summary.Balance = domain.NewAmount(10)
	require.NoError(t, records.CreateOrReplace(ctx, rec))

	table, err := reports.BuildReport(ctx, []domain.RecordKey{{Name: "Acme", Date: "2024-01-01"}})
	require.NoError(t, err)
	require.Len(t, table.Sections, 1)
	assert.Empty(t, table.Missing)

	section := table.Sections[0]
	assert.Equal(t, "Acme", section.Name)
	assert.Equal(t, "2024-01-01", section.Date)
	require.Len(t, section.Lines, 3)
	assert.Equal(t, "ML", section.Lines[0].Company)
	assert.Equal(t, "50.00", section.Lines[0].Total)
	assert.Equal(t, "47.00", section.Lines[0].CurrentBill)
	assert.Equal(t, "Total", section.Totals.Company)
	assert.Equal(t, "47.00", section.Totals.CurrentBill)
	assert.Equal(t, "47.00", section.Summary.RunningBill)
	assert.Equal(t, "10.00", section.Summary.Balance)
	assert.Equal(t, "57.00", section.Summary.Outstanding)
}

func TestBuildReportSkipsMissingRecords(t *testing.T) {
	ctx := context.Background()
	state, records := newTestService()
	reports := newTestReportService(state, 0)

	require.NoError(t, records.CreateOrReplace(ctx, testRecord("Acme", "2024-01-01")))

	table, err := reports.BuildReport(ctx, []domain.RecordKey{
		{Name: "Ghost", Date: "2024-01-01"},
		{Name: "Acme", Date: "2024-01-01"},
	})
	require.NoError(t, err)
	require.Len(t, table.Sections, 1)
	assert.Equal(t, "Acme", table.Sections[0].Name)
	assert.Equal(t, []domain.RecordKey{{Name: "Ghost", Date: "2024-01-01"}}, table.Missing)
}

func TestBuildMultiDateReportGroupsByDateNewestFirst(t *testing.T) {
	ctx := context.Background()
	state, records := newTestService()
	reports := newTestReportService(state, 0)

	require.NoError(t, records.CreateOrReplace(ctx, testRecord("Acme", "2024-01-01")))
	require.NoError(t, records.CreateOrReplace(ctx, testRecord("Beta", "2024-01-02")))
	require.NoError(t, records.CreateOrReplace(ctx, testRecord("Acme", "2024-01-02")))

	keys, err := records.ListByDate(ctx, "")
	require.NoError(t, err)

	pages, err := reports.BuildMultiDateReport(ctx, keys, true)
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Equal(t, "2024-01-02", pages[0].Date)
	require.Len(t, pages[0].Sections, 2)
	assert.Equal(t, "Acme", pages[0].Sections[0].Name)
	assert.Equal(t, "Beta", pages[0].Sections[1].Name)

	assert.Equal(t, "2024-01-01", pages[1].Date)
	require.Len(t, pages[1].Sections, 1)
}

func TestBuildMultiDateReportPacksUntilPageIsFull(t *testing.T) {
	ctx := context.Background()
	state, records := newTestService()

	names := []string{"Acme", "Beta", "Gama", "Delta"}
	keys := make([]domain.RecordKey, 0, len(names))
	for _, name := range names {
		require.NoError(t, records.CreateOrReplace(ctx, testRecord(name, "2024-01-01")))
		keys = append(keys, domain.RecordKey{Name: name, Date: "2024-01-01"})
	}

	// Each 3-line section is 8 rows tall; two fit in 20 rows, three don't
	reports := newTestReportService(state, 20)
	pages, err := reports.BuildMultiDateReport(ctx, keys, true)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Len(t, pages[0].Sections, 2)
	assert.Len(t, pages[1].Sections, 2)
}

func TestBuildMultiDateReportWithoutCombinePutsEachCustomerOnOwnPage(t *testing.T) {
	ctx := context.Background()
	state, records := newTestService()
	reports := newTestReportService(state, 100)

	require.NoError(t, records.CreateOrReplace(ctx, testRecord("Acme", "2024-01-01")))
	require.NoError(t, records.CreateOrReplace(ctx, testRecord("Beta", "2024-01-01")))

	pages, err := reports.BuildMultiDateReport(ctx, []domain.RecordKey{
		{Name: "Acme", Date: "2024-01-01"},
		{Name: "Beta", Date: "2024-01-01"},
	}, false)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Len(t, pages[0].Sections, 1)
	assert.Len(t, pages[1].Sections, 1)
}

// Full lifecycle: save, read back, delete, observe the soft miss
func TestSaveReportDeleteScenario(t *testing.T) {
	ctx := context.Background()
	state, records := newTestService()
	reports := newTestReportService(state, 0)

	rec := domain.NewCustomerRecord("Acme", "2024-01-01", []string{"ML", "NB", "Book"})
	rec.CompanyLines[0].Sold = domain.NewAmount(10)
	rec.CompanyLines[0].Rate = domain.NewAmount(5)
	rec.CompanyLines[0].PWT = domain.NewAmount(2)
	rec.CompanyLines[0].VC = domain.NewAmount(1)
	require.NoError(t, records.CreateOrReplace(ctx, rec))

	key := domain.RecordKey{Name: "Acme", Date: "2024-01-01"}

	stored, err := records.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "47.00", stored.Totals.CurrentBill.String())
	assert.Equal(t, "47.00", stored.Summary.RunningBill.String())
	assert.Equal(t, "0.00", stored.Summary.Balance.String())
	assert.Equal(t, "47.00", stored.Summary.Outstanding.String())

	require.NoError(t, records.Delete(ctx, []domain.RecordKey{key}))

	keys, err := records.ListByDate(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = records.Get(ctx, key)
	assert.ErrorIs(t, err, ErrRecordNotFound)

	table, err := reports.BuildReport(ctx, []domain.RecordKey{key})
	require.NoError(t, err)
	assert.Empty(t, table.Sections)
	assert.Equal(t, []domain.RecordKey{key}, table.Missing)
}
