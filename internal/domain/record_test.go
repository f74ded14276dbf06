package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyLineRecalculate(t *testing.T) {
	line := CompanyLine{
		Company: "ML",
		Sold:    NewAmount(10),
		Rate:    NewAmount(5),
		PWT:     NewAmount(2),
		VC:      NewAmount(1),
	}
	line.Recalculate()

	assert.Equal(t, "50.00", line.Total.String())
	assert.Equal(t, "47.00", line.CurrentBill.String())
}

func TestCompanyLineRecalculateIgnoresStaleDerivedValues(t *testing.T) {
	line := CompanyLine{
		Company:     "NB",
		Sold:        NewAmount(4),
		Rate:        NewAmount(2.5),
		Total:       NewAmount(9999), // stale, must be overwritten
		CurrentBill: NewAmount(9999),
	}
	line.Recalculate()

	assert.Equal(t, "10.00", line.Total.String())
	assert.Equal(t, "10.00", line.CurrentBill.String())
}

func TestRecordTotalsAggregation(t *testing.T) {
	rec := NewCustomerRecord("Acme", "2024-01-01", []string{"ML", "NB", "Book"})
	rec.CompanyLines[0].Sold = NewAmount(10)
	rec.CompanyLines[0].Rate = NewAmount(5)
	rec.CompanyLines[0].PWT = NewAmount(2)
	rec.CompanyLines[0].VC = NewAmount(1)
	rec.CompanyLines[1].Sold = NewAmount(2)
	rec.CompanyLines[1].Rate = NewAmount(5)
	rec.CompanyLines[2].Sold = NewAmount(3)
	rec.CompanyLines[2].Rate = NewAmount(1)
	rec.CompanyLines[2].PWT = NewAmount(6)
	rec.Recalculate()

	// current bills: 47.00, 10.00, -3.00
	assert.Equal(t, "47.00", rec.CompanyLines[0].CurrentBill.String())
	assert.Equal(t, "10.00", rec.CompanyLines[1].CurrentBill.String())
	assert.Equal(t, "-3.00", rec.CompanyLines[2].CurrentBill.String())

	assert.Equal(t, "15.00", rec.Totals.Sold.String())
	assert.Equal(t, "63.00", rec.Totals.Total.String())
	assert.Equal(t, "54.00", rec.Totals.CurrentBill.String())
	assert.Equal(t, "54.00", rec.Summary.RunningBill.String())
}

func TestOutstandingFollowsBalance(t *testing.T) {
	rec := NewCustomerRecord("Acme", "2024-01-01", []string{"ML"})
	rec.CompanyLines[0].Sold = NewAmount(10.8)
	rec.CompanyLines[0].Rate = NewAmount(5)
	rec.Summary.Balance = NewAmount(10)
	rec.Recalculate()

	assert.Equal(t, "54.00", rec.Summary.RunningBill.String())
	assert.Equal(t, "64.00", rec.Summary.Outstanding.String())

	// A balance edit recomputes outstanding only; the running bill must
	// stay untouched.
	rec.Summary.Balance = NewAmount(-5)
	rec.RecalculateOutstanding()

	assert.Equal(t, "49.00", rec.Summary.Outstanding.String())
	assert.Equal(t, "54.00", rec.Summary.RunningBill.String())
}

func TestRecalculateIdempotent(t *testing.T) {
	rec := NewCustomerRecord("Acme", "2024-01-01", []string{"ML", "NB"})
	rec.CompanyLines[0].Sold = NewAmount(3)
	rec.CompanyLines[0].Rate = NewAmount(3.335)
	rec.CompanyLines[1].Sold = NewAmount(7)
	rec.CompanyLines[1].Rate = NewAmount(0.125)
	rec.Summary.Balance = NewAmount(1.005)
	rec.Recalculate()

	first, err := json.Marshal(rec)
	require.NoError(t, err)

	rec.Recalculate()
	second, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestRoundingHalfUp(t *testing.T) {
	line := CompanyLine{Sold: NewAmount(1), Rate: NewAmount(2.005)}
	line.Recalculate()
	assert.Equal(t, "2.01", line.Total.String())
}

func TestParseAmountLenient(t *testing.T) {
	assert.Equal(t, "0.00", ParseAmount("abc").String())
	assert.Equal(t, "0.00", ParseAmount("").String())
	assert.Equal(t, "0.00", ParseAmount("  ").String())
	assert.Equal(t, "12.50", ParseAmount("12.5").String())
	assert.Equal(t, "-3.00", ParseAmount("-3").String())
}

func TestLenientLineInput(t *testing.T) {
	line := CompanyLine{
		Company: "ML",
		Sold:    ParseAmount("abc"),
		Rate:    ParseAmount("5"),
	}
	line.Recalculate()
	assert.Equal(t, "0.00", line.Total.String())
	assert.Equal(t, "0.00", line.CurrentBill.String())
}

func TestValidate(t *testing.T) {
	rec := NewCustomerRecord("Acme", "2024-01-01", []string{"ML"})
	require.NoError(t, rec.Validate())

	blank := NewCustomerRecord("   ", "2024-01-01", []string{"ML"})
	assert.ErrorIs(t, blank.Validate(), ErrNameRequired)

	empty := NewCustomerRecord("Acme", "2024-01-01", nil)
	assert.ErrorIs(t, empty.Validate(), ErrNoLines)

	badDate := NewCustomerRecord("Acme", "01/01/2024", []string{"ML"})
	assert.ErrorIs(t, badDate.Validate(), ErrBadDate)
}

func TestRecordJSONShape(t *testing.T) {
	rec := NewCustomerRecord("Acme", "2024-01-01", []string{"ML"})
	rec.CompanyLines[0].Sold = NewAmount(10)
	rec.CompanyLines[0].Rate = NewAmount(5)
	rec.CompanyLines[0].PWT = NewAmount(2)
	rec.CompanyLines[0].VC = NewAmount(1)
	rec.Recalculate()

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded CustomerRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Acme", decoded.Name)
	assert.Equal(t, "47.00", decoded.Summary.RunningBill.String())
	assert.Contains(t, string(data), `"runningBill":"47.00"`)
	assert.Contains(t, string(data), `"companies"`)
}

func TestAmountUnmarshalAcceptsNumbersAndGarbage(t *testing.T) {
	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`"47.00"`), &a))
	assert.Equal(t, "47.00", a.String())

	require.NoError(t, json.Unmarshal([]byte(`12.5`), &a))
	assert.Equal(t, "12.50", a.String())

	require.NoError(t, json.Unmarshal([]byte(`"abc"`), &a))
	assert.Equal(t, "0.00", a.String())

	require.NoError(t, json.Unmarshal([]byte(`null`), &a))
	assert.Equal(t, "0.00", a.String())
}
