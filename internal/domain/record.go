package domain

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for record keys
const DateLayout = "2006-01-02"

var (
	ErrNameRequired = errors.New("customer name is required")
	ErrNoLines      = errors.New("record has no company lines")
	ErrBadDate      = errors.New("date must be YYYY-MM-DD")
)

// Field identifies a user-editable numeric field for partial recomputes
type Field string

const (
	FieldSold    Field = "sold"
	FieldRate    Field = "rate"
	FieldPWT     Field = "pwt"
	FieldVC      Field = "vc"
	FieldBalance Field = "balance"
)

// RecordKey is the natural key of a customer record
type RecordKey struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

// String returns the key in "name @ date" form for logs and diagnostics
func (k RecordKey) String() string {
	return k.Name + " @ " + k.Date
}

// CompanyLine is one company's billing row within a customer record.
// Total and CurrentBill are derived; they are recomputed from the other
// fields before every persist or display and never trusted as input.
type CompanyLine struct {
	Company     string `json:"name"`
	Sold        Amount `json:"sold"`
	Rate        Amount `json:"rate"`
	Total       Amount `json:"total"`
	PWT         Amount `json:"pwt"`
	VC          Amount `json:"vc"`
	CurrentBill Amount `json:"currentBill"`
}

// Recalculate refreshes the derived fields of the line
func (l *CompanyLine) Recalculate() {
	l.Total = l.Sold.Mul(l.Rate).Round()
	l.CurrentBill = l.Total.Sub(l.PWT.Add(l.VC)).Round()
}

// Totals is the element-wise sum over a record's company lines
type Totals struct {
	Sold        Amount `json:"sold"`
	Total       Amount `json:"total"`
	PWT         Amount `json:"pwt"`
	VC          Amount `json:"vc"`
	CurrentBill Amount `json:"currentBill"`
}

// Summary holds the running bill figures. RunningBill and Outstanding are
// derived; Balance is user-owned and never overwritten by a recompute.
type Summary struct {
	RunningBill Amount `json:"runningBill"`
	Balance     Amount `json:"balance"`
	Outstanding Amount `json:"outstanding"`
}

// CustomerRecord is the unit of persistence, keyed by (name, date)
type CustomerRecord struct {
	Name         string        `json:"name"`
	Date         string        `json:"date"`
	CompanyLines []CompanyLine `json:"companies"`
	Totals       Totals        `json:"totals"`
	Summary      Summary       `json:"summary"`
	CreatedAt    time.Time     `json:"-"`
	UpdatedAt    time.Time     `json:"-"`
}

// NewCustomerRecord creates a record with one empty line per company
func NewCustomerRecord(name, date string, companies []string) *CustomerRecord {
	now := time.Now()
	rec := &CustomerRecord{
		Name:         strings.TrimSpace(name),
		Date:         date,
		CompanyLines: make([]CompanyLine, 0, len(companies)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, c := range companies {
		rec.CompanyLines = append(rec.CompanyLines, CompanyLine{Company: c})
	}
	rec.Recalculate()
	return rec
}

// Key returns the record's natural key
func (r *CustomerRecord) Key() RecordKey {
	return RecordKey{Name: r.Name, Date: r.Date}
}

// Validate returns an error if the record cannot be persisted
func (r *CustomerRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	if len(r.CompanyLines) == 0 {
		return ErrNoLines
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return ErrBadDate
	}
	return nil
}

// Recalculate refreshes every derived field: each line, then the record
// totals, then the summary. Safe to call repeatedly; recomputing an
// already-consistent record is a no-op.
func (r *CustomerRecord) Recalculate() {
	for i := range r.CompanyLines {
		r.CompanyLines[i].Recalculate()
	}
	r.RecalculateTotals()
	r.RecalculateSummary()
}

// RecalculateLine refreshes a single line plus the dependent totals and
// summary. Out-of-range indices are ignored.
func (r *CustomerRecord) RecalculateLine(i int) {
	if i < 0 || i >= len(r.CompanyLines) {
		return
	}
	r.CompanyLines[i].Recalculate()
	r.RecalculateTotals()
	r.RecalculateSummary()
}

// RecalculateTotals sums the company lines element-wise
func (r *CustomerRecord) RecalculateTotals() {
	var t Totals
	for _, l := range r.CompanyLines {
		t.Sold = t.Sold.Add(l.Sold)
		t.Total = t.Total.Add(l.Total)
		t.PWT = t.PWT.Add(l.PWT)
		t.VC = t.VC.Add(l.VC)
		t.CurrentBill = t.CurrentBill.Add(l.CurrentBill)
	}
	t.Sold = t.Sold.Round()
	t.Total = t.Total.Round()
	t.PWT = t.PWT.Round()
	t.VC = t.VC.Round()
	t.CurrentBill = t.CurrentBill.Round()
	r.Totals = t
}

// RecalculateSummary derives the running bill from the totals and the
// outstanding figure from the running bill plus the user-owned balance
func (r *CustomerRecord) RecalculateSummary() {
	r.Summary.RunningBill = r.Totals.CurrentBill
	r.RecalculateOutstanding()
}

// RecalculateOutstanding refreshes only the outstanding figure. This is
// the balance-edit path: it must never touch RunningBill.
func (r *CustomerRecord) RecalculateOutstanding() {
	r.Summary.Outstanding = r.Summary.RunningBill.Add(r.Summary.Balance).Round()
}
