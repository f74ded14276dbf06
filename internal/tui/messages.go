package tui

import (
	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/service"
)

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// OpenRecordMsg tells the ledger screen to load a record for editing
type OpenRecordMsg struct {
	Key domain.RecordKey
}

// OpenBlankRecordMsg tells the ledger screen to start a fresh record
type OpenBlankRecordMsg struct{}

// recordLoadedMsg carries a loaded record (or the load error)
type recordLoadedMsg struct {
	record *domain.CustomerRecord
	err    error
}

// recordSavedMsg reports the outcome of a save
type recordSavedMsg struct {
	key domain.RecordKey
	err error
}

// recordsDataMsg carries the record list for the records screen
type recordsDataMsg struct {
	keys      []domain.RecordKey
	lastSaved *domain.RecordKey
	err       error
}

// recordsDeletedMsg reports the outcome of a delete
type recordsDeletedMsg struct {
	err error
}

// reportDataMsg carries built report pages for the report screen
type reportDataMsg struct {
	pages []service.ReportPage
	err   error
}

// lastSavedCheckMsg reports whether a last-saved record exists on startup
type lastSavedCheckMsg struct {
	key *domain.RecordKey
}
