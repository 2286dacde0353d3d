package journals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType tags where a journal entry originated.
type EntryType string

const (
	EntryTypeSale       EntryType = "SALE"
	EntryTypeExpense    EntryType = "EXPENSE"
	EntryTypeManual     EntryType = "MANUAL"
	EntryTypeAdjustment EntryType = "ADJUSTMENT"
)

// Status enumerates the two-step journal lifecycle. POSTED is terminal;
// corrections happen via reversal entries, never by mutation.
type Status string

const (
	StatusDraft  Status = "DRAFT"
	StatusPosted Status = "POSTED"
)

// JournalEntry captures one balanced double-entry transaction.
type JournalEntry struct {
	ID           int64
	QuarryID     int64
	EntryDate    time.Time
	Reference    string
	Description  string
	Type         EntryType
	SourceModule string
	SourceID     uuid.UUID
	Status       Status
	PostedBy     *int64
	PostedAt     *time.Time
	TotalDebit   decimal.Decimal
	TotalCredit  decimal.Decimal
	FiscalYear   int
	PeriodNumber int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Lines        []Line
}

// IsBalanced reports whether the cached totals agree.
func (e JournalEntry) IsBalanced() bool {
	return e.TotalDebit.Equal(e.TotalCredit)
}

// Line stores a single debit or credit against a ledger account.
type Line struct {
	ID         int64
	EntryID    int64
	AccountID  int64
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	Memo       string
	LineNumber int
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
