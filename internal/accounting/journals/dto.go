package journals

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quarrydesk/quarrydesk/internal/accounting/shared"
)

// LineInput describes one proposed journal line.
type LineInput struct {
	AccountID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Memo      string
}

// CreateInput groups the fields required to draft a journal entry.
type CreateInput struct {
	QuarryID     int64
	EntryDate    time.Time
	Reference    string
	Description  string
	Type         EntryType
	SourceModule string
	SourceID     uuid.UUID
	ActorID      int64
	Lines        []LineInput
}

// Validate ensures the proposed entry meets the double-entry invariants
// before any database work starts. Debits and credits are compared exactly;
// amounts are decimals so no tolerance is involved.
func (in CreateInput) Validate() error {
	if in.QuarryID == 0 {
		return errors.New("journals: quarry id required")
	}
	if in.EntryDate.IsZero() {
		return errors.New("journals: entry date required")
	}
	switch in.Type {
	case EntryTypeSale, EntryTypeExpense, EntryTypeManual, EntryTypeAdjustment:
	default:
		return fmt.Errorf("journals: unknown entry type %q", in.Type)
	}
	if len(in.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	debit, credit := decimal.Zero, decimal.Zero
	for idx, line := range in.Lines {
		if line.AccountID == 0 {
			return fmt.Errorf("journals: line %d missing account", idx)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("journals: line %d negative amount", idx)
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return fmt.Errorf("journals: line %d cannot be both debit and credit", idx)
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			return fmt.Errorf("journals: line %d has no amount", idx)
		}
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	if !debit.Equal(credit) {
		return shared.ErrUnbalanced
	}
	if in.SourceModule == "" {
		return errors.New("journals: source module required")
	}
	if in.SourceID == uuid.Nil {
		return errors.New("journals: source id required")
	}
	return nil
}

// Totals sums the proposed lines.
func (in CreateInput) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, line := range in.Lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit, credit
}

// ReverseInput wraps parameters for creating an offsetting entry.
type ReverseInput struct {
	EntryID int64
	ActorID int64
	Memo    string
}
