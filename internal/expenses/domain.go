package expenses

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod records where an expense was paid from.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentBank PaymentMethod = "BANK"
)

// Expense records one operating cost and the journal entry it produced.
type Expense struct {
	ID             int64
	QuarryID       int64
	SourceID       uuid.UUID
	ExpenseDate    time.Time
	Category       string
	Description    string
	Amount         decimal.Decimal
	PaidFrom       PaymentMethod
	JournalEntryID *int64
	CreatedBy      int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RecordExpenseInput captures an expense to be recorded and journalled.
type RecordExpenseInput struct {
	QuarryID    int64
	ExpenseDate time.Time
	Category    string
	Description string
	Amount      decimal.Decimal
	PaidFrom    PaymentMethod
	ActorID     int64
}

// Validate checks required fields.
func (in RecordExpenseInput) Validate() error {
	if in.QuarryID == 0 {
		return errors.New("expenses: quarry id required")
	}
	if in.ExpenseDate.IsZero() {
		return errors.New("expenses: expense date required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return errors.New("expenses: category required")
	}
	if !in.Amount.IsPositive() {
		return errors.New("expenses: amount must be positive")
	}
	switch in.PaidFrom {
	case PaymentCash, PaymentBank:
	default:
		return errors.New("expenses: payment method must be CASH or BANK")
	}
	return nil
}

// ErrExpenseNotFound indicates a missing expense row.
var ErrExpenseNotFound = errors.New("expenses: expense not found")
