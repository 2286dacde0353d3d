package expenses

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quarrydesk/quarrydesk/internal/accounting/journals"
	"github.com/quarrydesk/quarrydesk/internal/accounting/mappings"
)

// JournalPort posts balanced entries into the general ledger within the
// caller's transaction.
type JournalPort interface {
	PostEntryTx(ctx context.Context, tx journals.TxRepository, in journals.CreateInput) (journals.JournalEntry, error)
	EntryCommitted(ctx context.Context, actorID int64, entry journals.JournalEntry)
}

// AccountDirectory resolves ledger account ids from mapped codes.
type AccountDirectory interface {
	IDByCode(ctx context.Context, quarryID int64, code string) (int64, error)
}

// Service records expenses and posts them to the ledger: the mapped expense
// account is debited and the paying cash or bank account credited.
type Service struct {
	repo     Repository
	journal  JournalPort
	accounts AccountDirectory
	now      func() time.Time
}

// NewService constructs the expense recorder.
func NewService(repo Repository, journal JournalPort, accounts AccountDirectory) *Service {
	return &Service{repo: repo, journal: journal, accounts: accounts, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// RecordExpense stores the expense and posts its ledger entry in one
// transaction: a failed posting rolls the expense row back.
func (s *Service) RecordExpense(ctx context.Context, in RecordExpenseInput) (Expense, error) {
	if err := in.Validate(); err != nil {
		return Expense{}, err
	}
	expense := Expense{
		QuarryID:    in.QuarryID,
		SourceID:    uuid.New(),
		ExpenseDate: in.ExpenseDate,
		Category:    in.Category,
		Description: in.Description,
		Amount:      in.Amount,
		PaidFrom:    in.PaidFrom,
		CreatedBy:   in.ActorID,
	}
	var entry journals.JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		expense, err = tx.Insert(ctx, expense)
		if err != nil {
			return err
		}
		expenseAccountID, err := s.accounts.IDByCode(ctx, in.QuarryID, mappings.ExpenseAccountCode(in.Category))
		if err != nil {
			return err
		}
		paidFromCode := mappings.CashCode
		if in.PaidFrom == PaymentBank {
			paidFromCode = mappings.BankCode
		}
		paidFromID, err := s.accounts.IDByCode(ctx, in.QuarryID, paidFromCode)
		if err != nil {
			return err
		}
		entry, err = s.journal.PostEntryTx(ctx, tx.Journal(), journals.CreateInput{
			QuarryID:     in.QuarryID,
			EntryDate:    in.ExpenseDate,
			Reference:    fmt.Sprintf("EXP-%d", expense.ID),
			Description:  fmt.Sprintf("%s: %s", in.Category, in.Description),
			Type:         journals.EntryTypeExpense,
			SourceModule: "EXPENSES",
			SourceID:     expense.SourceID,
			ActorID:      in.ActorID,
			Lines: []journals.LineInput{
				{AccountID: expenseAccountID, Debit: in.Amount, Memo: in.Category},
				{AccountID: paidFromID, Credit: in.Amount, Memo: string(in.PaidFrom)},
			},
		})
		if err != nil {
			return err
		}
		return tx.SetJournalEntry(ctx, expense.ID, entry.ID)
	})
	if err != nil {
		return Expense{}, err
	}
	s.journal.EntryCommitted(ctx, in.ActorID, entry)
	expense.JournalEntryID = &entry.ID
	return expense, nil
}

// Get retrieves one expense.
func (s *Service) Get(ctx context.Context, expenseID int64) (Expense, error) {
	return s.repo.Get(ctx, expenseID)
}

// List returns expenses for a quarry, newest first.
func (s *Service) List(ctx context.Context, quarryID int64, limit, offset int) ([]Expense, error) {
	return s.repo.List(ctx, quarryID, limit, offset)
}
