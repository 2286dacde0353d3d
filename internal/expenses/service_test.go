package expenses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydesk/quarrydesk/internal/accounting/journals"
	"github.com/quarrydesk/quarrydesk/internal/accounting/mappings"
)

type mockRepository struct {
	expenses map[int64]Expense
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{expenses: make(map[int64]Expense), nextID: 1}
}

// WithTx stages writes and applies them only when fn succeeds, mirroring a
// transaction rollback on error.
func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &mockTx{repo: m, staged: make(map[int64]Expense)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, e := range tx.staged {
		m.expenses[id] = e
	}
	return nil
}

type mockTx struct {
	repo   *mockRepository
	staged map[int64]Expense
}

func (tx *mockTx) Insert(ctx context.Context, expense Expense) (Expense, error) {
	expense.ID = tx.repo.nextID
	tx.repo.nextID++
	tx.staged[expense.ID] = expense
	return expense, nil
}

func (tx *mockTx) SetJournalEntry(ctx context.Context, expenseID, entryID int64) error {
	e, ok := tx.staged[expenseID]
	if !ok {
		return ErrExpenseNotFound
	}
	e.JournalEntryID = &entryID
	tx.staged[expenseID] = e
	return nil
}

func (tx *mockTx) Journal() journals.TxRepository { return nil }

func (m *mockRepository) Get(ctx context.Context, expenseID int64) (Expense, error) {
	e, ok := m.expenses[expenseID]
	if !ok {
		return Expense{}, ErrExpenseNotFound
	}
	return e, nil
}

func (m *mockRepository) List(ctx context.Context, quarryID int64, limit, offset int) ([]Expense, error) {
	var out []Expense
	for _, e := range m.expenses {
		if e.QuarryID == quarryID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockJournal struct {
	lastInput journals.CreateInput
	committed int
	err       error
}

func (m *mockJournal) PostEntryTx(ctx context.Context, tx journals.TxRepository, in journals.CreateInput) (journals.JournalEntry, error) {
	if m.err != nil {
		return journals.JournalEntry{}, m.err
	}
	m.lastInput = in
	return journals.JournalEntry{ID: 42, QuarryID: in.QuarryID, Status: journals.StatusPosted}, nil
}

func (m *mockJournal) EntryCommitted(ctx context.Context, actorID int64, entry journals.JournalEntry) {
	m.committed++
}

type mockDirectory struct {
	ids map[string]int64
}

func (m *mockDirectory) IDByCode(ctx context.Context, quarryID int64, code string) (int64, error) {
	id, ok := m.ids[code]
	if !ok {
		return 0, errors.New("expenses: unmapped account " + code)
	}
	return id, nil
}

func directoryWithDefaults() *mockDirectory {
	return &mockDirectory{ids: map[string]int64{
		mappings.CashCode: 1,
		mappings.BankCode: 2,
		"6000":            60,
		"6100":            61,
		"6900":            69,
	}}
}

func expenseInput() RecordExpenseInput {
	return RecordExpenseInput{
		QuarryID:    7,
		ExpenseDate: time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC),
		Category:    "Fuel",
		Description: "Diesel for excavator",
		Amount:      decimal.NewFromInt(8200),
		PaidFrom:    PaymentCash,
		ActorID:     10,
	}
}

func TestRecordExpenseDebitsMappedAccount(t *testing.T) {
	repo := newMockRepository()
	journal := &mockJournal{}
	service := NewService(repo, journal, directoryWithDefaults())

	expense, err := service.RecordExpense(context.Background(), expenseInput())
	require.NoError(t, err)
	require.NotNil(t, expense.JournalEntryID)
	assert.Equal(t, int64(42), *expense.JournalEntryID)

	in := journal.lastInput
	assert.Equal(t, journals.EntryTypeExpense, in.Type)
	assert.Equal(t, "EXPENSES", in.SourceModule)
	require.Len(t, in.Lines, 2)

	// Fuel maps to 6000; cash payment credits 1000.
	assert.Equal(t, int64(60), in.Lines[0].AccountID)
	assert.True(t, decimal.NewFromInt(8200).Equal(in.Lines[0].Debit))
	assert.Equal(t, int64(1), in.Lines[1].AccountID)
	assert.True(t, decimal.NewFromInt(8200).Equal(in.Lines[1].Credit))
}

func TestRecordExpenseCreditsBankWhenPaidFromBank(t *testing.T) {
	repo := newMockRepository()
	journal := &mockJournal{}
	service := NewService(repo, journal, directoryWithDefaults())

	in := expenseInput()
	in.Category = "Salaries"
	in.PaidFrom = PaymentBank

	_, err := service.RecordExpense(context.Background(), in)
	require.NoError(t, err)

	lines := journal.lastInput.Lines
	assert.Equal(t, int64(61), lines[0].AccountID)
	assert.Equal(t, int64(2), lines[1].AccountID)
}

func TestRecordExpenseFallsBackToMiscellaneous(t *testing.T) {
	repo := newMockRepository()
	journal := &mockJournal{}
	service := NewService(repo, journal, directoryWithDefaults())

	in := expenseInput()
	in.Category = "Office tea"

	_, err := service.RecordExpense(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(69), journal.lastInput.Lines[0].AccountID)
}

func TestRecordExpenseRejectsInvalidInput(t *testing.T) {
	service := NewService(newMockRepository(), &mockJournal{}, directoryWithDefaults())

	in := expenseInput()
	in.Amount = decimal.Zero
	_, err := service.RecordExpense(context.Background(), in)
	assert.Error(t, err)

	in = expenseInput()
	in.PaidFrom = PaymentMethod("MPESA")
	_, err = service.RecordExpense(context.Background(), in)
	assert.Error(t, err)
}

func TestRecordExpenseRollsBackWhenJournalFails(t *testing.T) {
	repo := newMockRepository()
	journal := &mockJournal{err: errors.New("no open period")}
	service := NewService(repo, journal, directoryWithDefaults())

	_, err := service.RecordExpense(context.Background(), expenseInput())
	require.Error(t, err)

	// The failed posting rolls the expense row back with it.
	assert.Empty(t, repo.expenses)
	assert.Zero(t, journal.committed)

	// A retry once the ledger recovers leaves exactly one linked expense.
	journal.err = nil
	expense, err := service.RecordExpense(context.Background(), expenseInput())
	require.NoError(t, err)
	require.NotNil(t, expense.JournalEntryID)
	assert.Len(t, repo.expenses, 1)
	assert.Equal(t, 1, journal.committed)
}
