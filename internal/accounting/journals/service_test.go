package journals

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydesk/quarrydesk/internal/accounting/periods"
	"github.com/quarrydesk/quarrydesk/internal/accounting/shared"
)

type mockRepository struct {
	periods  []periods.Period
	entries  map[int64]JournalEntry
	lines    map[int64][]Line
	accounts map[int64]PostingAccount
	sources  map[string]int64
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		entries:  make(map[int64]JournalEntry),
		lines:    make(map[int64][]Line),
		accounts: make(map[int64]PostingAccount),
		sources:  make(map[string]int64),
		nextID:   1,
	}
}

func (m *mockRepository) addAccount(id, quarryID int64) {
	m.accounts[id] = PostingAccount{ID: id, QuarryID: quarryID, IsActive: true}
}

func (m *mockRepository) addPeriod(p periods.Period) {
	m.periods = append(m.periods, p)
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &mockTx{mock: m})
}

func (m *mockRepository) List(ctx context.Context, quarryID int64, limit, offset int) ([]JournalEntry, error) {
	var out []JournalEntry
	for _, e := range m.entries {
		if e.QuarryID == quarryID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, entryID int64) (JournalEntry, error) {
	e, ok := m.entries[entryID]
	if !ok {
		return JournalEntry{}, shared.ErrJournalNotFound
	}
	e.Lines = m.lines[entryID]
	return e, nil
}

type mockTx struct {
	mock *mockRepository
}

func (tx *mockTx) InsertEntry(ctx context.Context, in CreateInput, period periods.Period) (JournalEntry, error) {
	sourceKey := in.SourceModule + "|" + in.SourceID.String()
	if _, taken := tx.mock.sources[sourceKey]; taken {
		return JournalEntry{}, shared.ErrSourceAlreadyLinked
	}
	debit, credit := in.Totals()
	entry := JournalEntry{
		ID:           tx.mock.nextID,
		QuarryID:     in.QuarryID,
		EntryDate:    in.EntryDate,
		Reference:    in.Reference,
		Description:  in.Description,
		Type:         in.Type,
		SourceModule: in.SourceModule,
		SourceID:     in.SourceID,
		Status:       StatusDraft,
		TotalDebit:   debit,
		TotalCredit:  credit,
		FiscalYear:   period.FiscalYear,
		PeriodNumber: period.PeriodNumber,
		IsActive:     true,
	}
	tx.mock.nextID++
	tx.mock.entries[entry.ID] = entry
	tx.mock.sources[sourceKey] = entry.ID
	return entry, nil
}

func (tx *mockTx) InsertLines(ctx context.Context, entryID int64, lines []LineInput) error {
	for idx, line := range lines {
		tx.mock.lines[entryID] = append(tx.mock.lines[entryID], Line{
			ID:         int64(idx + 1),
			EntryID:    entryID,
			AccountID:  line.AccountID,
			Debit:      line.Debit,
			Credit:     line.Credit,
			Memo:       line.Memo,
			LineNumber: idx + 1,
			IsActive:   true,
		})
	}
	return nil
}

func (tx *mockTx) GetEntryWithLines(ctx context.Context, entryID int64) (JournalEntry, error) {
	return tx.mock.Get(ctx, entryID)
}

func (tx *mockTx) MarkPosted(ctx context.Context, entryID, actorID int64, postedAt time.Time) error {
	e, ok := tx.mock.entries[entryID]
	if !ok {
		return shared.ErrJournalNotFound
	}
	if e.Status != StatusDraft {
		return shared.ErrAlreadyPosted
	}
	e.Status = StatusPosted
	e.PostedBy = &actorID
	e.PostedAt = &postedAt
	tx.mock.entries[entryID] = e
	return nil
}

func (tx *mockTx) GetPostingAccount(ctx context.Context, accountID int64) (PostingAccount, error) {
	a, ok := tx.mock.accounts[accountID]
	if !ok {
		return PostingAccount{}, shared.ErrAccountNotFound
	}
	return a, nil
}

func (tx *mockTx) GetPeriodByDateForUpdate(ctx context.Context, quarryID int64, date time.Time) (periods.Period, error) {
	for _, p := range tx.mock.periods {
		if p.QuarryID == quarryID && !date.Before(p.StartDate) && !date.After(p.EndDate) {
			return p, nil
		}
	}
	return periods.Period{}, shared.ErrNoOpenPeriod
}

func (tx *mockTx) GetNextOpenPeriodAfter(ctx context.Context, quarryID int64, date time.Time) (periods.Period, error) {
	for _, p := range tx.mock.periods {
		if p.QuarryID == quarryID && !p.IsClosed && !p.StartDate.Before(date) {
			return p, nil
		}
	}
	return periods.Period{}, shared.ErrNoOpenPeriod
}

func openPeriod(quarryID int64, year, month int) periods.Period {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return periods.Period{
		ID:           int64(year*100 + month),
		QuarryID:     quarryID,
		StartDate:    start,
		EndDate:      start.AddDate(0, 1, -1),
		FiscalYear:   year,
		PeriodNumber: month,
	}
}

func balancedInput(quarryID int64, date time.Time) CreateInput {
	return CreateInput{
		QuarryID:     quarryID,
		EntryDate:    date,
		Reference:    "TEST-1",
		Description:  "test entry",
		Type:         EntryTypeManual,
		SourceModule: "TEST",
		SourceID:     uuid.New(),
		ActorID:      10,
		Lines: []LineInput{
			{AccountID: 1, Debit: decimal.NewFromInt(100)},
			{AccountID: 2, Credit: decimal.NewFromInt(100)},
		},
	}
}

func TestCreateRejectsUnbalancedLines(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, nil)

	in := balancedInput(7, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	in.Lines[1].Credit = decimal.NewFromInt(90)

	_, err := service.Create(context.Background(), in)
	assert.ErrorIs(t, err, shared.ErrUnbalanced)
}

func TestCreateRejectsSingleLine(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, nil)

	in := balancedInput(7, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	in.Lines = in.Lines[:1]

	_, err := service.Create(context.Background(), in)
	assert.ErrorIs(t, err, shared.ErrTooFewLines)
}

func TestCreateRejectsClosedPeriod(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 7)
	repo.addAccount(2, 7)
	closed := openPeriod(7, 2026, 3)
	closed.IsClosed = true
	repo.addPeriod(closed)
	service := NewService(repo, nil)

	_, err := service.Create(context.Background(), balancedInput(7, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.ErrorIs(t, err, shared.ErrPeriodClosed)
}

func TestCreateRejectsMissingPeriod(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 7)
	repo.addAccount(2, 7)
	service := NewService(repo, nil)

	_, err := service.Create(context.Background(), balancedInput(7, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.ErrorIs(t, err, shared.ErrNoOpenPeriod)
}

func TestCreateRejectsForeignAccount(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 7)
	repo.addAccount(2, 99)
	repo.addPeriod(openPeriod(7, 2026, 3))
	service := NewService(repo, nil)

	_, err := service.Create(context.Background(), balancedInput(7, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.ErrorIs(t, err, shared.ErrAccountNotPostable)
}

func TestCreateDraftsEntry(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 7)
	repo.addAccount(2, 7)
	repo.addPeriod(openPeriod(7, 2026, 3))
	service := NewService(repo, nil)

	entry, err := service.Create(context.Background(), balancedInput(7, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, entry.Status)
	assert.Equal(t, 2026, entry.FiscalYear)
	assert.Equal(t, 3, entry.PeriodNumber)
	assert.True(t, entry.IsBalanced())
}

func TestPostTransitionsDraft(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 7)
	repo.addAccount(2, 7)
	repo.addPeriod(openPeriod(7, 2026, 3))
	service := NewService(repo, nil)

	entry, err := service.Create(context.Background(), balancedInput(7, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	posted, err := service.Post(context.Background(), entry.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, StatusPosted, posted.Status)
	require.NotNil(t, posted.PostedBy)
	assert.Equal(t, int64(10), *posted.PostedBy)
	assert.NotNil(t, posted.PostedAt)
}

func TestPostRejectsAlreadyPosted(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 7)
	repo.addAccount(2, 7)
	repo.addPeriod(openPeriod(7, 2026, 3))
	service := NewService(repo, nil)

	entry, err := service.PostEntry(context.Background(), balancedInput(7, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	_, err = service.Post(context.Background(), entry.ID, 10)
	assert.ErrorIs(t, err, shared.ErrAlreadyPosted)
}

func TestPostEntryRejectsDuplicateSource(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 7)
	repo.addAccount(2, 7)
	repo.addPeriod(openPeriod(7, 2026, 3))
	service := NewService(repo, nil)

	in := balancedInput(7, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	_, err := service.PostEntry(context.Background(), in)
	require.NoError(t, err)

	_, err = service.PostEntry(context.Background(), in)
	assert.ErrorIs(t, err, shared.ErrSourceAlreadyLinked)
}

func TestReverseSwapsDebitsAndCredits(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 7)
	repo.addAccount(2, 7)
	repo.addPeriod(openPeriod(7, 2026, 3))
	service := NewService(repo, nil)

	entry, err := service.PostEntry(context.Background(), balancedInput(7, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	reversal, err := service.Reverse(context.Background(), ReverseInput{EntryID: entry.ID, ActorID: 10})
	require.NoError(t, err)
	assert.Equal(t, StatusPosted, reversal.Status)
	assert.Equal(t, EntryTypeAdjustment, reversal.Type)
	assert.Equal(t, "TEST:REVERSAL", reversal.SourceModule)
	assert.Equal(t, entry.EntryDate, reversal.EntryDate)

	require.Len(t, reversal.Lines, 2)
	assert.Equal(t, int64(1), reversal.Lines[0].AccountID)
	assert.True(t, reversal.Lines[0].Debit.IsZero())
	assert.True(t, decimal.NewFromInt(100).Equal(reversal.Lines[0].Credit))
	assert.True(t, decimal.NewFromInt(100).Equal(reversal.Lines[1].Debit))
	assert.True(t, reversal.Lines[1].Credit.IsZero())
}

func TestReverseRejectsDraftEntry(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 7)
	repo.addAccount(2, 7)
	repo.addPeriod(openPeriod(7, 2026, 3))
	service := NewService(repo, nil)

	entry, err := service.Create(context.Background(), balancedInput(7, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	_, err = service.Reverse(context.Background(), ReverseInput{EntryID: entry.ID, ActorID: 10})
	assert.ErrorIs(t, err, shared.ErrNotPosted)
}

func TestReverseLandsInNextOpenPeriodWhenOriginalClosed(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 7)
	repo.addAccount(2, 7)
	march := openPeriod(7, 2026, 3)
	repo.addPeriod(march)
	april := openPeriod(7, 2026, 4)
	repo.addPeriod(april)
	service := NewService(repo, nil)

	entry, err := service.PostEntry(context.Background(), balancedInput(7, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	// Close March after the entry posted.
	repo.periods[0].IsClosed = true

	reversal, err := service.Reverse(context.Background(), ReverseInput{EntryID: entry.ID, ActorID: 10})
	require.NoError(t, err)
	assert.Equal(t, april.StartDate, reversal.EntryDate)
	assert.Equal(t, 4, reversal.PeriodNumber)
}

func TestReverseDefaultMemoNamesOriginal(t *testing.T) {
	repo := newMockRepository()
	repo.addAccount(1, 7)
	repo.addAccount(2, 7)
	repo.addPeriod(openPeriod(7, 2026, 3))
	service := NewService(repo, nil)

	entry, err := service.PostEntry(context.Background(), balancedInput(7, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	reversal, err := service.Reverse(context.Background(), ReverseInput{EntryID: entry.ID, ActorID: 10})
	require.NoError(t, err)
	assert.Contains(t, reversal.Description, "Reversal of journal entry")
}
