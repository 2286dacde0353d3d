package journals

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quarrydesk/quarrydesk/internal/accounting/periods"
	"github.com/quarrydesk/quarrydesk/internal/accounting/shared"
	"github.com/quarrydesk/quarrydesk/internal/platform/db"
)

// PostingAccount is the slice of a ledger account the engine needs to decide
// whether a line may post against it.
type PostingAccount struct {
	ID       int64
	QuarryID int64
	IsActive bool
}

// TxRepository exposes journal writes bound to one transaction.
type TxRepository interface {
	InsertEntry(ctx context.Context, in CreateInput, period periods.Period) (JournalEntry, error)
	InsertLines(ctx context.Context, entryID int64, lines []LineInput) error
	GetEntryWithLines(ctx context.Context, entryID int64) (JournalEntry, error)
	MarkPosted(ctx context.Context, entryID, actorID int64, postedAt time.Time) error
	GetPostingAccount(ctx context.Context, accountID int64) (PostingAccount, error)
	GetPeriodByDateForUpdate(ctx context.Context, quarryID int64, date time.Time) (periods.Period, error)
	GetNextOpenPeriodAfter(ctx context.Context, quarryID int64, date time.Time) (periods.Period, error)
}

// Repository persists journal entries.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, quarryID int64, limit, offset int) ([]JournalEntry, error)
	Get(ctx context.Context, entryID int64) (JournalEntry, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// NewTxRepository binds journal writes to a transaction another module has
// already opened, so its rows and the ledger entry share one commit.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

const entryColumns = `id, quarry_id, entry_date, reference, description, entry_type, source_module, source_id,
status, posted_by, posted_at, total_debit, total_credit, fiscal_year, period_number, is_active, created_at, updated_at`

func scanEntry(row pgx.Row) (JournalEntry, error) {
	var e JournalEntry
	err := row.Scan(&e.ID, &e.QuarryID, &e.EntryDate, &e.Reference, &e.Description, &e.Type, &e.SourceModule, &e.SourceID,
		&e.Status, &e.PostedBy, &e.PostedAt, &e.TotalDebit, &e.TotalCredit, &e.FiscalYear, &e.PeriodNumber,
		&e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrJournalNotFound
		}
		return JournalEntry{}, err
	}
	return e, nil
}

// WithTx executes fn within a repeatable-read transaction.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("journals repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *repository) List(ctx context.Context, quarryID int64, limit, offset int) ([]JournalEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+`
FROM journal_entries WHERE quarry_id=$1 ORDER BY entry_date DESC, id DESC LIMIT $2 OFFSET $3`, quarryID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *repository) Get(ctx context.Context, entryID int64) (JournalEntry, error) {
	entry, err := scanEntry(r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1`, entryID))
	if err != nil {
		return JournalEntry{}, err
	}
	lines, err := r.queryLines(ctx, entryID)
	if err != nil {
		return JournalEntry{}, err
	}
	entry.Lines = lines
	return entry, nil
}

func (r *repository) queryLines(ctx context.Context, entryID int64) ([]Line, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, entry_id, account_id, debit, credit, memo, line_number, is_active, created_at, updated_at
FROM journal_entry_lines WHERE entry_id=$1 ORDER BY line_number`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLines(rows)
}

func collectLines(rows pgx.Rows) ([]Line, error) {
	var lines []Line
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &line.Debit, &line.Credit,
			&line.Memo, &line.LineNumber, &line.IsActive, &line.CreatedAt, &line.UpdatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertEntry(ctx context.Context, in CreateInput, period periods.Period) (JournalEntry, error) {
	debit, credit := in.Totals()
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries
(quarry_id, entry_date, reference, description, entry_type, source_module, source_id, status, total_debit, total_credit, fiscal_year, period_number, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,'DRAFT',$8,$9,$10,$11,TRUE)
RETURNING id, created_at, updated_at`,
		in.QuarryID, in.EntryDate, in.Reference, in.Description, in.Type, in.SourceModule, in.SourceID,
		debit, credit, period.FiscalYear, period.PeriodNumber)
	entry := JournalEntry{
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
	if err := row.Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_journal_entries_source" {
			return JournalEntry{}, shared.ErrSourceAlreadyLinked
		}
		return JournalEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []LineInput) error {
	for idx, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_entry_lines
(entry_id, account_id, debit, credit, memo, line_number, is_active)
VALUES ($1,$2,$3,$4,$5,$6,TRUE)`,
			entryID, line.AccountID, line.Debit, line.Credit, line.Memo, idx+1); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) GetEntryWithLines(ctx context.Context, entryID int64) (JournalEntry, error) {
	entry, err := scanEntry(r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1 FOR UPDATE`, entryID))
	if err != nil {
		return JournalEntry{}, err
	}
	rows, err := r.tx.Query(ctx, `SELECT id, entry_id, account_id, debit, credit, memo, line_number, is_active, created_at, updated_at
FROM journal_entry_lines WHERE entry_id=$1 ORDER BY line_number`, entryID)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()
	lines, err := collectLines(rows)
	if err != nil {
		return JournalEntry{}, err
	}
	entry.Lines = lines
	return entry, nil
}

func (r *txRepository) MarkPosted(ctx context.Context, entryID, actorID int64, postedAt time.Time) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries
SET status='POSTED', posted_by=$2, posted_at=$3, updated_at=NOW()
WHERE id=$1 AND status='DRAFT'`, entryID, actorID, postedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAlreadyPosted
	}
	return nil
}

func (r *txRepository) GetPostingAccount(ctx context.Context, accountID int64) (PostingAccount, error) {
	var account PostingAccount
	err := r.tx.QueryRow(ctx, `SELECT id, quarry_id, is_active FROM ledger_accounts WHERE id=$1`, accountID).
		Scan(&account.ID, &account.QuarryID, &account.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PostingAccount{}, shared.ErrAccountNotFound
		}
		return PostingAccount{}, err
	}
	return account, nil
}

func (r *txRepository) GetPeriodByDateForUpdate(ctx context.Context, quarryID int64, date time.Time) (periods.Period, error) {
	return r.scanPeriod(ctx, `SELECT id, quarry_id, name, start_date, end_date, fiscal_year, period_number, period_type, is_closed, closed_by, closed_at, notes, created_at, updated_at
FROM accounting_periods WHERE quarry_id=$1 AND $2 BETWEEN start_date AND end_date ORDER BY start_date LIMIT 1 FOR UPDATE`, quarryID, date)
}

func (r *txRepository) GetNextOpenPeriodAfter(ctx context.Context, quarryID int64, date time.Time) (periods.Period, error) {
	return r.scanPeriod(ctx, `SELECT id, quarry_id, name, start_date, end_date, fiscal_year, period_number, period_type, is_closed, closed_by, closed_at, notes, created_at, updated_at
FROM accounting_periods WHERE quarry_id=$1 AND is_closed=FALSE AND start_date >= $2 ORDER BY start_date LIMIT 1 FOR UPDATE`, quarryID, date)
}

func (r *txRepository) scanPeriod(ctx context.Context, query string, args ...any) (periods.Period, error) {
	var p periods.Period
	err := r.tx.QueryRow(ctx, query, args...).
		Scan(&p.ID, &p.QuarryID, &p.Name, &p.StartDate, &p.EndDate, &p.FiscalYear, &p.PeriodNumber,
			&p.Type, &p.IsClosed, &p.ClosedBy, &p.ClosedAt, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return periods.Period{}, shared.ErrNoOpenPeriod
		}
		return periods.Period{}, err
	}
	return p, nil
}
