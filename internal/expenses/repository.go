package expenses

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quarrydesk/quarrydesk/internal/accounting/journals"
	"github.com/quarrydesk/quarrydesk/internal/platform/db"
)

// TxRepository exposes expense writes bound to one transaction. Journal
// returns the ledger writer for the same transaction, so the expense row and
// its entry commit or roll back together.
type TxRepository interface {
	Insert(ctx context.Context, expense Expense) (Expense, error)
	SetJournalEntry(ctx context.Context, expenseID, entryID int64) error
	Journal() journals.TxRepository
}

// Repository persists expenses.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, expenseID int64) (Expense, error)
	List(ctx context.Context, quarryID int64, limit, offset int) ([]Expense, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const expenseColumns = `id, quarry_id, source_id, expense_date, category, description, amount, paid_from, journal_entry_id, created_by, created_at, updated_at`

func scanExpense(row pgx.Row) (Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.QuarryID, &e.SourceID, &e.ExpenseDate, &e.Category, &e.Description,
		&e.Amount, &e.PaidFrom, &e.JournalEntryID, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Expense{}, ErrExpenseNotFound
		}
		return Expense{}, err
	}
	return e, nil
}

// WithTx executes fn within a repeatable-read transaction.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) Insert(ctx context.Context, expense Expense) (Expense, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO expenses
(quarry_id, source_id, expense_date, category, description, amount, paid_from, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id, created_at, updated_at`,
		expense.QuarryID, expense.SourceID, expense.ExpenseDate, expense.Category, expense.Description,
		expense.Amount, expense.PaidFrom, expense.CreatedBy)
	if err := row.Scan(&expense.ID, &expense.CreatedAt, &expense.UpdatedAt); err != nil {
		return Expense{}, err
	}
	return expense, nil
}

func (r *txRepository) SetJournalEntry(ctx context.Context, expenseID, entryID int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE expenses SET journal_entry_id=$2, updated_at=NOW() WHERE id=$1`, expenseID, entryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

func (r *txRepository) Journal() journals.TxRepository {
	return journals.NewTxRepository(r.tx)
}

func (r *repository) Get(ctx context.Context, expenseID int64) (Expense, error) {
	return scanExpense(r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id=$1`, expenseID))
}

func (r *repository) List(ctx context.Context, quarryID int64, limit, offset int) ([]Expense, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE quarry_id=$1 ORDER BY expense_date DESC, id DESC LIMIT $2 OFFSET $3`, quarryID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var expenses []Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}
