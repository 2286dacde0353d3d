package periods

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quarrydesk/quarrydesk/internal/accounting/shared"
	"github.com/quarrydesk/quarrydesk/internal/platform/db"
)

// TxRepository exposes period writes bound to one transaction.
type TxRepository interface {
	CountByYear(ctx context.Context, quarryID int64, fiscalYear int) (int, error)
	Insert(ctx context.Context, period Period) (Period, error)
	GetForUpdate(ctx context.Context, periodID int64) (Period, error)
	MarkClosed(ctx context.Context, periodID, closerID int64, closedAt time.Time, notes string) error
}

// Repository persists accounting periods.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	FindByDate(ctx context.Context, quarryID int64, date time.Time) (Period, error)
	ListByYear(ctx context.Context, quarryID int64, fiscalYear int) ([]Period, error)
	GetByID(ctx context.Context, periodID int64) (Period, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const periodColumns = `id, quarry_id, name, start_date, end_date, fiscal_year, period_number, period_type, is_closed, closed_by, closed_at, notes, created_at, updated_at`

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.QuarryID, &p.Name, &p.StartDate, &p.EndDate, &p.FiscalYear, &p.PeriodNumber,
		&p.Type, &p.IsClosed, &p.ClosedBy, &p.ClosedAt, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrPeriodNotFound
		}
		return Period{}, err
	}
	return p, nil
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("periods repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *repository) FindByDate(ctx context.Context, quarryID int64, date time.Time) (Period, error) {
	period, err := scanPeriod(r.pool.QueryRow(ctx, `SELECT `+periodColumns+`
FROM accounting_periods WHERE quarry_id=$1 AND $2 BETWEEN start_date AND end_date ORDER BY start_date LIMIT 1`, quarryID, date))
	if errors.Is(err, shared.ErrPeriodNotFound) {
		return Period{}, shared.ErrNoOpenPeriod
	}
	return period, err
}

func (r *repository) ListByYear(ctx context.Context, quarryID int64, fiscalYear int) ([]Period, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+periodColumns+`
FROM accounting_periods WHERE quarry_id=$1 AND fiscal_year=$2 ORDER BY period_number`, quarryID, fiscalYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Period
	for rows.Next() {
		period, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, period)
	}
	return out, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, periodID int64) (Period, error) {
	return scanPeriod(r.pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE id=$1`, periodID))
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) CountByYear(ctx context.Context, quarryID int64, fiscalYear int) (int, error) {
	var count int
	err := r.tx.QueryRow(ctx, `SELECT COUNT(*) FROM accounting_periods WHERE quarry_id=$1 AND fiscal_year=$2`, quarryID, fiscalYear).Scan(&count)
	return count, err
}

func (r *txRepository) Insert(ctx context.Context, period Period) (Period, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO accounting_periods
(quarry_id, name, start_date, end_date, fiscal_year, period_number, period_type, is_closed, closed_by, closed_at, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING id, created_at, updated_at`,
		period.QuarryID, period.Name, period.StartDate, period.EndDate, period.FiscalYear, period.PeriodNumber,
		period.Type, period.IsClosed, period.ClosedBy, period.ClosedAt, period.Notes)
	if err := row.Scan(&period.ID, &period.CreatedAt, &period.UpdatedAt); err != nil {
		return Period{}, err
	}
	return period, nil
}

func (r *txRepository) GetForUpdate(ctx context.Context, periodID int64) (Period, error) {
	return scanPeriod(r.tx.QueryRow(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE id=$1 FOR UPDATE`, periodID))
}

func (r *txRepository) MarkClosed(ctx context.Context, periodID, closerID int64, closedAt time.Time, notes string) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE accounting_periods
SET is_closed=TRUE, closed_by=$2, closed_at=$3, notes=$4, updated_at=NOW()
WHERE id=$1`, periodID, closerID, closedAt, notes)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrPeriodNotFound
	}
	return nil
}
