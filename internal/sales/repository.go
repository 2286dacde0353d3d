package sales

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quarrydesk/quarrydesk/internal/accounting/journals"
	"github.com/quarrydesk/quarrydesk/internal/platform/db"
)

// TxRepository exposes sale writes bound to one transaction. Journal returns
// the ledger writer for the same transaction, so the sale row and its entry
// commit or roll back together.
type TxRepository interface {
	Insert(ctx context.Context, sale Sale) (Sale, error)
	SetJournalEntry(ctx context.Context, saleID, entryID int64) error
	Journal() journals.TxRepository
}

// Repository persists sales.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, saleID int64) (Sale, error)
	List(ctx context.Context, quarryID int64, limit, offset int) ([]Sale, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const saleColumns = `id, quarry_id, source_id, sale_date, customer_name, product_name, quantity, price_per_unit,
commission_per_unit, loaders_fee_rate, land_rate_fee, rejects_fee, gross_amount, commission, loaders_fee,
land_rate_amount, net_amount, journal_entry_id, created_by, created_at, updated_at`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.QuarryID, &s.SourceID, &s.SaleDate, &s.CustomerName, &s.ProductName, &s.Quantity, &s.PricePerUnit,
		&s.CommissionPerUnit, &s.LoadersFeeRate, &s.LandRateFee, &s.RejectsFee, &s.GrossAmount, &s.Commission, &s.LoadersFee,
		&s.LandRateAmount, &s.NetAmount, &s.JournalEntryID, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, ErrSaleNotFound
		}
		return Sale{}, err
	}
	return s, nil
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

func (r *txRepository) Insert(ctx context.Context, sale Sale) (Sale, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO sales
(quarry_id, source_id, sale_date, customer_name, product_name, quantity, price_per_unit, commission_per_unit,
 loaders_fee_rate, land_rate_fee, rejects_fee, gross_amount, commission, loaders_fee, land_rate_amount, net_amount, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
RETURNING id, created_at, updated_at`,
		sale.QuarryID, sale.SourceID, sale.SaleDate, sale.CustomerName, sale.ProductName, sale.Quantity, sale.PricePerUnit,
		sale.CommissionPerUnit, sale.LoadersFeeRate, sale.LandRateFee, sale.RejectsFee, sale.GrossAmount, sale.Commission,
		sale.LoadersFee, sale.LandRateAmount, sale.NetAmount, sale.CreatedBy)
	if err := row.Scan(&sale.ID, &sale.CreatedAt, &sale.UpdatedAt); err != nil {
		return Sale{}, err
	}
	return sale, nil
}

func (r *txRepository) SetJournalEntry(ctx context.Context, saleID, entryID int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE sales SET journal_entry_id=$2, updated_at=NOW() WHERE id=$1`, saleID, entryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrSaleNotFound
	}
	return nil
}

func (r *txRepository) Journal() journals.TxRepository {
	return journals.NewTxRepository(r.tx)
}

func (r *repository) Get(ctx context.Context, saleID int64) (Sale, error) {
	return scanSale(r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id=$1`, saleID))
}

func (r *repository) List(ctx context.Context, quarryID int64, limit, offset int) ([]Sale, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales WHERE quarry_id=$1 ORDER BY sale_date DESC, id DESC LIMIT $2 OFFSET $3`, quarryID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sales []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}
