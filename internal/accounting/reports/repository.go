package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository aggregates posted journal lines per account.
type Repository interface {
	AccountBalances(ctx context.Context, quarryID int64, from, to time.Time) ([]AccountBalance, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// AccountBalances returns every active account of the quarry with opening
// balances accumulated before `from` and movement between `from` and `to`.
// Only POSTED journal entries contribute.
func (r *repository) AccountBalances(ctx context.Context, quarryID int64, from, to time.Time) ([]AccountBalance, error) {
	rows, err := r.pool.Query(ctx, `
SELECT a.code,
       a.name,
       a.category,
       COALESCE(SUM(l.debit - l.credit) FILTER (WHERE e.entry_date < $2), 0)  AS opening,
       COALESCE(SUM(l.debit)  FILTER (WHERE e.entry_date BETWEEN $2 AND $3), 0) AS debit,
       COALESCE(SUM(l.credit) FILTER (WHERE e.entry_date BETWEEN $2 AND $3), 0) AS credit
FROM ledger_accounts a
LEFT JOIN journal_entry_lines l ON l.account_id = a.id AND l.is_active
LEFT JOIN journal_entries e ON e.id = l.entry_id AND e.status = 'POSTED' AND e.is_active
WHERE a.quarry_id = $1 AND a.is_active
GROUP BY a.code, a.name, a.category
ORDER BY a.code`, quarryID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var balances []AccountBalance
	for rows.Next() {
		var b AccountBalance
		var opening, debit, credit decimal.Decimal
		if err := rows.Scan(&b.Code, &b.Name, &b.Category, &opening, &debit, &credit); err != nil {
			return nil, err
		}
		b.Opening, b.Debit, b.Credit = opening, debit, credit
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
