package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quarrydesk/quarrydesk/internal/accounting/shared"
	"github.com/quarrydesk/quarrydesk/internal/platform/db"
)

// TxRepository exposes write operations bound to one transaction.
type TxRepository interface {
	CountByQuarry(ctx context.Context, quarryID int64) (int, error)
	Insert(ctx context.Context, account Account) (Account, error)
	GetForUpdate(ctx context.Context, accountID int64) (Account, error)
	GetByID(ctx context.Context, accountID int64) (Account, error)
	CodeExists(ctx context.Context, quarryID int64, code string) (bool, error)
	Update(ctx context.Context, account Account) error
	Deactivate(ctx context.Context, accountID int64) error
}

// Repository persists ledger accounts.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListByQuarry(ctx context.Context, quarryID int64) ([]Account, error)
	GetByID(ctx context.Context, accountID int64) (Account, error)
	GetByCode(ctx context.Context, quarryID int64, code string) (Account, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const accountColumns = `id, quarry_id, code, name, category, type, parent_id, is_debit_normal, is_system, display_order, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.QuarryID, &a.Code, &a.Name, &a.Category, &a.Type, &a.ParentID,
		&a.IsDebitNormal, &a.IsSystem, &a.DisplayOrder, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

// WithTx executes fn within a repeatable-read transaction.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("accounts repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *repository) ListByQuarry(ctx context.Context, quarryID int64) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM ledger_accounts WHERE quarry_id=$1 ORDER BY display_order, code`, quarryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, accountID int64) (Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM ledger_accounts WHERE id=$1`, accountID))
}

func (r *repository) GetByCode(ctx context.Context, quarryID int64, code string) (Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM ledger_accounts WHERE quarry_id=$1 AND code=$2`, quarryID, code))
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) CountByQuarry(ctx context.Context, quarryID int64) (int, error) {
	var count int
	err := r.tx.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_accounts WHERE quarry_id=$1`, quarryID).Scan(&count)
	return count, err
}

func (r *txRepository) Insert(ctx context.Context, account Account) (Account, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO ledger_accounts
(quarry_id, code, name, category, type, parent_id, is_debit_normal, is_system, display_order, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id, created_at, updated_at`,
		account.QuarryID, account.Code, account.Name, account.Category, account.Type, account.ParentID,
		account.IsDebitNormal, account.IsSystem, account.DisplayOrder, account.IsActive)
	if err := row.Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
		return Account{}, err
	}
	return account, nil
}

func (r *txRepository) GetForUpdate(ctx context.Context, accountID int64) (Account, error) {
	return scanAccount(r.tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM ledger_accounts WHERE id=$1 FOR UPDATE`, accountID))
}

func (r *txRepository) GetByID(ctx context.Context, accountID int64) (Account, error) {
	return scanAccount(r.tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM ledger_accounts WHERE id=$1`, accountID))
}

func (r *txRepository) CodeExists(ctx context.Context, quarryID int64, code string) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ledger_accounts WHERE quarry_id=$1 AND code=$2)`, quarryID, code).Scan(&exists)
	return exists, err
}

func (r *txRepository) Update(ctx context.Context, account Account) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE ledger_accounts
SET name=$2, parent_id=$3, display_order=$4, is_active=$5, updated_at=NOW()
WHERE id=$1`, account.ID, account.Name, account.ParentID, account.DisplayOrder, account.IsActive)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func (r *txRepository) Deactivate(ctx context.Context, accountID int64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE ledger_accounts SET is_active=FALSE, updated_at=NOW() WHERE id=$1`, accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}
