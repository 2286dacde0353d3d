package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quarrydesk/quarrydesk/internal/accounting/shared"
	internalShared "github.com/quarrydesk/quarrydesk/internal/shared"
)

// AuditPort records registry changes for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Service manages the per-quarry ledger account registry.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the registry service.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Seed copies the chart of accounts template into the quarry. A quarry that
// already has accounts is left untouched and 0 is returned. The whole batch
// is written in one transaction.
func (s *Service) Seed(ctx context.Context, quarryID int64) (int, error) {
	if quarryID == 0 {
		return 0, errors.New("accounts: quarry id required")
	}
	seeded := 0
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		count, err := tx.CountByQuarry(ctx, quarryID)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		idsByCode := make(map[string]int64, len(ChartTemplate))
		for order, tpl := range ChartTemplate {
			account := Account{
				QuarryID:      quarryID,
				Code:          tpl.Code,
				Name:          tpl.Name,
				Category:      tpl.Category,
				Type:          tpl.Type,
				IsDebitNormal: tpl.Category.DebitNormal(),
				IsSystem:      true,
				DisplayOrder:  (order + 1) * 10,
				IsActive:      true,
			}
			if tpl.ParentCode != "" {
				parentID, ok := idsByCode[tpl.ParentCode]
				if !ok {
					return fmt.Errorf("accounts: template parent %s not seeded before %s", tpl.ParentCode, tpl.Code)
				}
				account.ParentID = &parentID
			}
			inserted, err := tx.Insert(ctx, account)
			if err != nil {
				return err
			}
			idsByCode[tpl.Code] = inserted.ID
			seeded++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if seeded > 0 && s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			Action:   "accounts.seed",
			Entity:   "quarry",
			EntityID: fmt.Sprintf("%d", quarryID),
			Meta:     map[string]any{"count": seeded},
			At:       s.now(),
		})
	}
	return seeded, nil
}

// CreateInput captures fields for a custom ledger account.
type CreateInput struct {
	QuarryID     int64
	Code         string
	Name         string
	Category     Category
	Type         AccountType
	ParentID     *int64
	DisplayOrder int
	ActorID      int64
}

// Validate checks required fields and the category set.
func (in CreateInput) Validate() error {
	if in.QuarryID == 0 {
		return errors.New("accounts: quarry id required")
	}
	if strings.TrimSpace(in.Code) == "" {
		return errors.New("accounts: code required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("accounts: name required")
	}
	if !in.Category.Valid() {
		return fmt.Errorf("accounts: unknown category %q", in.Category)
	}
	return nil
}

// Create adds a custom account beneath the seeded chart. The code must be
// unique within the quarry and the parent, when given, must belong to the
// same quarry.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	if err := in.Validate(); err != nil {
		return Account{}, err
	}
	var created Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		taken, err := tx.CodeExists(ctx, in.QuarryID, in.Code)
		if err != nil {
			return err
		}
		if taken {
			return shared.ErrAccountCodeTaken
		}
		if in.ParentID != nil {
			parent, err := tx.GetByID(ctx, *in.ParentID)
			if err != nil {
				return err
			}
			if parent.QuarryID != in.QuarryID {
				return shared.ErrAccountNotFound
			}
		}
		created, err = tx.Insert(ctx, Account{
			QuarryID:      in.QuarryID,
			Code:          strings.TrimSpace(in.Code),
			Name:          strings.TrimSpace(in.Name),
			Category:      in.Category,
			Type:          in.Type,
			ParentID:      in.ParentID,
			IsDebitNormal: in.Category.DebitNormal(),
			DisplayOrder:  in.DisplayOrder,
			IsActive:      true,
		})
		return err
	})
	if err != nil {
		return Account{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  in.ActorID,
			Action:   "accounts.create",
			Entity:   "ledger_account",
			EntityID: fmt.Sprintf("%d", created.ID),
			Meta:     map[string]any{"code": created.Code},
			At:       s.now(),
		})
	}
	return created, nil
}

// Reparent moves an account beneath a new parent, refusing assignments that
// would cycle or cross quarries.
func (s *Service) Reparent(ctx context.Context, accountID int64, newParentID *int64, actorID int64) error {
	if accountID == 0 {
		return errors.New("accounts: account id required")
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		account, err := tx.GetForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if newParentID != nil {
			if *newParentID == accountID {
				return shared.ErrParentCycle
			}
			parent, err := tx.GetByID(ctx, *newParentID)
			if err != nil {
				return err
			}
			if parent.QuarryID != account.QuarryID {
				return shared.ErrAccountNotFound
			}
			// Walk the prospective parent chain; hitting the account
			// being moved, or any id twice, means the assignment
			// would form a loop.
			seen := map[int64]struct{}{accountID: {}, parent.ID: {}}
			cursor := parent
			for cursor.ParentID != nil {
				next := *cursor.ParentID
				if _, ok := seen[next]; ok {
					return shared.ErrParentCycle
				}
				seen[next] = struct{}{}
				cursor, err = tx.GetByID(ctx, next)
				if err != nil {
					return err
				}
			}
		}
		account.ParentID = newParentID
		return tx.Update(ctx, account)
	})
	if err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  actorID,
			Action:   "accounts.reparent",
			Entity:   "ledger_account",
			EntityID: fmt.Sprintf("%d", accountID),
			At:       s.now(),
		})
	}
	return nil
}

// Deactivate soft-deletes a non-system account.
func (s *Service) Deactivate(ctx context.Context, accountID, actorID int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		account, err := tx.GetForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if account.IsSystem {
			return shared.ErrSystemAccount
		}
		return tx.Deactivate(ctx, accountID)
	})
	if err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  actorID,
			Action:   "accounts.deactivate",
			Entity:   "ledger_account",
			EntityID: fmt.Sprintf("%d", accountID),
			At:       s.now(),
		})
	}
	return nil
}

// List returns every account for a quarry ordered for display.
func (s *Service) List(ctx context.Context, quarryID int64) ([]Account, error) {
	return s.repo.ListByQuarry(ctx, quarryID)
}

// Get retrieves one account.
func (s *Service) Get(ctx context.Context, accountID int64) (Account, error) {
	return s.repo.GetByID(ctx, accountID)
}

// IDByCode resolves an account id from its code within a quarry. Used by the
// sale and expense recorders to translate mapped codes into posting targets.
func (s *Service) IDByCode(ctx context.Context, quarryID int64, code string) (int64, error) {
	account, err := s.repo.GetByCode(ctx, quarryID, code)
	if err != nil {
		return 0, err
	}
	if !account.IsActive {
		return 0, shared.ErrAccountNotPostable
	}
	return account.ID, nil
}
