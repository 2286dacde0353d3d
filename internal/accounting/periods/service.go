package periods

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quarrydesk/quarrydesk/internal/accounting/shared"
	internalShared "github.com/quarrydesk/quarrydesk/internal/shared"
)

// AuditPort records period lifecycle events.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Notifier announces a closed period to interested listeners, typically by
// enqueueing a background task.
type Notifier interface {
	PeriodClosed(ctx context.Context, period Period) error
}

// Service manages the fiscal calendar of a quarry.
type Service struct {
	repo     Repository
	audit    AuditPort
	notifier Notifier
	now      func() time.Time
}

// NewService constructs the period manager.
func NewService(repo Repository, audit AuditPort, notifier Notifier) *Service {
	return &Service{repo: repo, audit: audit, notifier: notifier, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// SeedYear creates twelve contiguous monthly periods for the fiscal year.
// Months that ended before the current month are created already closed so a
// mid-year onboarding does not leave stale months open. Re-seeding an
// existing year fails with ErrYearExists.
func (s *Service) SeedYear(ctx context.Context, quarryID int64, fiscalYear int, actorID int64) ([]Period, error) {
	if quarryID == 0 {
		return nil, errors.New("periods: quarry id required")
	}
	if fiscalYear < 2000 || fiscalYear > 2100 {
		return nil, fmt.Errorf("periods: implausible fiscal year %d", fiscalYear)
	}
	now := s.now()
	var created []Period
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		count, err := tx.CountByYear(ctx, quarryID, fiscalYear)
		if err != nil {
			return err
		}
		if count > 0 {
			return shared.ErrYearExists
		}
		for month := 1; month <= 12; month++ {
			start := time.Date(fiscalYear, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(0, 1, -1)
			period := Period{
				QuarryID:     quarryID,
				Name:         fmt.Sprintf("%s %d", start.Month(), fiscalYear),
				StartDate:    start,
				EndDate:      end,
				FiscalYear:   fiscalYear,
				PeriodNumber: month,
				Type:         PeriodTypeMonthly,
			}
			if fiscalYear < now.Year() || (fiscalYear == now.Year() && month < int(now.Month())) {
				closedAt := now
				period.IsClosed = true
				period.ClosedBy = &actorID
				period.ClosedAt = &closedAt
				period.Notes = "closed at seeding"
			}
			inserted, err := tx.Insert(ctx, period)
			if err != nil {
				return err
			}
			created = append(created, inserted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  actorID,
			Action:   "periods.seed_year",
			Entity:   "quarry",
			EntityID: fmt.Sprintf("%d", quarryID),
			Meta:     map[string]any{"fiscal_year": fiscalYear},
			At:       now,
		})
	}
	return created, nil
}

// Close transitions an open period to closed. The row is locked for the
// duration of the transaction so a posting racing this close either commits
// first or observes the closed flag. There is no reopen.
func (s *Service) Close(ctx context.Context, periodID, closerID int64, notes string) (Period, error) {
	if periodID == 0 {
		return Period{}, errors.New("periods: period id required")
	}
	var closed Period
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		period, err := tx.GetForUpdate(ctx, periodID)
		if err != nil {
			return err
		}
		if period.IsClosed {
			return shared.ErrPeriodClosed
		}
		closedAt := s.now()
		if err := tx.MarkClosed(ctx, periodID, closerID, closedAt, notes); err != nil {
			return err
		}
		period.IsClosed = true
		period.ClosedBy = &closerID
		period.ClosedAt = &closedAt
		period.Notes = notes
		closed = period
		return nil
	})
	if err != nil {
		return Period{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  closerID,
			Action:   "periods.close",
			Entity:   "accounting_period",
			EntityID: fmt.Sprintf("%d", periodID),
			Meta:     map[string]any{"notes": notes},
			At:       s.now(),
		})
	}
	if s.notifier != nil {
		_ = s.notifier.PeriodClosed(ctx, closed)
	}
	return closed, nil
}

// FindByDate resolves the period covering a posting date.
func (s *Service) FindByDate(ctx context.Context, quarryID int64, date time.Time) (Period, error) {
	return s.repo.FindByDate(ctx, quarryID, date)
}

// ListYear returns the fiscal year's periods in order.
func (s *Service) ListYear(ctx context.Context, quarryID int64, fiscalYear int) ([]Period, error) {
	return s.repo.ListByYear(ctx, quarryID, fiscalYear)
}

// Get retrieves one period.
func (s *Service) Get(ctx context.Context, periodID int64) (Period, error) {
	return s.repo.GetByID(ctx, periodID)
}
