package reports

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Service builds trial balances from posted journal data. Concurrent
// requests for the same quarry and window share one database aggregation.
type Service struct {
	repo  Repository
	group singleflight.Group
}

// NewService constructs the report service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// TrialBalance aggregates the quarry's posted lines into a grouped trial
// balance for the supplied window.
func (s *Service) TrialBalance(ctx context.Context, quarryID int64, from, to time.Time) (TrialBalance, error) {
	key := fmt.Sprintf("tb:%d:%s:%s", quarryID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	result, err, _ := s.group.Do(key, func() (any, error) {
		balances, err := s.repo.AccountBalances(ctx, quarryID, from, to)
		if err != nil {
			return nil, err
		}
		return BuildTrialBalance(balances), nil
	})
	if err != nil {
		return TrialBalance{}, err
	}
	return result.(TrialBalance), nil
}
