package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/quarrydesk/quarrydesk/internal/jobs"
)

// GLIntegrityJob re-verifies the double-entry invariants over posted data.
// Posting enforces them transactionally, so any hit here points at manual
// database surgery or a defect worth paging about.
type GLIntegrityJob struct {
	Pool    *pgxpool.Pool
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewGLIntegrityJob initialises the integrity scan handler.
func NewGLIntegrityJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *GLIntegrityJob {
	return &GLIntegrityJob{Pool: pool, Logger: logger, Metrics: metrics}
}

// Handle executes the integrity scan.
func (j *GLIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil {
		return errors.New("gl integrity: handler not configured")
	}
	var payload GLIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskGLIntegrityScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int64("quarry_id", payload.QuarryID))
	logger.Info("starting ledger integrity scan")

	unbalanced, err := j.scanUnbalanced(ctx, payload.QuarryID)
	if err != nil {
		resultErr = err
		logger.Error("unbalanced scan failed", slog.Any("error", err))
		return resultErr
	}
	drifted, err := j.scanLineDrift(ctx, payload.QuarryID)
	if err != nil {
		resultErr = err
		logger.Error("line drift scan failed", slog.Any("error", err))
		return resultErr
	}
	strays, err := j.scanPeriodStrays(ctx, payload.QuarryID)
	if err != nil {
		resultErr = err
		logger.Error("period stray scan failed", slog.Any("error", err))
		return resultErr
	}

	for _, id := range unbalanced {
		logger.Warn("posted entry is unbalanced", slog.Int64("entry_id", id))
	}
	for _, id := range drifted {
		logger.Warn("entry totals drift from lines", slog.Int64("entry_id", id))
	}
	for _, id := range strays {
		logger.Warn("posted entry dated outside its period", slog.Int64("entry_id", id))
	}

	j.Metrics.AddDiscrepancies("unbalanced", payload.QuarryID, len(unbalanced))
	j.Metrics.AddDiscrepancies("line_drift", payload.QuarryID, len(drifted))
	j.Metrics.AddDiscrepancies("period_stray", payload.QuarryID, len(strays))

	logger.Info("ledger integrity scan complete",
		slog.Int("unbalanced", len(unbalanced)),
		slog.Int("line_drift", len(drifted)),
		slog.Int("period_strays", len(strays)),
	)
	return nil
}

func (j *GLIntegrityJob) scanUnbalanced(ctx context.Context, quarryID int64) ([]int64, error) {
	return j.collectIDs(ctx, `SELECT id FROM journal_entries
WHERE status='POSTED' AND total_debit <> total_credit AND ($1 = 0 OR quarry_id = $1)
ORDER BY id`, quarryID)
}

func (j *GLIntegrityJob) scanLineDrift(ctx context.Context, quarryID int64) ([]int64, error) {
	return j.collectIDs(ctx, `SELECT e.id FROM journal_entries e
JOIN journal_entry_lines l ON l.entry_id = e.id
WHERE e.status='POSTED' AND ($1 = 0 OR e.quarry_id = $1)
GROUP BY e.id, e.total_debit, e.total_credit
HAVING SUM(l.debit) <> e.total_debit OR SUM(l.credit) <> e.total_credit
ORDER BY e.id`, quarryID)
}

func (j *GLIntegrityJob) scanPeriodStrays(ctx context.Context, quarryID int64) ([]int64, error) {
	return j.collectIDs(ctx, `SELECT e.id FROM journal_entries e
JOIN accounting_periods p
  ON p.quarry_id = e.quarry_id
 AND p.fiscal_year = e.fiscal_year
 AND p.period_number = e.period_number
WHERE e.status='POSTED'
  AND ($1 = 0 OR e.quarry_id = $1)
  AND (e.entry_date < p.start_date OR e.entry_date > p.end_date)
ORDER BY e.id`, quarryID)
}

func (j *GLIntegrityJob) collectIDs(ctx context.Context, query string, quarryID int64) ([]int64, error) {
	rows, err := j.Pool.Query(ctx, query, quarryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (j *GLIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
