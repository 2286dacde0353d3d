package journals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quarrydesk/quarrydesk/internal/accounting/periods"
	"github.com/quarrydesk/quarrydesk/internal/accounting/shared"
	internalShared "github.com/quarrydesk/quarrydesk/internal/shared"
)

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// PostedObserver counts successfully posted entries.
type PostedObserver interface {
	JournalPosted()
}

// Service is the journal entry engine: it drafts, posts, and reverses
// balanced double-entry records against the quarry's ledger.
type Service struct {
	repo   Repository
	audit  AuditPort
	posted PostedObserver
	now    func() time.Time
}

// NewService constructs the engine.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithMetrics attaches an observer notified on every successful post.
func (s *Service) WithMetrics(observer PostedObserver) {
	s.posted = observer
}

func (s *Service) observePosted() {
	if s.posted != nil {
		s.posted.JournalPosted()
	}
}

// Create validates and persists a draft entry with its lines atomically.
func (s *Service) Create(ctx context.Context, in CreateInput) (JournalEntry, error) {
	if err := in.Validate(); err != nil {
		return JournalEntry{}, err
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		entry, err = s.createTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

// Post transitions a draft entry to POSTED. The covering period row is locked
// while the flag is re-checked, so a close racing this post serialises.
func (s *Service) Post(ctx context.Context, entryID, actorID int64) (JournalEntry, error) {
	if entryID == 0 {
		return JournalEntry{}, errors.New("journals: entry id required")
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryWithLines(ctx, entryID)
		if err != nil {
			return err
		}
		entry, err = s.postTx(ctx, tx, current, actorID)
		return err
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.observePosted()
	s.recordAudit(ctx, actorID, "journal.post", entry)
	return entry, nil
}

// PostEntry drafts and posts in a single transaction.
func (s *Service) PostEntry(ctx context.Context, in CreateInput) (JournalEntry, error) {
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		entry, err = s.PostEntryTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.EntryCommitted(ctx, in.ActorID, entry)
	return entry, nil
}

// PostEntryTx drafts and posts inside the caller's transaction. The sale and
// expense recorders use it so the business row and its ledger entry commit or
// roll back together; the caller reports the commit via EntryCommitted.
func (s *Service) PostEntryTx(ctx context.Context, tx TxRepository, in CreateInput) (JournalEntry, error) {
	if err := in.Validate(); err != nil {
		return JournalEntry{}, err
	}
	created, err := s.createTx(ctx, tx, in)
	if err != nil {
		return JournalEntry{}, err
	}
	return s.postTx(ctx, tx, created, in.ActorID)
}

// EntryCommitted records metrics and the audit trail for an entry whose
// enclosing transaction has committed.
func (s *Service) EntryCommitted(ctx context.Context, actorID int64, entry JournalEntry) {
	s.observePosted()
	s.recordAudit(ctx, actorID, "journal.post", entry)
}

// Reverse creates an offsetting entry for a posted journal: every debit
// becomes a credit and vice versa. When the original period has since been
// closed, the reversal lands on the first day of the next open period.
func (s *Service) Reverse(ctx context.Context, in ReverseInput) (JournalEntry, error) {
	if in.EntryID == 0 {
		return JournalEntry{}, errors.New("journals: entry id required")
	}
	var reversal JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetEntryWithLines(ctx, in.EntryID)
		if err != nil {
			return err
		}
		if original.Status != StatusPosted {
			return shared.ErrNotPosted
		}
		targetDate := original.EntryDate
		period, err := tx.GetPeriodByDateForUpdate(ctx, original.QuarryID, targetDate)
		if err != nil {
			return err
		}
		if period.IsClosed {
			period, err = tx.GetNextOpenPeriodAfter(ctx, original.QuarryID, period.EndDate.AddDate(0, 0, 1))
			if err != nil {
				return err
			}
			targetDate = period.StartDate
		}
		posting := CreateInput{
			QuarryID:     original.QuarryID,
			EntryDate:    targetDate,
			Reference:    original.Reference,
			Description:  reversalMemo(in.Memo, original.ID),
			Type:         EntryTypeAdjustment,
			SourceModule: original.SourceModule + ":REVERSAL",
			SourceID:     uuid.New(),
			ActorID:      in.ActorID,
			Lines:        reverseLines(original.Lines),
		}
		created, err := s.insertTx(ctx, tx, posting, period)
		if err != nil {
			return err
		}
		reversal, err = s.postTx(ctx, tx, created, in.ActorID)
		return err
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.observePosted()
	s.recordAudit(ctx, in.ActorID, "journal.reverse", reversal)
	return reversal, nil
}

// List returns entries for a quarry, newest first.
func (s *Service) List(ctx context.Context, quarryID int64, limit, offset int) ([]JournalEntry, error) {
	return s.repo.List(ctx, quarryID, limit, offset)
}

// Get retrieves one entry with its lines.
func (s *Service) Get(ctx context.Context, entryID int64) (JournalEntry, error) {
	return s.repo.Get(ctx, entryID)
}

func (s *Service) createTx(ctx context.Context, tx TxRepository, in CreateInput) (JournalEntry, error) {
	period, err := tx.GetPeriodByDateForUpdate(ctx, in.QuarryID, in.EntryDate)
	if err != nil {
		return JournalEntry{}, err
	}
	if period.IsClosed {
		return JournalEntry{}, shared.ErrPeriodClosed
	}
	return s.insertTx(ctx, tx, in, period)
}

func (s *Service) insertTx(ctx context.Context, tx TxRepository, in CreateInput, period periods.Period) (JournalEntry, error) {
	for _, line := range in.Lines {
		account, err := tx.GetPostingAccount(ctx, line.AccountID)
		if err != nil {
			if errors.Is(err, shared.ErrAccountNotFound) {
				return JournalEntry{}, shared.ErrAccountNotPostable
			}
			return JournalEntry{}, err
		}
		if account.QuarryID != in.QuarryID || !account.IsActive {
			return JournalEntry{}, shared.ErrAccountNotPostable
		}
	}
	entry, err := tx.InsertEntry(ctx, in, period)
	if err != nil {
		return JournalEntry{}, err
	}
	if err := tx.InsertLines(ctx, entry.ID, in.Lines); err != nil {
		return JournalEntry{}, err
	}
	entry.Lines = toLines(entry.ID, in.Lines, s.now())
	return entry, nil
}

func (s *Service) postTx(ctx context.Context, tx TxRepository, entry JournalEntry, actorID int64) (JournalEntry, error) {
	if entry.Status != StatusDraft {
		return JournalEntry{}, shared.ErrAlreadyPosted
	}
	period, err := tx.GetPeriodByDateForUpdate(ctx, entry.QuarryID, entry.EntryDate)
	if err != nil {
		return JournalEntry{}, err
	}
	if period.IsClosed {
		return JournalEntry{}, shared.ErrPeriodClosed
	}
	postedAt := s.now()
	if err := tx.MarkPosted(ctx, entry.ID, actorID, postedAt); err != nil {
		return JournalEntry{}, err
	}
	entry.Status = StatusPosted
	entry.PostedBy = &actorID
	entry.PostedAt = &postedAt
	return entry, nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entry JournalEntry) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "journal_entry",
		EntityID: fmt.Sprintf("%d", entry.ID),
		Meta: map[string]any{
			"source_module": entry.SourceModule,
			"source_id":     entry.SourceID.String(),
			"total_debit":   entry.TotalDebit.String(),
		},
		At: s.now(),
	})
}

func reverseLines(lines []Line) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, LineInput{
			AccountID: line.AccountID,
			Debit:     line.Credit,
			Credit:    line.Debit,
			Memo:      line.Memo,
		})
	}
	return out
}

func toLines(entryID int64, lines []LineInput, ts time.Time) []Line {
	out := make([]Line, 0, len(lines))
	for idx, line := range lines {
		out = append(out, Line{
			EntryID:    entryID,
			AccountID:  line.AccountID,
			Debit:      line.Debit,
			Credit:     line.Credit,
			Memo:       line.Memo,
			LineNumber: idx + 1,
			IsActive:   true,
			CreatedAt:  ts,
			UpdatedAt:  ts,
		})
	}
	return out
}

func reversalMemo(memo string, originalID int64) string {
	if memo != "" {
		return memo
	}
	return fmt.Sprintf("Reversal of journal entry %d", originalID)
}
