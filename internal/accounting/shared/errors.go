package shared

import "errors"

var (
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = errors.New("accounting: journal lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("accounting: journal requires at least two lines")
	// ErrAccountNotPostable indicates the account is inactive or owned by another quarry.
	ErrAccountNotPostable = errors.New("accounting: account not postable")
	// ErrAccountNotFound indicates a missing ledger account.
	ErrAccountNotFound = errors.New("accounting: account not found")
	// ErrAccountCodeTaken indicates the code is already used within the quarry.
	ErrAccountCodeTaken = errors.New("accounting: account code already in use")
	// ErrParentCycle indicates the parent assignment would create a cycle.
	ErrParentCycle = errors.New("accounting: parent chain would form a cycle")
	// ErrSystemAccount indicates a protected account cannot be removed.
	ErrSystemAccount = errors.New("accounting: system account is protected")
	// ErrNoOpenPeriod indicates no period covers the posting date.
	ErrNoOpenPeriod = errors.New("accounting: no period covers this date")
	// ErrPeriodClosed indicates the covering period is closed.
	ErrPeriodClosed = errors.New("accounting: period is closed")
	// ErrPeriodNotFound indicates a missing period row.
	ErrPeriodNotFound = errors.New("accounting: period not found")
	// ErrYearExists indicates periods were already seeded for the fiscal year.
	ErrYearExists = errors.New("accounting: fiscal year already seeded")
	// ErrJournalNotFound indicates a missing entry.
	ErrJournalNotFound = errors.New("accounting: journal entry not found")
	// ErrAlreadyPosted indicates the entry left the draft state.
	ErrAlreadyPosted = errors.New("accounting: journal entry already posted")
	// ErrNotPosted indicates the operation requires a posted entry.
	ErrNotPosted = errors.New("accounting: journal entry not posted")
	// ErrSourceAlreadyLinked indicates the source document was already journalled.
	ErrSourceAlreadyLinked = errors.New("accounting: source already journalled")
)
