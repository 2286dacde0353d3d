package periods

import "time"

// PeriodType tags how a period window was generated.
type PeriodType string

// PeriodTypeMonthly is the only generated granularity.
const PeriodTypeMonthly PeriodType = "MONTHLY"

// Period represents one fiscal window of a quarry's calendar.
type Period struct {
	ID           int64
	QuarryID     int64
	Name         string
	StartDate    time.Time
	EndDate      time.Time
	FiscalYear   int
	PeriodNumber int
	Type         PeriodType
	IsClosed     bool
	ClosedBy     *int64
	ClosedAt     *time.Time
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Contains reports whether the date falls inside the period window.
func (p Period) Contains(date time.Time) bool {
	day := date.Truncate(24 * time.Hour)
	return !day.Before(p.StartDate) && !day.After(p.EndDate)
}
