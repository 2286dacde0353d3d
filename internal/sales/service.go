package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quarrydesk/quarrydesk/internal/accounting/journals"
	"github.com/quarrydesk/quarrydesk/internal/accounting/mappings"
	"github.com/quarrydesk/quarrydesk/internal/sales/fees"
)

// JournalPort posts balanced entries into the general ledger within the
// caller's transaction.
type JournalPort interface {
	PostEntryTx(ctx context.Context, tx journals.TxRepository, in journals.CreateInput) (journals.JournalEntry, error)
	EntryCommitted(ctx context.Context, actorID int64, entry journals.JournalEntry)
}

// AccountDirectory resolves ledger account ids from mapped codes.
type AccountDirectory interface {
	IDByCode(ctx context.Context, quarryID int64, code string) (int64, error)
}

// Service records sales: it computes the fee breakdown, persists the sale,
// and posts the corresponding journal entry.
type Service struct {
	repo     Repository
	journal  JournalPort
	accounts AccountDirectory
	now      func() time.Time
}

// NewService constructs the sale recorder.
func NewService(repo Repository, journal JournalPort, accounts AccountDirectory) *Service {
	return &Service{repo: repo, journal: journal, accounts: accounts, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// RecordSale computes the breakdown, stores the sale, and posts the ledger
// entry in one transaction: a failed posting rolls the sale row back, so a
// sale can never sit on the books without its ledger entry. The journal
// source link is the sale's uuid, so a duplicated call cannot journal the
// same sale twice.
func (s *Service) RecordSale(ctx context.Context, in RecordSaleInput) (Sale, error) {
	if err := in.Validate(); err != nil {
		return Sale{}, err
	}
	breakdown := fees.Calculate(in.ProductName, in.Quantity, in.PricePerUnit,
		in.CommissionPerUnit, in.LoadersFeeRate, in.LandRateFee, in.RejectsFee)

	sale := Sale{
		QuarryID:          in.QuarryID,
		SourceID:          uuid.New(),
		SaleDate:          in.SaleDate,
		CustomerName:      in.CustomerName,
		ProductName:       in.ProductName,
		Quantity:          in.Quantity,
		PricePerUnit:      in.PricePerUnit,
		CommissionPerUnit: in.CommissionPerUnit,
		LoadersFeeRate:    in.LoadersFeeRate,
		LandRateFee:       in.LandRateFee,
		RejectsFee:        in.RejectsFee,
		GrossAmount:       breakdown.Gross,
		Commission:        breakdown.Commission,
		LoadersFee:        breakdown.LoadersFee,
		LandRateAmount:    breakdown.LandRateFee,
		NetAmount:         breakdown.Net,
		CreatedBy:         in.ActorID,
	}
	var entry journals.JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		sale, err = tx.Insert(ctx, sale)
		if err != nil {
			return err
		}
		lines, err := s.buildLines(ctx, in.QuarryID, in.ProductName, breakdown)
		if err != nil {
			return err
		}
		entry, err = s.journal.PostEntryTx(ctx, tx.Journal(), journals.CreateInput{
			QuarryID:     in.QuarryID,
			EntryDate:    in.SaleDate,
			Reference:    fmt.Sprintf("SALE-%d", sale.ID),
			Description:  fmt.Sprintf("Sale of %s to %s", in.ProductName, in.CustomerName),
			Type:         journals.EntryTypeSale,
			SourceModule: "SALES",
			SourceID:     sale.SourceID,
			ActorID:      in.ActorID,
			Lines:        lines,
		})
		if err != nil {
			return err
		}
		return tx.SetJournalEntry(ctx, sale.ID, entry.ID)
	})
	if err != nil {
		return Sale{}, err
	}
	s.journal.EntryCommitted(ctx, in.ActorID, entry)
	sale.JournalEntryID = &entry.ID
	return sale, nil
}

// buildLines translates a fee breakdown into balanced journal lines: cash is
// debited for the gross takings, revenue credited for the same amount, and
// each fee accrues as a direct cost owed to the fee earner.
func (s *Service) buildLines(ctx context.Context, quarryID int64, productName string, b fees.Breakdown) ([]journals.LineInput, error) {
	cashID, err := s.accounts.IDByCode(ctx, quarryID, mappings.CashCode)
	if err != nil {
		return nil, err
	}
	revenueID, err := s.accounts.IDByCode(ctx, quarryID, mappings.ProductSalesAccountCode(productName))
	if err != nil {
		return nil, err
	}
	lines := []journals.LineInput{
		{AccountID: cashID, Debit: b.Gross, Memo: "Sale takings"},
		{AccountID: revenueID, Credit: b.Gross, Memo: productName},
	}
	type fee struct {
		amount decimal.Decimal
		code   string
		memo   string
	}
	for _, f := range []fee{
		{b.Commission, mappings.CommissionCode, "Sales commission"},
		{b.LoadersFee, mappings.LoadersFeeCode, "Loaders fee"},
		{b.LandRateFee, mappings.LandRateCode, "Land rate fee"},
	} {
		if !f.amount.IsPositive() {
			continue
		}
		costID, err := s.accounts.IDByCode(ctx, quarryID, f.code)
		if err != nil {
			return nil, err
		}
		payableID, err := s.accounts.IDByCode(ctx, quarryID, mappings.FeesPayableCode)
		if err != nil {
			return nil, err
		}
		lines = append(lines,
			journals.LineInput{AccountID: costID, Debit: f.amount, Memo: f.memo},
			journals.LineInput{AccountID: payableID, Credit: f.amount, Memo: f.memo},
		)
	}
	return lines, nil
}

// Get retrieves one sale.
func (s *Service) Get(ctx context.Context, saleID int64) (Sale, error) {
	return s.repo.Get(ctx, saleID)
}

// List returns sales for a quarry, newest first.
func (s *Service) List(ctx context.Context, quarryID int64, limit, offset int) ([]Sale, error) {
	return s.repo.List(ctx, quarryID, limit, offset)
}
