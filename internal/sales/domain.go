package sales

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale records one aggregate sale together with its fee breakdown and the
// journal entry it produced.
type Sale struct {
	ID                int64
	QuarryID          int64
	SourceID          uuid.UUID
	SaleDate          time.Time
	CustomerName      string
	ProductName       string
	Quantity          decimal.Decimal
	PricePerUnit      decimal.Decimal
	CommissionPerUnit decimal.Decimal
	LoadersFeeRate    decimal.Decimal
	LandRateFee       decimal.Decimal
	RejectsFee        decimal.Decimal
	GrossAmount       decimal.Decimal
	Commission        decimal.Decimal
	LoadersFee        decimal.Decimal
	LandRateAmount    decimal.Decimal
	NetAmount         decimal.Decimal
	JournalEntryID    *int64
	CreatedBy         int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RecordSaleInput captures a sale to be recorded and journalled.
type RecordSaleInput struct {
	QuarryID          int64
	SaleDate          time.Time
	CustomerName      string
	ProductName       string
	Quantity          decimal.Decimal
	PricePerUnit      decimal.Decimal
	CommissionPerUnit decimal.Decimal
	LoadersFeeRate    decimal.Decimal
	LandRateFee       decimal.Decimal
	RejectsFee        decimal.Decimal
	ActorID           int64
}

// Validate checks the fields the fee calculator does not.
func (in RecordSaleInput) Validate() error {
	if in.QuarryID == 0 {
		return errors.New("sales: quarry id required")
	}
	if in.SaleDate.IsZero() {
		return errors.New("sales: sale date required")
	}
	if strings.TrimSpace(in.ProductName) == "" {
		return errors.New("sales: product name required")
	}
	if !in.Quantity.IsPositive() {
		return errors.New("sales: quantity must be positive")
	}
	if in.PricePerUnit.IsNegative() {
		return errors.New("sales: price per unit cannot be negative")
	}
	if in.CommissionPerUnit.IsNegative() || in.LoadersFeeRate.IsNegative() {
		return errors.New("sales: fee rates cannot be negative")
	}
	return nil
}

// ErrSaleNotFound indicates a missing sale row.
var ErrSaleNotFound = errors.New("sales: sale not found")
