// Package fees computes the deduction breakdown for aggregate sales. All
// functions are pure and take primitive inputs so they can be tested in
// isolation; callers are responsible for validating quantities and rates.
package fees

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Breakdown holds every figure derived from one sale.
type Breakdown struct {
	Gross       decimal.Decimal
	Commission  decimal.Decimal
	LoadersFee  decimal.Decimal
	LandRateFee decimal.Decimal
	Net         decimal.Decimal
}

// Gross is quantity times price per unit.
func Gross(quantity, pricePerUnit decimal.Decimal) decimal.Decimal {
	return quantity.Mul(pricePerUnit)
}

// Commission is quantity times the commission rate per unit.
func Commission(quantity, commissionPerUnit decimal.Decimal) decimal.Decimal {
	return quantity.Mul(commissionPerUnit)
}

// LoadersFee is quantity times the loaders rate, or zero when no positive
// rate is configured.
func LoadersFee(quantity, loadersFeeRate decimal.Decimal) decimal.Decimal {
	if !loadersFeeRate.IsPositive() {
		return decimal.Zero
	}
	return quantity.Mul(loadersFeeRate)
}

// LandRateFee selects between the standard land rate and the rejects
// override. A product whose name contains "reject" (case-insensitive) is
// charged the rejects rate when one is configured; otherwise the standard
// rate applies. No positive land rate means no fee at all.
func LandRateFee(productName string, quantity, landRateFee, rejectsFee decimal.Decimal) decimal.Decimal {
	if !landRateFee.IsPositive() {
		return decimal.Zero
	}
	if rejectsFee.IsPositive() && strings.Contains(strings.ToLower(productName), "reject") {
		return quantity.Mul(rejectsFee)
	}
	return quantity.Mul(landRateFee)
}

// Net is the gross amount less every fee, clamped at zero so fee
// configuration mistakes never produce a negative payout.
func Net(gross, commission, loadersFee, landRateFee decimal.Decimal) decimal.Decimal {
	net := gross.Sub(commission).Sub(loadersFee).Sub(landRateFee)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// Calculate returns the full breakdown for one sale.
func Calculate(productName string, quantity, pricePerUnit, commissionPerUnit, loadersFeeRate, landRateFee, rejectsFee decimal.Decimal) Breakdown {
	gross := Gross(quantity, pricePerUnit)
	commission := Commission(quantity, commissionPerUnit)
	loaders := LoadersFee(quantity, loadersFeeRate)
	landRate := LandRateFee(productName, quantity, landRateFee, rejectsFee)
	return Breakdown{
		Gross:       gross,
		Commission:  commission,
		LoadersFee:  loaders,
		LandRateFee: landRate,
		Net:         Net(gross, commission, loaders, landRate),
	}
}
