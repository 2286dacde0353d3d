package fees

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestGross(t *testing.T) {
	assert.True(t, d("13500").Equal(Gross(d("300"), d("45"))))
}

func TestCommission(t *testing.T) {
	assert.True(t, d("600").Equal(Commission(d("300"), d("2"))))
}

func TestLoadersFeeZeroWhenRateNotPositive(t *testing.T) {
	assert.True(t, LoadersFee(d("300"), decimal.Zero).IsZero())
	assert.True(t, LoadersFee(d("300"), d("-1")).IsZero())
	assert.True(t, d("900").Equal(LoadersFee(d("300"), d("3"))))
}

func TestLandRateFeeStandardProduct(t *testing.T) {
	fee := LandRateFee("Size 6", d("10"), d("40"), d("20"))
	assert.True(t, d("400").Equal(fee), "standard products pay the land rate, got %s", fee)
}

func TestLandRateFeeRejectsOverride(t *testing.T) {
	fee := LandRateFee("Rejects", d("10"), d("40"), d("20"))
	assert.True(t, d("200").Equal(fee), "reject products pay the rejects rate, got %s", fee)

	fee = LandRateFee("quarry rejects mix", d("10"), d("40"), d("20"))
	assert.True(t, d("200").Equal(fee), "matching is case-insensitive substring")
}

func TestLandRateFeeRejectsWithoutOverrideRate(t *testing.T) {
	fee := LandRateFee("Rejects", d("10"), d("40"), decimal.Zero)
	assert.True(t, d("400").Equal(fee), "no rejects rate configured falls back to the land rate")
}

func TestLandRateFeeZeroWhenNoLandRate(t *testing.T) {
	assert.True(t, LandRateFee("Rejects", d("10"), decimal.Zero, d("20")).IsZero())
}

func TestNetClampedAtZero(t *testing.T) {
	net := Net(d("100"), d("60"), d("30"), d("30"))
	assert.True(t, net.IsZero(), "fees exceeding gross clamp to zero, got %s", net)
}

func TestCalculateBreakdown(t *testing.T) {
	b := Calculate("Size 6", d("300"), d("45"), d("2"), d("3"), d("500"), decimal.Zero)

	assert.True(t, d("13500").Equal(b.Gross))
	assert.True(t, d("600").Equal(b.Commission))
	assert.True(t, d("900").Equal(b.LoadersFee))
	assert.True(t, d("150000").Equal(b.LandRateFee))
	assert.True(t, b.Net.IsZero(), "land rate above gross clamps the net payout")
}

func TestCalculateTypicalSale(t *testing.T) {
	b := Calculate("Size 9", d("100"), d("50"), d("2"), d("3"), d("5"), decimal.Zero)

	assert.True(t, d("5000").Equal(b.Gross))
	assert.True(t, d("200").Equal(b.Commission))
	assert.True(t, d("300").Equal(b.LoadersFee))
	assert.True(t, d("500").Equal(b.LandRateFee))
	assert.True(t, d("4000").Equal(b.Net))
}
