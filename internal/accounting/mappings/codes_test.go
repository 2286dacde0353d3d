package mappings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpenseAccountCode(t *testing.T) {
	cases := []struct {
		category string
		want     string
	}{
		{"Fuel", "6000"},
		{"fuel", "6000"},
		{" FUEL ", "6000"},
		{"Salaries", "6100"},
		{"Repairs", "6200"},
		{"Electricity", "6300"},
		{"Blasting", "5000"},
		{"Crushing", "5100"},
		{"Royalties", "5300"},
		{"Land Rates", "5300"},
		{"Casino Night", "6900"},
		{"", "6900"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExpenseAccountCode(tc.category), "category %q", tc.category)
	}
}

func TestProductSalesAccountCode(t *testing.T) {
	cases := []struct {
		product string
		want    string
	}{
		{"Size 6", "4010"},
		{"size 6", "4010"},
		{"Size 9", "4020"},
		{"SIZE 9", "4020"},
		{"Quarry Dust", "4030"},
		{"Dust", "4030"},
		{"Rejects", "4040"},
		{"Size 6 Reject", "4040"},
		{"Ballast", "4000"},
		{"", "4000"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ProductSalesAccountCode(tc.product), "product %q", tc.product)
	}
}
