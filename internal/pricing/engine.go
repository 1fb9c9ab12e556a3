package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Amounts is the monetary breakdown of one order line. Money fields are
// rounded to two places as they are computed; ActualTabletCount and
// NumberOfPacks may be fractional.
type Amounts struct {
	Price                        decimal.Decimal `json:"price"`
	TaxAmount                    decimal.Decimal `json:"taxAmount"`
	AmountWithoutTax             decimal.Decimal `json:"amountWithoutTax"`
	DiscountAmount               decimal.Decimal `json:"discountAmount"`
	AmountWithDiscountWithoutTax decimal.Decimal `json:"amountWithDiscountWithoutTax"`
	TaxAfterDiscount             decimal.Decimal `json:"taxAfterDiscount"`
	TotalPayableAmount           decimal.Decimal `json:"totalPayableAmount"`
	ActualTabletCount            decimal.Decimal `json:"actualTabletCount"`
	NumberOfPacks                decimal.Decimal `json:"numberOfPacks"`
	DisplayQuantity              int64           `json:"displayQuantity"`
}

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ComputeLine prices one line. mrp is tax inclusive and quoted per pack for
// tablet and strip units. Inputs are not validated; only the packaging size
// division is guarded.
func ComputeLine(mrp decimal.Decimal, quantity int64, taxRate, discountPercent decimal.Decimal, unitLabel string, packagingSize int64) Amounts {
	qty := decimal.NewFromInt(quantity)
	unit := strings.ToLower(unitLabel)

	var tablets, packs decimal.Decimal
	switch unit {
	case "tablet":
		tablets = qty
		if packagingSize > 0 {
			packs = qty.Div(decimal.NewFromInt(packagingSize))
		} else {
			packs = qty
		}
	case "strip":
		tablets = qty.Mul(decimal.NewFromInt(packagingSize))
		packs = qty
	default:
		tablets = qty
		packs = qty
	}

	var price decimal.Decimal
	if unit == "tablet" || unit == "strip" {
		price = Round2(packs.Mul(mrp))
	} else {
		price = Round2(qty.Mul(mrp))
	}

	// MRP already contains tax; back it out before discounting.
	taxAmount := decimal.Zero
	if denom := hundred.Add(taxRate); !denom.IsZero() {
		taxAmount = Round2(price.Mul(taxRate).Div(denom))
	}
	withoutTax := Round2(price.Sub(taxAmount))

	discount := decimal.Zero
	if discountPercent.IsPositive() {
		discount = Round2(withoutTax.Mul(discountPercent).Div(hundred))
	}
	discounted := Round2(withoutTax.Sub(discount))

	// tax is recomputed on the discounted base, not prorated
	taxAfter := Round2(discounted.Mul(taxRate).Div(hundred))

	return Amounts{
		Price:                        price,
		TaxAmount:                    taxAmount,
		AmountWithoutTax:             withoutTax,
		DiscountAmount:               discount,
		AmountWithDiscountWithoutTax: discounted,
		TaxAfterDiscount:             taxAfter,
		TotalPayableAmount:           Round2(discounted.Add(taxAfter)),
		ActualTabletCount:            tablets,
		NumberOfPacks:                packs,
		DisplayQuantity:              quantity,
	}
}
