package salesorder

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pharmacy-desk/internal/pricing"
	"github.com/noah-isme/pharmacy-desk/internal/units"
)

// LineBreakdown pairs a line with its computed amounts.
type LineBreakdown struct {
	LineID    string          `json:"lineId"`
	UnitLabel string          `json:"unitLabel"`
	UnitKind  string          `json:"unitKind"`
	Amounts   pricing.Amounts `json:"amounts"`
}

// Totals is the order-level fold of every line breakdown.
type Totals struct {
	Lines          []LineBreakdown `json:"lines"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	TotalWithTax   decimal.Decimal `json:"totalWithTax"`
}

// PriceLine runs the pricing engine for one line using its resolved unit.
func PriceLine(line Line, table units.Table) LineBreakdown {
	label := line.UnitLabel(table)
	packaging := line.PackagingSize
	if packaging == 0 {
		packaging = 1
	}
	amounts := pricing.ComputeLine(line.MRP, line.Quantity, line.TaxRatePercent, line.DiscountPercent, label, packaging)
	return LineBreakdown{
		LineID:    line.LineID,
		UnitLabel: units.DisplayLabel(label),
		UnitKind:  units.Classify(label).String(),
		Amounts:   amounts,
	}
}

// Aggregate prices every line and sums the results. Each line is rounded on
// its own, so the totals can differ by a cent from rounding the sum once.
func Aggregate(lines []Line, table units.Table) Totals {
	totals := Totals{
		Lines:          make([]LineBreakdown, 0, len(lines)),
		Subtotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
		TotalWithTax:   decimal.Zero,
	}
	for _, line := range lines {
		b := PriceLine(line, table)
		totals.Lines = append(totals.Lines, b)
		totals.Subtotal = totals.Subtotal.Add(b.Amounts.Price)
		totals.TaxAmount = totals.TaxAmount.Add(b.Amounts.TaxAfterDiscount)
		totals.TotalWithTax = totals.TotalWithTax.Add(b.Amounts.TotalPayableAmount)
		totals.DiscountAmount = totals.DiscountAmount.Add(b.Amounts.DiscountAmount)
	}
	return totals
}
