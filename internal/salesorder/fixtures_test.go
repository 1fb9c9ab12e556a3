package salesorder

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/pharmacy-desk/internal/units"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func unitTable() units.Table {
	return units.NewTable([]units.Definition{
		{UnitID: 1, BaseUnit: "Tablet", SecondaryUnit: "Strip"},
		{UnitID: 2, BaseUnit: "PCS", SecondaryUnit: "Box"},
	})
}

// sampleLines covers one line per unit kind.
func sampleLines() []Line {
	return []Line{
		{LineID: "l1", ItemName: "Paracetamol 500", MRP: d("30"), Quantity: 40, UnitID: 1, SelectedUnitType: units.SelectorBase, PackagingSize: 30},
		{LineID: "l2", ItemName: "Amoxicillin 250", MRP: d("100"), Quantity: 2, TaxRatePercent: d("12"), DiscountPercent: d("10"), UnitID: 1, SelectedUnitType: units.SelectorSecondary, PackagingSize: 10},
		{LineID: "l3", ItemName: "Bandage", MRP: d("20"), Quantity: 5, UnitID: 2},
	}
}
