package salesorder

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/pharmacy-desk/internal/units"
)

// Line is one product row of a sale order being edited.
type Line struct {
	LineID           string          `json:"lineId"`
	ProductID        int64           `json:"productId" validate:"gte=0"`
	ItemName         string          `json:"itemName" validate:"max=255"`
	HSNCode          string          `json:"hsnCode" validate:"max=16"`
	BatchNo          string          `json:"batchNo" validate:"max=64"`
	Mfg              string          `json:"mfg" validate:"max=255"`
	ExpDate          string          `json:"expDate"`
	MfgDate          string          `json:"mfgDate"`
	Packing          string          `json:"packing" validate:"max=64"`
	MRP              decimal.Decimal `json:"mrp"`
	Quantity         int64           `json:"quantity"`
	TaxRatePercent   decimal.Decimal `json:"taxRatePercent"`
	DiscountPercent  decimal.Decimal `json:"discountPercent"`
	UnitID           int64           `json:"unitId" validate:"gte=0"`
	SelectedUnitType units.Selector  `json:"selectedUnitType" validate:"omitempty,oneof=base secondary"`
	PackagingSize    int64           `json:"packagingSize" validate:"gte=0"`
}

// UnitLabel resolves the line's unit label against table. Blank means generic.
func (l Line) UnitLabel(table units.Table) string {
	selector := l.SelectedUnitType
	if selector == "" {
		selector = units.SelectorBase
	}
	return units.ResolveLabel(l.UnitID, selector, table)
}

// Order is the editable content of a sale order: who buys, how they pay and
// what they take.
type Order struct {
	CustomerID             int64           `json:"customerId" validate:"gte=0"`
	PaymentStatusID        int64           `json:"paymentStatusId" validate:"gte=0"`
	PaymentTypeID          int64           `json:"paymentTypeId" validate:"gte=0"`
	LinkWallet             bool            `json:"linkWallet"`
	DeductibleWalletAmount decimal.Decimal `json:"deductibleWalletAmount"`
	ReceivedAmount         decimal.Decimal `json:"receivedAmount"`
	Lines                  []Line          `json:"lines" validate:"max=200,dive"`
}

// Customer is the subset of customer data the desk needs.
type Customer struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone,omitempty"`
	WalletBalance decimal.Decimal `json:"walletBalance"`
}

// PaymentKind is the behaviour class of a payment status.
type PaymentKind string

const (
	// PaymentPaid settles the remaining payable in full.
	PaymentPaid PaymentKind = "paid"
	// PaymentPartial takes a user-entered amount below the total.
	PaymentPartial PaymentKind = "partial"
	// PaymentUnpaid records the order with nothing received.
	PaymentUnpaid PaymentKind = "unpaid"
)

// PaymentStatus is reference data describing one upstream payment status.
type PaymentStatus struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Kind classifies the status by name.
func (p PaymentStatus) Kind() PaymentKind {
	return ClassifyPaymentStatus(p.Name)
}

// ClassifyPaymentStatus maps a status name onto a PaymentKind. Names are
// matched case-insensitively; anything unrecognised is unpaid.
func ClassifyPaymentStatus(name string) PaymentKind {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.Contains(n, "partial"):
		return PaymentPartial
	case strings.Contains(n, "unpaid"), strings.Contains(n, "pending"), strings.Contains(n, "due"):
		return PaymentUnpaid
	case n == "paid", n == "fully paid", n == "full", strings.Contains(n, "complete"):
		return PaymentPaid
	default:
		return PaymentUnpaid
	}
}
