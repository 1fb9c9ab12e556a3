package salesorder

import "github.com/shopspring/decimal"

// SettlementInput carries the wallet and payment choices applied to a total.
type SettlementInput struct {
	TotalWithTax           decimal.Decimal
	WalletBalance          decimal.Decimal
	DeductibleWalletAmount decimal.Decimal
	LinkWallet             bool
	Kind                   PaymentKind
	ReceivedAmount         decimal.Decimal
}

// Settlement is how an order total is covered.
type Settlement struct {
	WalletUsed       decimal.Decimal `json:"walletUsed"`
	RemainingPayable decimal.Decimal `json:"remainingPayable"`
	ReceivedAmount   decimal.Decimal `json:"receivedAmount"`
	PendingAmount    decimal.Decimal `json:"pendingAmount"`
}

// Reconcile applies wallet credit and the payment status to a total. It never
// fails: the wallet draw is clamped to the balance and the total, and a
// negative request draws nothing. Validate reports the same conditions to the
// user.
func Reconcile(in SettlementInput) Settlement {
	walletUsed := decimal.Zero
	if in.LinkWallet {
		walletUsed = decimal.Min(in.DeductibleWalletAmount, in.WalletBalance, in.TotalWithTax)
		if walletUsed.IsNegative() {
			walletUsed = decimal.Zero
		}
	}
	remaining := in.TotalWithTax.Sub(walletUsed)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	var received decimal.Decimal
	switch in.Kind {
	case PaymentPaid:
		received = remaining
	case PaymentPartial:
		received = in.ReceivedAmount
	default:
		received = decimal.Zero
	}

	pending := remaining.Sub(received)
	if pending.IsNegative() {
		pending = decimal.Zero
	}
	return Settlement{
		WalletUsed:       walletUsed,
		RemainingPayable: remaining,
		ReceivedAmount:   received,
		PendingAmount:    pending,
	}
}
