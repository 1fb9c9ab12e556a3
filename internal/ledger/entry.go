package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Outcome is how a submission attempt ended.
type Outcome string

const (
	// OutcomeAccepted means the order service created the order.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeRejected means local validation refused the order.
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means the order service refused or could not be reached.
	OutcomeFailed Outcome = "failed"
)

// Entry is one recorded submission attempt.
type Entry struct {
	ID              uuid.UUID       `json:"id"`
	UserID          string          `json:"userId,omitempty"`
	DraftID         string          `json:"draftId,omitempty"`
	CustomerID      int64           `json:"customerId"`
	PaymentStatusID int64           `json:"paymentStatusId"`
	PaymentKind     string          `json:"paymentKind"`
	LineCount       int             `json:"lineCount"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	TotalWithTax    decimal.Decimal `json:"totalWithTax"`
	WalletUsed      decimal.Decimal `json:"walletUsed"`
	ReceivedAmount  decimal.Decimal `json:"receivedAmount"`
	PendingAmount   decimal.Decimal `json:"pendingAmount"`
	Outcome         Outcome         `json:"outcome"`
	UpstreamOrderID string          `json:"upstreamOrderId,omitempty"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}
