package salesorder

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/pharmacy-desk/internal/common"
	"github.com/noah-isme/pharmacy-desk/internal/ledger"
	"github.com/noah-isme/pharmacy-desk/internal/obs"
	"github.com/noah-isme/pharmacy-desk/internal/units"
)

// Backend is the order service as seen by the desk.
type Backend interface {
	GetCustomer(ctx context.Context, id int64) (Customer, error)
	ListPaymentStatuses(ctx context.Context) ([]PaymentStatus, error)
	CreateSaleOrder(ctx context.Context, payload CreateSaleOrderRequest) (Created, error)
}

// UnitTable supplies the current unit reference data.
type UnitTable interface {
	Table(ctx context.Context) (units.Table, error)
}

// Recorder stores submission attempts.
type Recorder interface {
	Record(ctx context.Context, e ledger.Entry) error
}

// Created identifies an order accepted by the order service.
type Created struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber,omitempty"`
}

// Quote is a fully priced order with its settlement and any problems that
// would block submission.
type Quote struct {
	Totals      Totals           `json:"totals"`
	Settlement  Settlement       `json:"settlement"`
	PaymentKind PaymentKind      `json:"paymentKind"`
	Customer    *Customer        `json:"customer,omitempty"`
	Problems    ValidationErrors `json:"problems"`
}

// Valid reports whether the quote can be submitted.
func (q Quote) Valid() bool { return len(q.Problems) == 0 }

// Submission is the result of a successful submit.
type Submission struct {
	Created Created `json:"created"`
	Quote   Quote   `json:"quote"`
}

// Service prices, validates and submits sale orders.
type Service struct {
	Backend  Backend
	Units    UnitTable
	Recorder Recorder
	Logger   zerolog.Logger
}

type references struct {
	table         units.Table
	customer      *Customer
	statuses      []PaymentStatus
	customerFound bool
}

// loadReferences fetches units, the customer and payment statuses in
// parallel. A customer the order service does not know is not an error here;
// validation reports it.
func (s *Service) loadReferences(ctx context.Context, order Order) (references, error) {
	var refs references
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		table, err := s.Units.Table(gctx)
		if err != nil {
			return err
		}
		refs.table = table
		return nil
	})
	if order.CustomerID > 0 {
		g.Go(func() error {
			customer, err := s.Backend.GetCustomer(gctx, order.CustomerID)
			if err != nil {
				var appErr *common.AppError
				if errors.As(err, &appErr) && appErr.HTTPStatus == http.StatusNotFound {
					return nil
				}
				return err
			}
			refs.customer = &customer
			refs.customerFound = true
			return nil
		})
	}
	if order.PaymentStatusID > 0 {
		g.Go(func() error {
			statuses, err := s.Backend.ListPaymentStatuses(gctx)
			if err != nil {
				return err
			}
			refs.statuses = statuses
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return references{}, err
	}
	return refs, nil
}

// Quote prices order and reports what would block its submission.
func (s *Service) Quote(ctx context.Context, order Order) (Quote, error) {
	if s == nil || s.Backend == nil || s.Units == nil {
		return Quote{}, errors.New("sale order service not configured")
	}
	refs, err := s.loadReferences(ctx, order)
	if err != nil {
		return Quote{}, err
	}
	q := price(order, refs)
	obs.ObserveQuote(q.Valid())
	return q, nil
}

func price(order Order, refs references) Quote {
	kind := PaymentUnpaid
	statusKnown := false
	for _, st := range refs.statuses {
		if st.ID == order.PaymentStatusID {
			kind = st.Kind()
			statusKnown = true
			break
		}
	}

	walletBalance := decimal.Zero
	if refs.customer != nil {
		walletBalance = refs.customer.WalletBalance
	}

	totals := Aggregate(order.Lines, refs.table)
	settlement := Reconcile(SettlementInput{
		TotalWithTax:           totals.TotalWithTax,
		WalletBalance:          walletBalance,
		DeductibleWalletAmount: order.DeductibleWalletAmount,
		LinkWallet:             order.LinkWallet,
		Kind:                   kind,
		ReceivedAmount:         order.ReceivedAmount,
	})

	q := Quote{
		Totals:      totals,
		Settlement:  settlement,
		PaymentKind: kind,
		Customer:    refs.customer,
		Problems:    ValidationErrors{},
	}
	err := Validate(ValidationInput{
		Order:         order,
		CustomerFound: refs.customerFound,
		WalletBalance: walletBalance,
		StatusKnown:   statusKnown,
		Kind:          kind,
		Totals:        totals,
		Settlement:    settlement,
	})
	var problems ValidationErrors
	if errors.As(err, &problems) {
		q.Problems = problems
	}
	return q
}

// Submit validates order and, when it passes, sends it to the order service.
// Every attempt is recorded; a rejected order is returned as a 422 AppError
// listing the problems. Submission is never retried.
func (s *Service) Submit(ctx context.Context, draftID string, order Order) (Submission, error) {
	q, err := s.Quote(ctx, order)
	if err != nil {
		return Submission{}, err
	}
	entry := ledgerEntry(ctx, draftID, order, q)

	if !q.Valid() {
		entry.Outcome = ledger.OutcomeRejected
		entry.ErrorMessage = q.Problems.Error()
		s.record(ctx, entry)
		obs.ObserveSubmit(string(ledger.OutcomeRejected), 0)
		return Submission{Quote: q}, q.Problems.AppError()
	}

	payload := BuildPayload(order, q.Totals, q.Settlement, q.PaymentKind)
	created, err := s.Backend.CreateSaleOrder(ctx, payload)
	if err != nil {
		entry.Outcome = ledger.OutcomeFailed
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			entry.ErrorMessage = appErr.Message
		} else {
			entry.ErrorMessage = err.Error()
		}
		s.record(ctx, entry)
		obs.ObserveSubmit(string(ledger.OutcomeFailed), 0)
		return Submission{Quote: q}, err
	}

	entry.Outcome = ledger.OutcomeAccepted
	entry.UpstreamOrderID = created.OrderID
	s.record(ctx, entry)
	obs.ObserveSubmit(string(ledger.OutcomeAccepted), q.Totals.TotalWithTax.InexactFloat64())
	s.Logger.Info().
		Str("draft_id", draftID).
		Str("order_id", created.OrderID).
		Int64("customer_id", order.CustomerID).
		Str("total", q.Totals.TotalWithTax.StringFixed(2)).
		Msg("sale_order_submitted")
	return Submission{Created: created, Quote: q}, nil
}

func (s *Service) record(ctx context.Context, entry ledger.Entry) {
	if s.Recorder == nil {
		return
	}
	// recorded even when the caller has gone away
	if err := s.Recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		s.Logger.Error().Err(err).Str("outcome", string(entry.Outcome)).Msg("ledger_record_failed")
	}
}

func ledgerEntry(ctx context.Context, draftID string, order Order, q Quote) ledger.Entry {
	userID, _ := common.UserID(ctx)
	return ledger.Entry{
		UserID:          userID,
		DraftID:         draftID,
		CustomerID:      order.CustomerID,
		PaymentStatusID: order.PaymentStatusID,
		PaymentKind:     string(q.PaymentKind),
		LineCount:       len(order.Lines),
		Subtotal:        q.Totals.Subtotal,
		DiscountAmount:  q.Totals.DiscountAmount,
		TaxAmount:       q.Totals.TaxAmount,
		TotalWithTax:    q.Totals.TotalWithTax,
		WalletUsed:      q.Settlement.WalletUsed,
		ReceivedAmount:  q.Settlement.ReceivedAmount,
		PendingAmount:   q.Settlement.PendingAmount,
	}
}
