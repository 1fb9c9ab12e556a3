package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ DB = (*pgxpool.Pool)(nil)

// Store persists submission attempts in Postgres.
type Store struct {
	DB  DB
	Now func() time.Time
}

// NewStore wraps a pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

const insertEntry = `
INSERT INTO sale_order_submissions (
    id, user_id, draft_id, customer_id, payment_status_id, payment_kind, line_count,
    subtotal, discount_amount, tax_amount, total_with_tax, wallet_used, received_amount, pending_amount,
    outcome, upstream_order_id, error_message, created_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7,
    $8::numeric, $9::numeric, $10::numeric, $11::numeric, $12::numeric, $13::numeric, $14::numeric,
    $15, $16, $17, $18
)`

// Record stores one attempt, filling ID and CreatedAt when unset.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if s == nil || s.DB == nil {
		return errors.New("ledger store not configured")
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	_, err := s.DB.Exec(ctx, insertEntry,
		e.ID, e.UserID, e.DraftID, e.CustomerID, e.PaymentStatusID, e.PaymentKind, e.LineCount,
		e.Subtotal.String(), e.DiscountAmount.String(), e.TaxAmount.String(), e.TotalWithTax.String(),
		e.WalletUsed.String(), e.ReceivedAmount.String(), e.PendingAmount.String(),
		string(e.Outcome), e.UpstreamOrderID, e.ErrorMessage, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

const listEntries = `
SELECT id, user_id, draft_id, customer_id, payment_status_id, payment_kind, line_count,
       subtotal::text, discount_amount::text, tax_amount::text, total_with_tax::text,
       wallet_used::text, received_amount::text, pending_amount::text,
       outcome, upstream_order_id, error_message, created_at
FROM sale_order_submissions
WHERE ($1 = '' OR outcome = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

// List returns recent attempts, newest first, optionally filtered by outcome.
func (s *Store) List(ctx context.Context, outcome Outcome, limit, offset int) ([]Entry, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("ledger store not configured")
	}
	rows, err := s.DB.Query(ctx, listEntries, string(outcome), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			outc    string
			amounts [7]string
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.DraftID, &e.CustomerID, &e.PaymentStatusID, &e.PaymentKind, &e.LineCount,
			&amounts[0], &amounts[1], &amounts[2], &amounts[3], &amounts[4], &amounts[5], &amounts[6],
			&outc, &e.UpstreamOrderID, &e.ErrorMessage, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.Outcome = Outcome(outc)
		targets := []*decimal.Decimal{
			&e.Subtotal, &e.DiscountAmount, &e.TaxAmount, &e.TotalWithTax,
			&e.WalletUsed, &e.ReceivedAmount, &e.PendingAmount,
		}
		for i, raw := range amounts {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("parse ledger amount: %w", err)
			}
			*targets[i] = d
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DailySales is one day of accepted submissions.
type DailySales struct {
	Day            time.Time       `json:"day"`
	Orders         int64           `json:"orders"`
	Revenue        decimal.Decimal `json:"revenue"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	WalletUsed     decimal.Decimal `json:"walletUsed"`
	PendingAmount  decimal.Decimal `json:"pendingAmount"`
}

const salesDaily = `
SELECT date_trunc('day', created_at) AS day,
       count(*),
       coalesce(sum(total_with_tax), 0)::text,
       coalesce(sum(tax_amount), 0)::text,
       coalesce(sum(discount_amount), 0)::text,
       coalesce(sum(wallet_used), 0)::text,
       coalesce(sum(pending_amount), 0)::text
FROM sale_order_submissions
WHERE outcome = 'accepted' AND created_at >= $1 AND created_at < $2
GROUP BY 1
ORDER BY 1`

// SalesDaily sums accepted submissions per day within [from, to).
func (s *Store) SalesDaily(ctx context.Context, from, to time.Time) ([]DailySales, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("ledger store not configured")
	}
	rows, err := s.DB.Query(ctx, salesDaily, from, to)
	if err != nil {
		return nil, fmt.Errorf("query daily sales: %w", err)
	}
	defer rows.Close()

	var out []DailySales
	for rows.Next() {
		var (
			row     DailySales
			amounts [5]string
		)
		if err := rows.Scan(&row.Day, &row.Orders, &amounts[0], &amounts[1], &amounts[2], &amounts[3], &amounts[4]); err != nil {
			return nil, fmt.Errorf("scan daily sales: %w", err)
		}
		targets := []*decimal.Decimal{&row.Revenue, &row.TaxAmount, &row.DiscountAmount, &row.WalletUsed, &row.PendingAmount}
		for i, raw := range amounts {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("parse daily sales amount: %w", err)
			}
			*targets[i] = d
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// PaymentKindShare counts accepted submissions per payment kind.
type PaymentKindShare struct {
	PaymentKind string          `json:"paymentKind"`
	Orders      int64           `json:"orders"`
	Total       decimal.Decimal `json:"total"`
	Pending     decimal.Decimal `json:"pending"`
}

const paymentKindBreakdown = `
SELECT payment_kind, count(*), coalesce(sum(total_with_tax), 0)::text, coalesce(sum(pending_amount), 0)::text
FROM sale_order_submissions
WHERE outcome = 'accepted' AND created_at >= $1 AND created_at < $2
GROUP BY payment_kind
ORDER BY payment_kind`

// PaymentKinds groups accepted submissions in [from, to) by payment kind.
func (s *Store) PaymentKinds(ctx context.Context, from, to time.Time) ([]PaymentKindShare, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("ledger store not configured")
	}
	rows, err := s.DB.Query(ctx, paymentKindBreakdown, from, to)
	if err != nil {
		return nil, fmt.Errorf("query payment kinds: %w", err)
	}
	defer rows.Close()

	var out []PaymentKindShare
	for rows.Next() {
		var (
			row            PaymentKindShare
			total, pending string
		)
		if err := rows.Scan(&row.PaymentKind, &row.Orders, &total, &pending); err != nil {
			return nil, fmt.Errorf("scan payment kinds: %w", err)
		}
		if row.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse payment kind total: %w", err)
		}
		if row.Pending, err = decimal.NewFromString(pending); err != nil {
			return nil, fmt.Errorf("parse payment kind pending: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
