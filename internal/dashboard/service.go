package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/pharmacy-desk/internal/cache"
	"github.com/noah-isme/pharmacy-desk/internal/ledger"
)

// Querier defines the ledger reads the dashboard needs.
type Querier interface {
	SalesDaily(ctx context.Context, from, to time.Time) ([]ledger.DailySales, error)
	PaymentKinds(ctx context.Context, from, to time.Time) ([]ledger.PaymentKindShare, error)
}

// Service provides cached access to submission summaries.
type Service struct {
	Q            Querier
	Cache        *cache.JSON
	DefaultRange int
	Now          func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SalesRange returns accepted sales per day in [from, to).
func (s *Service) SalesRange(ctx context.Context, from, to time.Time) ([]ledger.DailySales, error) {
	if s == nil || s.Q == nil {
		return nil, fmt.Errorf("dashboard service not configured")
	}
	key := s.Cache.Key("dash", "sales", from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	var rows []ledger.DailySales
	if ok, _ := s.Cache.Get(ctx, key, &rows); ok {
		return rows, nil
	}
	rows, err := s.Q.SalesDaily(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []ledger.DailySales{}
	}
	_ = s.Cache.Set(ctx, key, rows)
	return rows, nil
}

// PaymentStatus returns accepted orders grouped by payment kind in [from, to).
func (s *Service) PaymentStatus(ctx context.Context, from, to time.Time) ([]ledger.PaymentKindShare, error) {
	if s == nil || s.Q == nil {
		return nil, fmt.Errorf("dashboard service not configured")
	}
	key := s.Cache.Key("dash", "payment", from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	var rows []ledger.PaymentKindShare
	if ok, _ := s.Cache.Get(ctx, key, &rows); ok {
		return rows, nil
	}
	rows, err := s.Q.PaymentKinds(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []ledger.PaymentKindShare{}
	}
	_ = s.Cache.Set(ctx, key, rows)
	return rows, nil
}
