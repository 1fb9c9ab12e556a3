package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type execRecorder struct {
	sql  string
	args []any
	err  error
}

func (e *execRecorder) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	e.sql = sql
	e.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), e.err
}

func (e *execRecorder) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func TestRecordFillsIdentityAndFormatsAmounts(t *testing.T) {
	db := &execRecorder{}
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &Store{DB: db, Now: func() time.Time { return fixed }}

	err := store.Record(context.Background(), Entry{
		CustomerID:   7,
		PaymentKind:  "paid",
		LineCount:    2,
		Subtotal:     decimal.RequireFromString("112.00"),
		TotalWithTax: decimal.RequireFromString("100.80"),
		Outcome:      OutcomeAccepted,
	})
	require.NoError(t, err)
	require.Contains(t, db.sql, "INSERT INTO sale_order_submissions")
	require.Len(t, db.args, 18)

	id, ok := db.args[0].(uuid.UUID)
	require.True(t, ok)
	require.NotEqual(t, uuid.Nil, id)
	require.Equal(t, "112", db.args[7])
	require.Equal(t, "100.8", db.args[10])
	require.Equal(t, "accepted", db.args[14])
	require.Equal(t, fixed, db.args[17])
}

func TestRecordWrapsDatabaseError(t *testing.T) {
	store := &Store{DB: &execRecorder{err: errors.New("boom")}}
	err := store.Record(context.Background(), Entry{Outcome: OutcomeFailed})
	require.ErrorContains(t, err, "insert ledger entry")
}

func TestMigrateURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@db:5432/desk?sslmode=disable", migrateURL("postgres://u:p@db:5432/desk?sslmode=disable"))
	require.Equal(t, "pgx5://db/desk", migrateURL("postgresql://db/desk"))
	require.Equal(t, "pgx5://db/desk", migrateURL("pgx5://db/desk"))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

type stubLister struct {
	outcome Outcome
	limit   int
	offset  int
}

func (s *stubLister) List(_ context.Context, outcome Outcome, limit, offset int) ([]Entry, error) {
	s.outcome, s.limit, s.offset = outcome, limit, offset
	return []Entry{{Outcome: outcome, CustomerID: 3}}, nil
}

func TestHandlerListFiltersAndPaginates(t *testing.T) {
	lister := &stubLister{}
	h := &Handler{Store: lister}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions?outcome=Failed&page=3&limit=10", nil)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, OutcomeFailed, lister.outcome)
	require.Equal(t, 10, lister.limit)
	require.Equal(t, 20, lister.offset)

	var body struct {
		Data []Entry `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Len(t, body.Data, 1)
}

func TestHandlerListRejectsUnknownOutcome(t *testing.T) {
	h := &Handler{Store: &stubLister{}}
	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/api/v1/submissions?outcome=lost", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
