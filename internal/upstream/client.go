package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/pharmacy-desk/internal/common"
	"github.com/noah-isme/pharmacy-desk/internal/obs"
	"github.com/noah-isme/pharmacy-desk/internal/resilience"
	"github.com/noah-isme/pharmacy-desk/internal/salesorder"
	"github.com/noah-isme/pharmacy-desk/internal/units"
)

const (
	pathUnits           = "/api/v1/units"
	pathCustomers       = "/api/v1/customers/"
	pathPaymentStatuses = "/api/v1/payment-statuses"
	pathSaleOrders      = "/api/v1/sale-orders"

	maxResponseBytes = 4 << 20
)

// ErrUnavailable wraps transport failures talking to the order service.
var ErrUnavailable = errors.New("upstream: order service unavailable")

// Config controls the order service client.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	ReadRetries int
	Breaker     *resilience.Breaker
	Transport   http.RoundTripper
}

// Client talks to the order service on behalf of the authenticated caller.
type Client struct {
	base   *url.URL
	reads  resilience.HTTPClient
	writes resilience.HTTPClient
	logger zerolog.Logger
}

// New builds a Client. Reads are retried up to ReadRetries extra times; order
// creation is attempted exactly once.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse upstream base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("upstream base url %q must be absolute", cfg.BaseURL)
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	httpClient := &http.Client{Transport: otelhttp.NewTransport(transport)}
	breaker := cfg.Breaker
	if breaker == nil {
		breaker = resilience.NewBreaker(10, 0.5, 30*time.Second).WithTarget("order_service").WithLogger(logger)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: base,
		reads: resilience.HTTPClient{
			Client:      httpClient,
			Breaker:     breaker,
			BaseBackoff: 100 * time.Millisecond,
			MaxAttempts: 1 + max(cfg.ReadRetries, 0),
			Jitter:      0.2,
			Timeout:     timeout,
		},
		writes: resilience.HTTPClient{
			Client:      httpClient,
			Breaker:     breaker,
			MaxAttempts: 1,
			Timeout:     timeout,
		},
		logger: logger,
	}, nil
}

// ListUnits fetches the unit reference table.
func (c *Client) ListUnits(ctx context.Context) ([]units.Definition, error) {
	var out []units.Definition
	if err := c.get(ctx, "list_units", pathUnits, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCustomer fetches one customer with their wallet balance.
func (c *Client) GetCustomer(ctx context.Context, id int64) (salesorder.Customer, error) {
	var out salesorder.Customer
	err := c.get(ctx, "get_customer", pathCustomers+strconv.FormatInt(id, 10), &out)
	return out, err
}

// ListPaymentStatuses fetches the payment status reference data.
func (c *Client) ListPaymentStatuses(ctx context.Context) ([]salesorder.PaymentStatus, error) {
	var out []salesorder.PaymentStatus
	if err := c.get(ctx, "list_payment_statuses", pathPaymentStatuses, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type createdBody struct {
	ID          flexibleID `json:"id"`
	OrderNumber string     `json:"orderNumber"`
}

// CreateSaleOrder posts the order. It is never retried.
func (c *Client) CreateSaleOrder(ctx context.Context, payload salesorder.CreateSaleOrderRequest) (salesorder.Created, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return salesorder.Created{}, fmt.Errorf("encode sale order: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, pathSaleOrders, body)
	if err != nil {
		return salesorder.Created{}, err
	}
	var out createdBody
	if err := c.do(ctx, c.writes, "create_sale_order", req, &out); err != nil {
		return salesorder.Created{}, err
	}
	return salesorder.Created{OrderID: string(out.ID), OrderNumber: out.OrderNumber}, nil
}

func (c *Client) get(ctx context.Context, op, path string, dst any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(ctx, c.reads, op, req, dst)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := common.AccessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, hc resilience.HTTPClient, op string, req *http.Request, dst any) error {
	resp, err := hc.Do(ctx, req)
	if err != nil {
		obs.ObserveUpstream(op, "error")
		c.logger.Warn().Err(err).Str("operation", op).Msg("upstream_request_failed")
		return common.NewAppError("UPSTREAM_UNAVAILABLE", GenericMessage, http.StatusBadGateway, fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		obs.ObserveUpstream(op, "error")
		return common.NewAppError("UPSTREAM_UNAVAILABLE", GenericMessage, http.StatusBadGateway, fmt.Errorf("%w: read body: %v", ErrUnavailable, err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		obs.ObserveUpstream(op, strconv.Itoa(resp.StatusCode))
		appErr := NormalizeError(resp.StatusCode, raw)
		c.logger.Warn().Str("operation", op).Int("status", resp.StatusCode).Str("message", appErr.Message).Msg("upstream_request_rejected")
		return appErr
	}
	obs.ObserveUpstream(op, "ok")
	if dst == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := decodeData(raw, dst); err != nil {
		return common.NewAppError("UPSTREAM_BAD_RESPONSE", GenericMessage, http.StatusBadGateway, fmt.Errorf("decode %s: %w", op, err))
	}
	return nil
}

// decodeData accepts both {"data": ...} envelopes and bare payloads.
func decodeData(raw []byte, dst any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
			return json.Unmarshal(env.Data, dst)
		}
	}
	return json.Unmarshal(raw, dst)
}

// flexibleID reads an identifier that may be a JSON string or number.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}
