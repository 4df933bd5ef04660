package nuvemshop

import (
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

	"github.com/nuvemflow/orderdesk-backend/pkg/config"
	"github.com/nuvemflow/orderdesk-backend/pkg/enums"
	pkgerrors "github.com/nuvemflow/orderdesk-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://api.nuvemshop.com.br/v1"
	defaultTimeout              = 20 * time.Second
	totalCountHeader            = "X-Total-Count"
	responseBodyReadLimit int64 = 1024
)

var (
	errStoreIDRequired = errors.New("nuvemshop store id is required")
	errTokenRequired   = errors.New("nuvemshop access token is required")

	// ErrOrderNotFound is wrapped into the error returned when the API answers 404 for one order.
	ErrOrderNotFound = errors.New("order not found")
)

// Client talks to the Nuvemshop (Tiendanube) REST API for a single store.
type Client struct {
	httpClient *http.Client
	baseURL    string
	storeID    string
	token      string
	userAgent  string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the API client from configuration.
func NewClient(cfg config.NuvemshopConfig, opts ...Option) (*Client, error) {
	storeID := strings.TrimSpace(cfg.StoreID)
	if storeID == "" {
		return nil, errStoreIDRequired
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errTokenRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		storeID:    storeID,
		token:      token,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
	}
	WithBaseURL(cfg.BaseURL)(client)

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// PageRequest selects one page of the order listing.
type PageRequest struct {
	Page    int
	PerPage int
	// ShippingStatus is an internal status or "any".
	ShippingStatus string
}

// OrdersPage is one page of orders plus the store-wide total for the filter.
type OrdersPage struct {
	Orders []Order
	Total  int
}

// ShippingStatusParam translates an internal status filter into the upstream
// shipping_status query value. It returns "" when no filter should be sent.
func ShippingStatusParam(filter string) string {
	switch enums.ShippingStatus(filter) {
	case enums.ShippingStatusUnshipped:
		return "unfulfilled"
	case enums.ShippingStatusShipped:
		return "fulfilled"
	case enums.ShippingStatusUnpacked:
		return "unpacked"
	default:
		return ""
	}
}

// FetchOrdersPage lists orders. A 404 from the listing means the page is past the
// end and yields an empty page rather than an error.
func (c *Client) FetchOrdersPage(ctx context.Context, req PageRequest) (*OrdersPage, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "nuvemshop client not configured")
	}

	query := url.Values{}
	if req.Page > 0 {
		query.Set("page", strconv.Itoa(req.Page))
	}
	if req.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(req.PerPage))
	}
	if status := ShippingStatusParam(req.ShippingStatus); status != "" {
		query.Set("shipping_status", status)
	}

	resp, err := c.get(ctx, "orders", query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return &OrdersPage{Orders: []Order{}}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "list orders request failed")
	}

	var orders []Order
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode orders response")
	}
	if orders == nil {
		orders = []Order{}
	}

	total := len(orders)
	if header := strings.TrimSpace(resp.Header.Get(totalCountHeader)); header != "" {
		if parsed, err := strconv.Atoi(header); err == nil && parsed >= 0 {
			total = parsed
		}
	}

	return &OrdersPage{Orders: orders, Total: total}, nil
}

// FetchOrder loads a single order by id.
func (c *Client) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "nuvemshop client not configured")
	}
	trimmed := strings.TrimSpace(orderID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	resp, err := c.get(ctx, "orders/"+url.PathEscape(trimmed), nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrOrderNotFound, fmt.Sprintf("order %s not found", trimmed))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "get order request failed")
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order response")
	}
	return &order, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	endpoint := c.buildURL(path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build nuvemshop request")
	}

	httpReq.Header.Set("Authentication", "bearer "+c.token)
	httpReq.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute nuvemshop request")
	}
	return resp, nil
}

func statusError(resp *http.Response, message string) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), message)
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s/%s", trimmed, url.PathEscape(c.storeID), path)
}
