package pakasir

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// ProviderError is returned when the provider responds with a non-success
// status. Body keeps the raw response so handlers can pass the provider's
// error details through.
type ProviderError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("pakasir %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Client talks to the Pakasir HTTP API. The injected http.Client bounds
// every call with its timeout; callers must not retry create calls
// (order/amount pairing must stay consistent to avoid duplicate charges).
type Client struct {
	baseURL string
	project string
	apiKey  string
	httpc   *http.Client
}

// NewClient builds a provider client for one project.
func NewClient(baseURL, project, apiKey string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		baseURL: baseURL,
		project: project,
		apiKey:  apiKey,
		httpc:   httpc,
	}
}

// CreateQris opens a QRIS payment request for orderID/amount.
func (c *Client) CreateQris(ctx context.Context, orderID string, amount int64) (*Payment, error) {
	var out createResponse
	if err := c.post(ctx, "transactioncreate/qris", orderID, amount, &out); err != nil {
		return nil, err
	}
	if out.Payment.PaymentNumber == "" {
		return nil, &ProviderError{Op: "transactioncreate/qris", StatusCode: http.StatusOK, Body: "response missing payment object"}
	}
	return &out.Payment, nil
}

// TransactionDetail fetches the authoritative status for orderID. The
// amount must match the original transaction or the provider rejects the
// lookup.
func (c *Client) TransactionDetail(ctx context.Context, orderID string, amount int64) (*TransactionDetail, error) {
	q := url.Values{}
	q.Set("project", c.project)
	q.Set("order_id", orderID)
	q.Set("amount", strconv.FormatInt(amount, 10))
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transactiondetail?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build detail request: %w", err)
	}

	var out detailResponse
	if err := c.do(req, "transactiondetail", &out); err != nil {
		return nil, err
	}
	if out.Transaction.Status == "" {
		return nil, &ProviderError{Op: "transactiondetail", StatusCode: http.StatusOK, Body: "response missing transaction object"}
	}
	return &out.Transaction, nil
}

// TransactionCancel cancels orderID provider-side. The provider rejects
// cancellation of transactions it already considers completed.
func (c *Client) TransactionCancel(ctx context.Context, orderID string, amount int64) error {
	return c.post(ctx, "transactioncancel", orderID, amount, nil)
}

func (c *Client) post(ctx context.Context, op, orderID string, amount int64, out interface{}) error {
	payload := transactionRequest{
		Project: c.project,
		OrderID: orderID,
		Amount:  amount,
		APIKey:  c.apiKey,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+op, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out interface{}) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("pakasir %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("pakasir %s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProviderError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("pakasir %s: decode response: %w", op, err)
		}
	}
	return nil
}
