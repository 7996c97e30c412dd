package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/arsyilla/qris-relay/internal/pakasir"
	"github.com/arsyilla/qris-relay/internal/payments"
	"github.com/arsyilla/qris-relay/internal/transactions"
)

type stubProvider struct {
	createErr    error
	detailStatus string
	cancelErr    error
}

func (s *stubProvider) CreateQris(ctx context.Context, orderID string, amount int64) (*pakasir.Payment, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &pakasir.Payment{
		PaymentNumber: "QR-" + orderID,
		Amount:        amount,
		Fee:           250,
		TotalPayment:  amount + 250,
		ExpiredAt:     "2026-01-02T15:04:05Z",
	}, nil
}

func (s *stubProvider) TransactionDetail(ctx context.Context, orderID string, amount int64) (*pakasir.TransactionDetail, error) {
	return &pakasir.TransactionDetail{OrderID: orderID, Amount: amount, Status: s.detailStatus}, nil
}

func (s *stubProvider) TransactionCancel(ctx context.Context, orderID string, amount int64) error {
	return s.cancelErr
}

type stubStore struct {
	items map[string]transactions.Transaction
}

func (s *stubStore) Put(ctx context.Context, txn transactions.Transaction) error {
	s.items[txn.OrderID] = txn
	return nil
}

func (s *stubStore) Get(ctx context.Context, orderID string) (*transactions.Transaction, error) {
	txn, ok := s.items[orderID]
	if !ok {
		return nil, nil
	}
	cp := txn
	return &cp, nil
}

func (s *stubStore) UpdateStatusIf(ctx context.Context, orderID, expected, next string) error {
	txn, ok := s.items[orderID]
	if !ok || txn.Status != expected {
		return transactions.ErrStatusMismatch
	}
	txn.Status = next
	s.items[orderID] = txn
	return nil
}

type stubForwarder struct{ calls int }

func (s *stubForwarder) Forward(ctx context.Context, target string, body []byte) error {
	s.calls++
	return nil
}

func newTestRouter(p *stubProvider, st *stubStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := payments.NewService(payments.Config{
		Provider:       p,
		Store:          st,
		Relay:          &stubForwarder{},
		SelfWebhookURL: "https://relay.example.com/webhook",
	})
	r := gin.New()
	RegisterPaymentRoutes(r, svc)
	RegisterStaticPages(r)
	RegisterFallbacks(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePayment_HTTPFlow(t *testing.T) {
	st := &stubStore{items: map[string]transactions.Transaction{}}
	r := newTestRouter(&stubProvider{}, st)

	w := doJSON(t, r, http.MethodPost, "/create-payment", `{"amount":10000,"client_webhook_url":"https://client.example.com/hook"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, field := range []string{"order_id", "amount", "fee", "total_payment", "qr_string", "qr_image_url", "expired_at"} {
		if _, ok := res[field]; !ok {
			t.Fatalf("response missing %s: %v", field, res)
		}
	}
	if len(st.items) != 1 {
		t.Fatalf("expected 1 stored transaction, got %d", len(st.items))
	}
}

func TestCreatePayment_MissingAmountIs400(t *testing.T) {
	st := &stubStore{items: map[string]transactions.Transaction{}}
	r := newTestRouter(&stubProvider{}, st)

	w := doJSON(t, r, http.MethodPost, "/create-payment", `{"client_webhook_url":"https://client.example.com/hook"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if len(st.items) != 0 {
		t.Fatal("record created despite validation failure")
	}
}

func TestCreatePayment_ProviderErrorIs500WithDetails(t *testing.T) {
	p := &stubProvider{createErr: &pakasir.ProviderError{Op: "transactioncreate/qris", StatusCode: 422, Body: `{"error":"minimum amount"}`}}
	r := newTestRouter(p, &stubStore{items: map[string]transactions.Transaction{}})

	w := doJSON(t, r, http.MethodPost, "/create-payment", `{"amount":10}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "minimum amount") {
		t.Fatalf("provider details not passed through: %s", w.Body.String())
	}
}

func TestWebhook_UnknownIDAcknowledged(t *testing.T) {
	r := newTestRouter(&stubProvider{detailStatus: "completed"}, &stubStore{items: map[string]transactions.Transaction{}})

	w := doJSON(t, r, http.MethodPost, "/webhook", `{"order_id":"INV-none","status":"completed"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ignored_unknown_id") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestWebhook_VerifiedCompletion(t *testing.T) {
	st := &stubStore{items: map[string]transactions.Transaction{
		"INV-1": {OrderID: "INV-1", Amount: 10000, Status: transactions.StatusPending, ClientWebhookURL: "https://client.example.com/hook"},
	}}
	r := newTestRouter(&stubProvider{detailStatus: "completed"}, st)

	w := doJSON(t, r, http.MethodPost, "/webhook", `{"order_id":"INV-1","status":"completed"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "success") {
		t.Fatalf("body = %s", w.Body.String())
	}
	if st.items["INV-1"].Status != transactions.StatusCompleted {
		t.Fatalf("stored status = %s", st.items["INV-1"].Status)
	}
}

func TestWebhook_MissingOrderIDAcknowledged(t *testing.T) {
	r := newTestRouter(&stubProvider{}, &stubStore{items: map[string]transactions.Transaction{}})

	w := doJSON(t, r, http.MethodPost, "/webhook", `{"status":"completed"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "received") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestCancelPayment_HTTPStatuses(t *testing.T) {
	st := &stubStore{items: map[string]transactions.Transaction{
		"INV-pending":   {OrderID: "INV-pending", Amount: 10000, Status: transactions.StatusPending},
		"INV-completed": {OrderID: "INV-completed", Amount: 10000, Status: transactions.StatusCompleted},
	}}
	r := newTestRouter(&stubProvider{}, st)

	w := doJSON(t, r, http.MethodPost, "/cancel-payment", `{"order_id":"INV-pending","amount":10000}`)
	if w.Code != http.StatusOK {
		t.Fatalf("pending cancel status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/cancel-payment", `{"order_id":"INV-completed","amount":10000}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("completed cancel status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/cancel-payment", `{"order_id":"INV-none","amount":10000}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown cancel status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/cancel-payment", `{"order_id":"INV-pending"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing amount status = %d", w.Code)
	}
}

func TestRouter_NotFoundListsOperations(t *testing.T) {
	r := newTestRouter(&stubProvider{}, &stubStore{items: map[string]transactions.Transaction{}})

	w := doJSON(t, r, http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	for _, p := range OperationPaths {
		if !strings.Contains(w.Body.String(), p) {
			t.Fatalf("404 body missing %s: %s", p, w.Body.String())
		}
	}
}

func TestRouter_MethodNotAllowedDistinctFrom404(t *testing.T) {
	r := newTestRouter(&stubProvider{}, &stubStore{items: map[string]transactions.Transaction{}})

	w := doJSON(t, r, http.MethodGet, "/create-payment", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}

func TestStaticPages(t *testing.T) {
	r := newTestRouter(&stubProvider{}, &stubStore{items: map[string]transactions.Transaction{}})

	for _, path := range []string{"/", "/docs", "/donate"} {
		w := doJSON(t, r, http.MethodGet, path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Fatalf("%s content type = %s", path, ct)
		}
	}
}
