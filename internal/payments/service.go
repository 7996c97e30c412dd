package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arsyilla/qris-relay/internal/events"
	"github.com/arsyilla/qris-relay/internal/metrics"
	"github.com/arsyilla/qris-relay/internal/pakasir"
	"github.com/arsyilla/qris-relay/internal/relay"
	"github.com/arsyilla/qris-relay/internal/transactions"
)

// Provider abstracts the Pakasir operations the orchestrator needs.
type Provider interface {
	CreateQris(ctx context.Context, orderID string, amount int64) (*pakasir.Payment, error)
	TransactionDetail(ctx context.Context, orderID string, amount int64) (*pakasir.TransactionDetail, error)
	TransactionCancel(ctx context.Context, orderID string, amount int64) error
}

// Store is the slice of the transaction store the orchestrator uses.
type Store interface {
	Put(ctx context.Context, txn transactions.Transaction) error
	Get(ctx context.Context, orderID string) (*transactions.Transaction, error)
	UpdateStatusIf(ctx context.Context, orderID, expected, next string) error
}

// Forwarder delivers verified notifications downstream.
type Forwarder interface {
	Forward(ctx context.Context, target string, body []byte) error
}

// EventPublisher emits lifecycle events; optional.
type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// MetricRecorder counts outcomes; optional.
type MetricRecorder interface {
	Count(ctx context.Context, name string)
}

// Config groups the orchestrator's dependencies.
type Config struct {
	Provider Provider
	Store    Store
	Relay    Forwarder
	Events   EventPublisher // nil disables events
	Metrics  MetricRecorder // nil disables metrics

	// SelfWebhookURL is this service's own notification endpoint; it is
	// the default relay destination when the client omits one.
	SelfWebhookURL string
}

// Service orchestrates payment creation, webhook verification/relay, and
// cancellation.
type Service struct {
	provider Provider
	store    Store
	relay    Forwarder
	events   EventPublisher
	metrics  MetricRecorder

	selfWebhookURL string
	nowFunc        func() time.Time
	newOrderID     func() string
}

// NewService builds a Service from cfg.
func NewService(cfg Config) *Service {
	return &Service{
		provider:       cfg.Provider,
		store:          cfg.Store,
		relay:          cfg.Relay,
		events:         cfg.Events,
		metrics:        cfg.Metrics,
		selfWebhookURL: cfg.SelfWebhookURL,
		nowFunc:        time.Now,
		newOrderID:     newOrderID,
	}
}

// newOrderID keeps the timestamp-derived INV- shape while the uuid
// fragment guarantees uniqueness under concurrent creates.
func newOrderID() string {
	frag := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("INV-%d-%s", time.Now().UnixMilli(), frag)
}

// CreateResult is what CreatePayment returns to the handler.
type CreateResult struct {
	OrderID      string `json:"order_id"`
	Amount       int64  `json:"amount"`
	Fee          int64  `json:"fee"`
	TotalPayment int64  `json:"total_payment"`
	QRString     string `json:"qr_string"`
	QRImageURL   string `json:"qr_image_url"`
	ExpiredAt    string `json:"expired_at"`
}

// CreatePayment opens a QRIS request with the provider and persists a
// pending transaction. No local record exists when the provider call
// fails; a store failure after a successful provider call leaves an
// orphaned provider-side transaction (known inconsistency window, not
// retried).
func (s *Service) CreatePayment(ctx context.Context, amount int64, clientWebhookURL string) (*CreateResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if clientWebhookURL == "" {
		clientWebhookURL = s.selfWebhookURL
	}

	orderID := s.newOrderID()

	log.Printf("[create] requesting QRIS for %s amount=%d", orderID, amount)
	payment, err := s.provider.CreateQris(ctx, orderID, amount)
	if err != nil {
		return nil, err
	}

	txn := transactions.Transaction{
		OrderID:          orderID,
		ClientWebhookURL: clientWebhookURL,
		Amount:           amount,
		Status:           transactions.StatusPending,
		QRString:         payment.PaymentNumber,
		ExpiredAt:        payment.ExpiredAt,
		CreatedAt:        s.nowFunc(),
	}
	if err := s.store.Put(ctx, txn); err != nil {
		return nil, fmt.Errorf("persist transaction %s: %w", orderID, err)
	}

	s.emit(ctx, events.TypePaymentCreated, orderID, amount, transactions.StatusPending)
	s.count(ctx, metrics.PaymentsCreated)

	return &CreateResult{
		OrderID:      orderID,
		Amount:       payment.Amount,
		Fee:          payment.Fee,
		TotalPayment: payment.TotalPayment,
		QRString:     payment.PaymentNumber,
		QRImageURL:   qrImageURL(payment.PaymentNumber),
		ExpiredAt:    payment.ExpiredAt,
	}, nil
}

func qrImageURL(qr string) string {
	return "https://chart.googleapis.com/chart?chs=300x300&cht=qr&chl=" + url.QueryEscape(qr) + "&choe=UTF-8"
}

// Notification outcomes returned to the provider. The endpoint answers
// 200 for all of them; the contract with the provider is "received and
// processed", not "downstream client informed".
const (
	OutcomeReceived         = "received"
	OutcomeIgnoredUnknownID = "ignored_unknown_id"
	OutcomeSuccess          = "success"
)

// HandleNotification processes an inbound status webhook. The claimed
// status in the body is untrusted; truth is re-derived from the provider
// keyed by (order_id, stored amount). rawBody is forwarded verbatim on
// relay. Downstream clients must treat relayed bodies as idempotent by
// order_id: the provider may deliver its notification more than once.
func (s *Service) HandleNotification(ctx context.Context, orderID, claimedStatus string, rawBody []byte) (string, error) {
	txn, err := s.store.Get(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("lookup transaction %s: %w", orderID, err)
	}
	if txn == nil {
		// Unknown ids are acknowledged, not errored, so the provider
		// does not retry forever on transactions we never created.
		log.Printf("[webhook] ignored unknown order id %s", orderID)
		s.count(ctx, metrics.NotificationsIgnored)
		return OutcomeIgnoredUnknownID, nil
	}

	if transactions.IsTerminal(txn.Status) {
		log.Printf("[webhook] %s already %s, no-op", orderID, txn.Status)
		return OutcomeReceived, nil
	}

	log.Printf("[verify] re-checking %s with provider (claimed %q)", orderID, claimedStatus)
	detail, err := s.provider.TransactionDetail(ctx, orderID, txn.Amount)
	if err != nil {
		// Verification failures are logged and acknowledged; the
		// provider will notify again and verification runs fresh.
		log.Printf("[verify] detail lookup for %s failed: %v", orderID, err)
		return OutcomeReceived, nil
	}
	if detail.Status != transactions.StatusCompleted {
		log.Printf("[verify] %s is %q at provider, not completing", orderID, detail.Status)
		return OutcomeReceived, nil
	}

	err = s.store.UpdateStatusIf(ctx, orderID, transactions.StatusPending, transactions.StatusCompleted)
	if errors.Is(err, transactions.ErrStatusMismatch) {
		// Lost a race to a concurrent webhook or cancel; whoever won
		// owns the relay.
		log.Printf("[webhook] %s reached a terminal state concurrently, no-op", orderID)
		return OutcomeReceived, nil
	}
	if err != nil {
		return "", fmt.Errorf("complete transaction %s: %w", orderID, err)
	}

	s.emit(ctx, events.TypePaymentCompleted, orderID, txn.Amount, transactions.StatusCompleted)
	s.count(ctx, metrics.PaymentsCompleted)

	s.relayNotification(ctx, txn, rawBody)
	return OutcomeSuccess, nil
}

// relayNotification forwards the original body to the stored webhook URL.
// Failures never roll back the completed status; delivery is best-effort
// with a single attempt.
func (s *Service) relayNotification(ctx context.Context, txn *transactions.Transaction, rawBody []byte) {
	target := txn.ClientWebhookURL
	if target == "" {
		return
	}
	err := s.relay.Forward(ctx, target, rawBody)
	switch {
	case errors.Is(err, relay.ErrSelfTarget):
		log.Printf("[relay] %s targets our own webhook, skipped", txn.OrderID)
	case err != nil:
		log.Printf("[relay] delivery for %s to %s failed: %v", txn.OrderID, target, err)
		s.count(ctx, metrics.RelayDeliveryFailures)
	default:
		log.Printf("[relay] forwarded %s to %s", txn.OrderID, target)
		s.count(ctx, metrics.NotificationsRelayed)
	}
}

// CancelPayment cancels a pending transaction provider-side and marks it
// canceled locally. A completed transaction is rejected rather than
// overwritten; cancelling an already-canceled one is an idempotent
// success.
func (s *Service) CancelPayment(ctx context.Context, orderID string, amount int64) error {
	txn, err := s.store.Get(ctx, orderID)
	if err != nil {
		return fmt.Errorf("lookup transaction %s: %w", orderID, err)
	}
	if txn == nil {
		return ErrNotFound
	}
	switch txn.Status {
	case transactions.StatusCompleted:
		return ErrAlreadyCompleted
	case transactions.StatusCanceled:
		return nil
	}

	if err := s.provider.TransactionCancel(ctx, orderID, amount); err != nil {
		return err
	}

	err = s.store.UpdateStatusIf(ctx, orderID, transactions.StatusPending, transactions.StatusCanceled)
	if errors.Is(err, transactions.ErrStatusMismatch) {
		// A webhook completed the transaction between our read and the
		// update. Surface that instead of pretending the cancel took.
		fresh, ferr := s.store.Get(ctx, orderID)
		if ferr == nil && fresh != nil && fresh.Status == transactions.StatusCompleted {
			return ErrAlreadyCompleted
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("cancel transaction %s: %w", orderID, err)
	}

	s.emit(ctx, events.TypePaymentCanceled, orderID, txn.Amount, transactions.StatusCanceled)
	s.count(ctx, metrics.PaymentsCanceled)
	log.Printf("[cancel] %s canceled", orderID)
	return nil
}

func (s *Service) emit(ctx context.Context, typ, orderID string, amount int64, status string) {
	if s.events == nil {
		return
	}
	ev := events.Event{Type: typ, OrderID: orderID, Amount: amount, Status: status}
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Printf("[events] publish %s for %s failed: %v", typ, orderID, err)
	}
}

func (s *Service) count(ctx context.Context, name string) {
	if s.metrics == nil {
		return
	}
	s.metrics.Count(ctx, name)
}
