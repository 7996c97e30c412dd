package validation

import (
	"testing"
)

func TestCreatePaymentRequest_Valid(t *testing.T) {
	v := New()

	req := CreatePaymentRequest{
		Amount:           99000,
		ClientWebhookURL: "https://aplikasi-anda.com/webhook",
	}
	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}

	// webhook url is optional
	req.ClientWebhookURL = ""
	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid without webhook url, got error: %v", err)
	}
}

func TestCreatePaymentRequest_MissingAmount(t *testing.T) {
	v := New()

	if err := v.Struct(CreatePaymentRequest{}); err == nil {
		t.Fatal("expected validation error for missing amount, got nil")
	}
	if err := v.Struct(CreatePaymentRequest{Amount: -5}); err == nil {
		t.Fatal("expected validation error for negative amount, got nil")
	}
}

func TestCreatePaymentRequest_BadWebhookURL(t *testing.T) {
	v := New()

	req := CreatePaymentRequest{Amount: 1000, ClientWebhookURL: "not a url"}
	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for malformed url, got nil")
	}
}

func TestCancelPaymentRequest(t *testing.T) {
	v := New()

	if err := v.Struct(CancelPaymentRequest{OrderID: "INV-1", Amount: 1000}); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
	if err := v.Struct(CancelPaymentRequest{Amount: 1000}); err == nil {
		t.Fatal("expected validation error for missing order_id, got nil")
	}
	if err := v.Struct(CancelPaymentRequest{OrderID: "INV-1"}); err == nil {
		t.Fatal("expected validation error for missing amount, got nil")
	}
}
