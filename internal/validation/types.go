package validation

// CreatePaymentRequest is the payload for POST /create-payment.
// client_webhook_url is optional; when omitted the service relays to its
// own notification endpoint (which the loop guard then skips).
type CreatePaymentRequest struct {
	Amount           int64  `json:"amount" validate:"required,gt=0"`
	ClientWebhookURL string `json:"client_webhook_url" validate:"omitempty,url"`
}

// CancelPaymentRequest is the payload for POST /cancel-payment. The
// provider requires the original amount alongside the order id.
type CancelPaymentRequest struct {
	OrderID string `json:"order_id" validate:"required"`
	Amount  int64  `json:"amount" validate:"required,gt=0"`
}
