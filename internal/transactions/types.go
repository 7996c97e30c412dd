package transactions

import "time"

// Transaction statuses. pending is the initial state; completed and
// canceled are terminal and never reversed through normal paths.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
)

// Transaction is the item stored in the transactions DynamoDB table.
// Everything except status is immutable after insertion.
type Transaction struct {
	OrderID          string    `dynamodbav:"order_id"` // PK
	ClientWebhookURL string    `dynamodbav:"client_webhook_url"`
	Amount           int64     `dynamodbav:"amount"`
	Status           string    `dynamodbav:"status"` // pending | completed | canceled
	QRString         string    `dynamodbav:"qr_string,omitempty"`
	ExpiredAt        string    `dynamodbav:"expired_at,omitempty"` // provider-supplied, informational only
	CreatedAt        time.Time `dynamodbav:"created_at"`
	UpdatedAt        time.Time `dynamodbav:"updated_at"`
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCanceled
}
