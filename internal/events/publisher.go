package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/arsyilla/qris-relay/internal/aws"
)

// Lifecycle event types emitted for external consumers. The relay path
// itself stays synchronous; these are an audit trail, not a work queue.
const (
	TypePaymentCreated   = "payment_created"
	TypePaymentCompleted = "payment_completed"
	TypePaymentCanceled  = "payment_canceled"
)

// Event is the message body published to the events queue. Consumers
// should treat events as idempotent by (type, order_id).
type Event struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"order_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Publisher wraps an SQS client and a queue URL.
type Publisher struct {
	SQS      aws.SQSAPI
	QueueURL string
}

// NewPublisher returns a Publisher bound to a queue URL.
func NewPublisher(sqsClient aws.SQSAPI, queueURL string) *Publisher {
	return &Publisher{
		SQS:      sqsClient,
		QueueURL: queueURL,
	}
}

// Publish sends one lifecycle event. Type and order id ride along as
// message attributes so consumers can filter without decoding bodies.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	if ev.EmittedAt.IsZero() {
		ev.EmittedAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	bodyStr := string(body)

	input := &sqs.SendMessageInput{
		QueueUrl:    &p.QueueURL,
		MessageBody: &bodyStr,
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"type": {
				DataType:    awsString("String"),
				StringValue: &ev.Type,
			},
			"order_id": {
				DataType:    awsString("String"),
				StringValue: &ev.OrderID,
			},
		},
	}

	if _, err := p.SQS.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
