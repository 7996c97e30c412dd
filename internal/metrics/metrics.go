package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/arsyilla/qris-relay/internal/aws"
)

// Metric names published by the orchestrator.
const (
	PaymentsCreated       = "PaymentsCreated"
	PaymentsCompleted     = "PaymentsCompleted"
	PaymentsCanceled      = "PaymentsCanceled"
	NotificationsRelayed  = "NotificationsRelayed"
	RelayDeliveryFailures = "RelayDeliveryFailures"
	NotificationsIgnored  = "NotificationsIgnored"
)

// Recorder publishes best-effort counters to CloudWatch. Failures are
// logged and never propagated; metrics must not affect request outcomes.
type Recorder struct {
	cw        aws.CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

// NewRecorder builds a Recorder for one namespace.
func NewRecorder(cw aws.CloudWatchAPI, namespace string) *Recorder {
	return &Recorder{cw: cw, namespace: namespace, nowFunc: time.Now}
}

// Count increments a named counter by one.
func (r *Recorder) Count(ctx context.Context, name string) {
	now := r.nowFunc()
	one := float64(1)
	input := &cloudwatch.PutMetricDataInput{
		Namespace: &r.namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Timestamp:  &now,
				Value:      &one,
				Unit:       cwtypes.StandardUnitCount,
			},
		},
	}
	if _, err := r.cw.PutMetricData(ctx, input); err != nil {
		log.Printf("[metrics] put %s failed: %v", name, err)
	}
}
