package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hireloop/hireloop/pkg/telemetry/correlation"
)

// EventType names a platform notification.
type EventType string

const (
	EventInterestReceived EventType = "interest_received"
	EventMutualMatch      EventType = "mutual_match"
	EventMatchFulfilled   EventType = "match_fulfilled"
)

// Event is a fire-and-forget notification payload.
type Event struct {
	Type           EventType
	CandidateID    int64
	OrganizationID int64
	JobID          int64
	ApplicationID  int64
}

// Notifier delivers a single event. Implementations must not be relied on
// for correctness; delivery failures are logged and dropped.
type Notifier interface {
	Notify(ctx context.Context, evt Event) error
}

// Dispatcher fans events out to the configured notifier off the request path.
type Dispatcher struct {
	log      *zap.Logger
	notifier Notifier
	timeout  time.Duration
}

func NewDispatcher(log *zap.Logger, notifier Notifier) *Dispatcher {
	return &Dispatcher{
		log:      log.Named("notification.dispatcher"),
		notifier: notifier,
		timeout:  10 * time.Second,
	}
}

// Dispatch sends the event asynchronously. It never blocks the caller and
// never surfaces an error to it.
func (d *Dispatcher) Dispatch(ctx context.Context, evt Event) {
	if d == nil || d.notifier == nil {
		return
	}

	// Detach from the request context so cancellation does not kill delivery,
	// but keep the correlation id for log stitching.
	cid := correlation.ExtractCorrelationID(ctx)
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		sendCtx = correlation.ContextWithCorrelationID(sendCtx, cid)

		if err := d.notifier.Notify(sendCtx, evt); err != nil {
			d.log.Warn("notification delivery failed",
				zap.String("type", string(evt.Type)),
				zap.String("correlation_id", cid),
				zap.Error(err),
			)
		}
	}()
}
