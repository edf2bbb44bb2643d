package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hireloop/hireloop/pkg/telemetry/correlation"
)

type channelNotifier struct {
	events chan Event
	cids   chan string
	err    error
}

func (n *channelNotifier) Notify(ctx context.Context, evt Event) error {
	n.events <- evt
	n.cids <- correlation.ExtractCorrelationID(ctx)
	return n.err
}

func TestDispatch_DeliversAsynchronously(t *testing.T) {
	notifier := &channelNotifier{
		events: make(chan Event, 1),
		cids:   make(chan string, 1),
	}
	d := NewDispatcher(zap.NewNop(), notifier)

	ctx := correlation.ContextWithCorrelationID(context.Background(), "cid-123")
	d.Dispatch(ctx, Event{Type: EventMutualMatch, ApplicationID: 7})

	select {
	case evt := <-notifier.events:
		assert.Equal(t, EventMutualMatch, evt.Type)
		assert.Equal(t, int64(7), evt.ApplicationID)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}

	// The correlation id survives the context detach.
	assert.Equal(t, "cid-123", <-notifier.cids)
}

func TestDispatch_SurvivesCallerCancellation(t *testing.T) {
	notifier := &channelNotifier{
		events: make(chan Event, 1),
		cids:   make(chan string, 1),
	}
	d := NewDispatcher(zap.NewNop(), notifier)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Dispatch(ctx, Event{Type: EventInterestReceived})

	select {
	case evt := <-notifier.events:
		assert.Equal(t, EventInterestReceived, evt.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered after caller cancellation")
	}
	<-notifier.cids
}

func TestDispatch_SwallowsDeliveryErrors(t *testing.T) {
	notifier := &channelNotifier{
		events: make(chan Event, 1),
		cids:   make(chan string, 1),
		err:    errors.New("smtp down"),
	}
	d := NewDispatcher(zap.NewNop(), notifier)

	// The caller sees nothing; the failure is only logged.
	d.Dispatch(context.Background(), Event{Type: EventMatchFulfilled})
	require.Equal(t, EventMatchFulfilled, (<-notifier.events).Type)
	<-notifier.cids
}

func TestDispatch_NilSafe(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(context.Background(), Event{Type: EventMutualMatch})

	d = NewDispatcher(zap.NewNop(), nil)
	d.Dispatch(context.Background(), Event{Type: EventMutualMatch})
}
