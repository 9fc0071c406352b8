package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"governance/internal/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingChannel struct {
	name string
	err  error

	mu   sync.Mutex
	msgs []Message
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Deliver(_ context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return c.err
}

func (c *recordingChannel) delivered() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.msgs...)
}

type staticDirectory map[uuid.UUID]Recipient

func (d staticDirectory) Resolve(_ context.Context, id uuid.UUID) (Recipient, error) {
	if r, ok := d[id]; ok {
		return r, nil
	}
	return Recipient{}, errors.New("unknown user")
}

func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func TestDispatcher_DeliversToEveryChannel(t *testing.T) {
	reviewer := uuid.New()
	dir := staticDirectory{reviewer: {UserID: reviewer, Email: "rev@example.com", Name: "Rev"}}
	failing := &recordingChannel{name: "email", err: errors.New("smtp down")}
	working := &recordingChannel{name: "websocket"}
	m := newTestMetrics()

	d := NewDispatcher(dir, []Channel{failing, working}, Options{Workers: 2, QueueSize: 8}, zap.NewNop(), m)
	d.Start()

	require.NoError(t, d.Send(context.Background(), EventReviewRequested, reviewer, map[string]any{"identifier": "COMP-1"}))
	d.Close()

	got := working.delivered()
	require.Len(t, got, 1)
	assert.Equal(t, EventReviewRequested, got[0].Event)
	assert.Equal(t, "rev@example.com", got[0].Recipient.Email)
	assert.Equal(t, "COMP-1", got[0].Payload["identifier"])

	assert.Len(t, failing.delivered(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("email", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("websocket", "sent")))
}

func TestDispatcher_UnresolvedRecipientStillDelivered(t *testing.T) {
	ch := &recordingChannel{name: "websocket"}
	d := NewDispatcher(staticDirectory{}, []Channel{ch}, Options{Workers: 1, QueueSize: 1}, zap.NewNop(), nil)
	d.Start()

	id := uuid.New()
	require.NoError(t, d.Send(context.Background(), EventDecisionRecorded, id, nil))
	d.Close()

	got := ch.delivered()
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].Recipient.UserID)
	assert.Empty(t, got[0].Recipient.Email)
}

func TestDispatcher_FullQueueDropsWithoutBlocking(t *testing.T) {
	ch := &recordingChannel{name: "websocket"}
	m := newTestMetrics()
	d := NewDispatcher(nil, []Channel{ch}, Options{Workers: 1, QueueSize: 1, Timeout: time.Second}, zap.NewNop(), m)

	// Workers are not running yet, so the second message has nowhere to go.
	require.NoError(t, d.Send(context.Background(), EventResubmitted, uuid.New(), nil))
	err := d.Send(context.Background(), EventResubmitted, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsDropped))

	d.Start()
	d.Close()
	assert.Len(t, ch.delivered(), 1)

	assert.ErrorIs(t, d.Send(context.Background(), EventResubmitted, uuid.New(), nil), ErrClosed)
}
