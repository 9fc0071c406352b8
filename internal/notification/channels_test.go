package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mail "github.com/go-mail/mail/v2"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDialer struct {
	sent []*mail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*mail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

type fakePublisher struct {
	userID uuid.UUID
	data   []byte
}

func (f *fakePublisher) Publish(userID uuid.UUID, data []byte) {
	f.userID, f.data = userID, data
}

func sampleMessage() Message {
	return Message{
		Event:     EventDecisionRecorded,
		Recipient: Recipient{UserID: uuid.New(), Email: "owner@example.com", Name: "Owner"},
		Payload:   map[string]any{"identifier": "COMP-7", "approved": true},
		SentAt:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestEmailChannel(t *testing.T) {
	t.Run("sends a summary to the recipient", func(t *testing.T) {
		dialer := &fakeDialer{}
		ch := NewEmailChannel(dialer, "governance@example.com")

		require.NoError(t, ch.Deliver(context.Background(), sampleMessage()))
		require.Len(t, dialer.sent, 1)
		assert.Equal(t, []string{"Decision recorded: COMP-7"}, dialer.sent[0].GetHeader("Subject"))
		assert.Equal(t, []string{"governance@example.com"}, dialer.sent[0].GetHeader("From"))
	})

	t.Run("skips recipients without an address", func(t *testing.T) {
		dialer := &fakeDialer{}
		msg := sampleMessage()
		msg.Recipient.Email = ""

		require.NoError(t, NewEmailChannel(dialer, "x@example.com").Deliver(context.Background(), msg))
		assert.Empty(t, dialer.sent)
	})

	t.Run("wraps dial failures", func(t *testing.T) {
		dialer := &fakeDialer{err: errors.New("connection refused")}
		err := NewEmailChannel(dialer, "x@example.com").Deliver(context.Background(), sampleMessage())
		assert.ErrorContains(t, err, "owner@example.com")
	})
}

func TestKafkaChannel_KeysByIdentifier(t *testing.T) {
	w := &fakeWriter{}
	msg := sampleMessage()

	require.NoError(t, NewKafkaChannel(w).Deliver(context.Background(), msg))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "COMP-7", string(w.msgs[0].Key))
	assert.Equal(t, msg.SentAt, w.msgs[0].Time)

	var decoded Message
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, EventDecisionRecorded, decoded.Event)
}

func TestHubChannel_PublishesToRecipient(t *testing.T) {
	pub := &fakePublisher{}
	msg := sampleMessage()

	require.NoError(t, NewHubChannel(pub).Deliver(context.Background(), msg))
	assert.Equal(t, msg.Recipient.UserID, pub.userID)
	assert.Contains(t, string(pub.data), `"event":"compliance.decision_recorded"`)
}
