package dispatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amqp "github.com/rabbitmq/amqp091-go"
)

// fakeAcknowledger records ack/nack decisions for a delivery
type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcknowledger) Ack(_ uint64, _ bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func TestConsumer_HandleDelivery(t *testing.T) {
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	jobID := "3f1c9a2e-8c14-4a7d-9b0f-52de3a6c1e77"

	validBody, err := json.Marshal(NotifyMessage{JobID: jobID})
	require.NoError(t, err)

	tests := []struct {
		name        string
		body        []byte
		senderFails bool
		wantAck     bool
		wantNack    bool
		wantSent    int
	}{
		{
			name:     "valid message is processed and acked",
			body:     validBody,
			wantAck:  true,
			wantSent: 1,
		},
		{
			name:     "malformed json is nacked without requeue",
			body:     []byte("{not json"),
			wantNack: true,
		},
		{
			name:     "invalid job id is nacked without requeue",
			body:     []byte(`{"job_id":"not-a-uuid"}`),
			wantNack: true,
		},
		{
			name:        "delivery failure is still acked",
			body:        validBody,
			senderFails: true,
			wantAck:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockJobStore(scheduledJob(jobID, now.Add(10*time.Minute)))
			sender := newMockSender()
			if tt.senderFails {
				sender.failFor[jobID] = true
			}

			notifier := NewNotifier(store, sender, testLogger(), time.Hour)
			notifier.now = func() time.Time { return now }

			consumer := NewConsumer(nil, notifier, testLogger(), 1)

			ack := &fakeAcknowledger{}
			consumer.handleDelivery(context.Background(), amqp.Delivery{
				Acknowledger: ack,
				Body:         tt.body,
			})

			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, tt.wantNack, ack.nacked)
			if tt.wantNack {
				assert.False(t, ack.requeue)
			}
			assert.Len(t, sender.sent, tt.wantSent)
		})
	}
}

func TestConsumer_HandleDelivery_UnknownJobIsAcked(t *testing.T) {
	notifier := NewNotifier(newMockJobStore(), newMockSender(), testLogger(), time.Hour)
	consumer := NewConsumer(nil, notifier, testLogger(), 1)

	body, err := json.Marshal(NotifyMessage{JobID: "3f1c9a2e-8c14-4a7d-9b0f-52de3a6c1e77"})
	require.NoError(t, err)

	ack := &fakeAcknowledger{}
	consumer.handleDelivery(context.Background(), amqp.Delivery{
		Acknowledger: ack,
		Body:         body,
	})

	assert.True(t, ack.acked)
}
