package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/estetica/salon-booking/internal/core/domain"
)

type fakeChannel struct {
	key  string
	msgs []amqp.Publishing
	err  error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.key = key
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func TestRabbitPublisher_PublishStatusChange(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{ch: ch, queue: "appointment_status"}

	change := &domain.StatusChange{
		ID:            "e1",
		AppointmentID: "a1",
		OwnerID:       "alice",
		From:          domain.StatusPending,
		To:            domain.StatusConfirmed,
		ActorID:       "admin",
		ActorRole:     domain.RoleAdmin,
		At:            time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	if err := p.PublishStatusChange(context.Background(), change); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if ch.key != "appointment_status" || len(ch.msgs) != 1 {
		t.Fatalf("unexpected publish: key=%q msgs=%d", ch.key, len(ch.msgs))
	}
	msg := ch.msgs[0]
	if msg.DeliveryMode != amqp.Persistent || msg.ContentType != "application/json" || msg.MessageId != "e1" {
		t.Fatalf("unexpected message properties: %+v", msg)
	}

	var body statusChangeMessage
	if err := json.Unmarshal(msg.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Event != eventStatusChanged || body.To != "confirmed" || body.AppointmentID != "a1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestRabbitPublisher_PublishError(t *testing.T) {
	brokerErr := errors.New("channel closed")
	p := &RabbitPublisher{ch: &fakeChannel{err: brokerErr}, queue: "q"}

	if err := p.PublishStatusChange(context.Background(), &domain.StatusChange{ID: "e1"}); !errors.Is(err, brokerErr) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}
