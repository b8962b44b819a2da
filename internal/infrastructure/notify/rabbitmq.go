// Package notify forwards recorded status changes to external consumers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

const eventStatusChanged = "appointment.status_changed"

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes status changes as persistent JSON messages to a
// durable queue on the default exchange.
type RabbitPublisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    publishChannel
	queue string
}

var _ ports.EventPublisher = (*RabbitPublisher)(nil)

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp queue declare: %w", err)
	}
	return &RabbitPublisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

type statusChangeMessage struct {
	Event         string    `json:"event"`
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	OwnerID       string    `json:"owner_id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	ActorID       string    `json:"actor_id"`
	ActorRole     string    `json:"actor_role"`
	At            time.Time `json:"at"`
}

func (p *RabbitPublisher) PublishStatusChange(ctx context.Context, c *domain.StatusChange) error {
	body, err := json.Marshal(statusChangeMessage{
		Event:         eventStatusChanged,
		ID:            c.ID,
		AppointmentID: c.AppointmentID,
		OwnerID:       c.OwnerID,
		From:          string(c.From),
		To:            string(c.To),
		ActorID:       c.ActorID,
		ActorRole:     string(c.ActorRole),
		At:            c.At.UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode status change: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    c.ID,
			Type:         eventStatusChanged,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish status change: %w", err)
	}
	return nil
}
