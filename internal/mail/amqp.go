package mail

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPMailer hands messages to a mail relay consuming a durable queue.
// Publishing runs in confirm mode so a broker nack or a missing confirm
// is reported as a delivery failure.
type AMQPMailer struct {
	url   string
	queue string
	dial  func(url string) (*amqp.Connection, error)
}

func NewAMQPMailer(url, queue string) *AMQPMailer {
	return &AMQPMailer{url: url, queue: queue, dial: amqp.Dial}
}

func (m *AMQPMailer) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return deliveryError("amqp", err)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return deliveryError("amqp", err)
	}

	conn, err := m.dial(m.url)
	if err != nil {
		return deliveryError("amqp", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return deliveryError("amqp", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		m.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return deliveryError("amqp", err)
	}

	if err := ch.Confirm(false); err != nil {
		return deliveryError("amqp", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx,
		"",      // default exchange
		m.queue, // routing key = queue name
		true,    // mandatory
		false,   // immediate
		pub,
	)
	if err != nil {
		return deliveryError("amqp", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return deliveryError("amqp", err)
	}
	if !acked {
		return deliveryError("amqp", errors.New("broker rejected message"))
	}
	return nil
}
