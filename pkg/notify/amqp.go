// Package notify contains the transports that deliver tracking events to
// the external notification service: a RabbitMQ fanout publisher and an
// AWS SES email sender. Both are best-effort; the tracking event log is
// the source of truth.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"fleet-tracking/internal/models"

	"github.com/rabbitmq/amqp091-go"
)

// AMQPNotifier publishes tracking events on a fanout exchange so every
// interested subscriber (SMS gateway, push service, dashboards) receives
// them. The connection re-establishes itself in the background.
type AMQPNotifier struct {
	logger    *slog.Logger
	exchange  string
	conn      *amqp091.Connection
	connClose chan *amqp091.Error
	channel   *amqp091.Channel
	isClosed  atomic.Bool
}

// NewAMQPNotifier dials the broker, declares the fanout exchange and
// starts the reconnect watcher.
func NewAMQPNotifier(url, exchange string, logger *slog.Logger) (*AMQPNotifier, error) {
	n := &AMQPNotifier{
		logger:   logger,
		exchange: exchange,
	}
	if err := n.createChannel(url); err != nil {
		return nil, err
	}
	go n.reconnect(url)
	return n, nil
}

func (n *AMQPNotifier) createChannel(url string) error {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return fmt.Errorf("notify.AMQPNotifier dial: %w", err)
	}
	n.conn = conn
	n.connClose = make(chan *amqp091.Error)
	n.conn.NotifyClose(n.connClose)

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("notify.AMQPNotifier channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		n.exchange, // name
		"fanout",   // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	); err != nil {
		conn.Close()
		return fmt.Errorf("notify.AMQPNotifier exchange declare: %w", err)
	}
	n.channel = ch
	return nil
}

func (n *AMQPNotifier) reconnect(url string) {
	for {
		<-n.connClose
		if n.isClosed.Load() {
			return
		}
		n.logger.Warn("rabbitmq connection lost")
		for {
			if n.isClosed.Load() {
				return
			}
			n.logger.Info("reconnecting to rabbitmq")
			if err := n.createChannel(url); err != nil {
				time.Sleep(3 * time.Second)
				continue
			}
			n.logger.Info("reconnected to rabbitmq")
			break
		}
	}
}

// Notify publishes the event as JSON on the fanout exchange.
func (n *AMQPNotifier) Notify(ctx context.Context, event *models.TrackingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify.AMQPNotifier marshal: %w", err)
	}
	err = n.channel.PublishWithContext(ctx,
		n.exchange, // exchange
		"",         // routing key (ignored by fanout)
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   event.Timestamp,
			Body:        body,
		})
	if err != nil {
		return fmt.Errorf("notify.AMQPNotifier publish: %w", err)
	}
	return nil
}

// Close shuts the connection down and stops the reconnect watcher.
func (n *AMQPNotifier) Close() error {
	n.isClosed.Store(true)
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
