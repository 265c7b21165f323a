package queue

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// AMQPQueue publishes JSON messages to a topic exchange on a RabbitMQ broker.
type AMQPQueue struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	// QueueName is the durable queue Subscribe binds. Empty means a
	// broker-named exclusive queue that goes away with the connection.
	QueueName string

	// a channel must not be used for concurrent publishes
	mu sync.Mutex
}

// DialAMQP connects and declares the durable topic exchange.
func DialAMQP(url, exchange string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPQueue{conn: conn, ch: ch, exchange: exchange}, nil
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", topic, err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ch.Publish(
		q.exchange,
		topic,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// Subscribe binds a queue to the exchange with topic as the binding key and
// delivers each decoded Event to handler. A failed delivery is requeued once;
// a second failure drops it.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	durable := q.QueueName != ""
	queue, err := q.ch.QueueDeclare(
		q.QueueName,
		durable,  // durable
		!durable, // delete when unused
		!durable, // exclusive
		false,    // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := q.ch.QueueBind(queue.Name, topic, q.exchange, false, nil); err != nil {
		return fmt.Errorf("bind %s to %s: %w", queue.Name, topic, err)
	}
	msgs, err := q.ch.Consume(
		queue.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", queue.Name, err)
	}

	go func() {
		for d := range msgs {
			var ev Event
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				slog.Warn("invalid message", "routing_key", d.RoutingKey, "err", err)
				d.Ack(false)
				continue
			}
			if err := handler(ev); err != nil {
				slog.Warn("handler failed", "routing_key", d.RoutingKey, "redelivered", d.Redelivered, "err", err)
				d.Nack(false, !d.Redelivered)
				continue
			}
			d.Ack(false)
		}
	}()
	return nil
}

// NotifyClose reports when the broker connection drops.
func (q *AMQPQueue) NotifyClose() <-chan *amqp.Error {
	return q.conn.NotifyClose(make(chan *amqp.Error, 1))
}

func (q *AMQPQueue) Close() error {
	q.ch.Close()
	return q.conn.Close()
}
