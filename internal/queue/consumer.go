package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/gvriil/habit-tracker/internal/reminder"
)

// StartReminderConsumer connects to RabbitMQ, declares the reminder
// queues (durable), and delivers each queued reminder through the
// dispatcher. The function runs a reconnect loop with exponential
// backoff and keeps running; per-message processing errors are logged
// and the message is rejected without requeue so a poison message
// cannot wedge the worker. Dispatch outcomes other than SENT (habit
// deleted, no destination, transport failure) are normal results: the
// message is acked and the outcome is logged, with no retry at this
// layer.
func StartReminderConsumer(d *reminder.Dispatcher) error {
	url := BrokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("reminder-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, d); err != nil {
			log.Printf("reminder-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, d *reminder.Dispatcher) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("reminder-consumer: set QoS failed: %v", err)
	}

	if err := declareReminderQueues(ch); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(reminderQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for del := range msgs {
		if err := handleMessage(del.Body, d); err != nil {
			log.Printf("reminder-consumer: handle message failed: %v", err)
			_ = del.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = del.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, d *reminder.Dispatcher) error {
	var ev ReminderDueEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outcome := d.Dispatch(ctx, ev.HabitID)
	log.Printf("reminder-consumer: message %s habit %d: %s", ev.MessageID, ev.HabitID, outcome)
	return nil
}
