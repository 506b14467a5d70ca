package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const eventQueueName = "barber.queue.events"

// StartEventConsumer connects to the broker at url, declares the durable
// event queue and starts consuming. Each message is appended to
// logs/queue.log in a single-line, human-friendly format so staff can
// reconstruct a day's activity. The function runs a reconnect loop with
// exponential backoff and keeps running across broker restarts; processing
// errors are logged and the offending message is rejected without requeue to
// avoid tight loops.
func StartEventConsumer(url string) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("queue-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("queue-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("queue-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(eventQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(eventQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			log.Printf("queue-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	var env struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	line, err := formatLine(env.Type, env.Payload)
	if err != nil {
		return err
	}

	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "queue.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatLine(eventType string, payload json.RawMessage) (string, error) {
	switch eventType {
	case TypeTicketCreated:
		var ev TicketCreatedEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", eventType, err)
		}
		return fmt.Sprintf("[%s] Ticket created | ticket=#%d | day=%s | total=%d\n",
			ev.CreatedAt, ev.TicketNumber, ev.Day, ev.TotalPrice), nil
	case TypeTicketAssigned:
		var ev TicketAssignedEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", eventType, err)
		}
		return fmt.Sprintf("[%s] Ticket assigned | ticket=#%d | barber=%q\n",
			ev.AssignedAt, ev.TicketNumber, ev.BarberName), nil
	case TypePaymentSettled:
		var ev PaymentSettledEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return "", fmt.Errorf("unmarshal %s: %w", eventType, err)
		}
		return fmt.Sprintf("[%s] Payment settled | ticket=#%d | paid=%d\n",
			ev.SettledAt, ev.TicketNumber, ev.AmountPaid), nil
	default:
		return fmt.Sprintf("[%s] Unknown event | type=%s | payload=%s\n",
			time.Now().UTC().Format(time.RFC3339), eventType, string(payload)), nil
	}
}
