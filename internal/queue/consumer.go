package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer appends every booking event to <LogDir>/booking.log, one line
// per event.
type Consumer struct {
	URL    string
	LogDir string
	Log    *zap.Logger
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff (capped at 30s) when the
// connection drops.  Messages that cannot be handled are rejected without
// requeue so a poison message cannot spin the loop.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn("booking consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn("booking consumer: loop ended, reconnecting", zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn("booking consumer: set QoS failed", zap.Error(err))
	}
	if err := declareTopology(ch); err != nil {
		return err
	}
	msgs, err := ch.ConsumeWithContext(ctx, bookingQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.Handle(d.Body); err != nil {
			c.Log.Error("booking consumer: handle message failed", zap.Error(err))
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// Handle decodes one event body and appends its log line.
func (c *Consumer) Handle(body []byte) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(c.LogDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", c.LogDir, err)
	}
	f, err := os.OpenFile(filepath.Join(c.LogDir, "booking.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatLine renders ev as a single human-friendly log line.
func FormatLine(ev BookingEvent) string {
	pro := "-"
	if ev.ProfessionalID != nil {
		pro = fmt.Sprintf("%d", *ev.ProfessionalID)
	}
	return fmt.Sprintf("[%s] %s | booking_id=%d | customer_id=%d | customer=%q | professional_id=%s | service=%q | status=%s | when=%s %s | price=%.2f\n",
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.BookingID, ev.CustomerID, ev.CustomerName,
		pro, ev.ServiceType, ev.Status, ev.Date, ev.Time, ev.Price)
}
