package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/alumni-connect/internal/logger"
)

// Mailer delivers one email.
type Mailer interface {
	Send(to, subject, body string) error
}

// Consumer reads notification events and emails the recipient.
type Consumer struct {
	url    string
	queue  string
	mailer Mailer
	log    *zap.Logger
}

func NewConsumer(url, queue string, mailer Mailer) *Consumer {
	return &Consumer{url: url, queue: queue, mailer: mailer, log: logger.WithModule("notification-consumer")}
}

// Run keeps a consumer attached to the queue until ctx is cancelled,
// redialing with exponential backoff (capped at 30s) when the broker goes
// away.  Processing errors reject the single message and never stop the loop.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := dial(c.url, defaultDialTimeout)
		if err != nil {
			c.log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
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
		c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(20, 0, false); err != nil {
		c.log.Warn("set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.HandleMessage(d.Body); err != nil {
				c.log.Error("handle message failed", zap.Error(err))
				_ = d.Nack(false, false) // do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one event and emails its recipient.  Events without
// a recipient address are acknowledged and skipped.
func (c *Consumer) HandleMessage(body []byte) error {
	var ev NotificationCreatedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.RecipientEmail == "" {
		c.log.Debug("event has no recipient email", zap.Uint64("notification_id", ev.NotificationID))
		return nil
	}
	subject, html := RenderEmail(ev)
	if err := c.mailer.Send(ev.RecipientEmail, subject, html); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	c.log.Info("notification emailed",
		zap.Uint64("notification_id", ev.NotificationID),
		zap.Uint64("recipient_id", ev.RecipientID),
		zap.String("type", ev.Type))
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
