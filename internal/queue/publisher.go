package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/iliyamo/alumni-connect/internal/logger"
	"github.com/iliyamo/alumni-connect/internal/metrics"
)

// ErrPublisherBusy is returned when the outbound buffer is full.
var ErrPublisherBusy = errors.New("notification publisher buffer full")

// ErrPublisherClosed is returned after Close.
var ErrPublisherClosed = errors.New("notification publisher closed")

const (
	defaultBuffer         = 256
	defaultDialTimeout    = 5 * time.Second
	defaultPublishTimeout = 5 * time.Second
	defaultDrainTimeout   = 5 * time.Second
)

// Publisher sends notification events to a durable queue.  PublishNotification
// only enqueues; a single background goroutine owns the broker connection,
// so a slow or silent broker never reaches the request path.
type Publisher struct {
	url   string
	queue string

	dialTimeout    time.Duration
	publishTimeout time.Duration
	drainTimeout   time.Duration

	events chan NotificationCreatedEvent
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
	log    *zap.Logger

	// owned by the run goroutine
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher starts the background sender.  Call Close to stop it.
func NewPublisher(url, queue string) *Publisher {
	return newPublisher(url, queue, defaultBuffer, defaultDialTimeout)
}

func newPublisher(url, queue string, buffer int, dialTimeout time.Duration) *Publisher {
	p := &Publisher{
		url:            url,
		queue:          queue,
		dialTimeout:    dialTimeout,
		publishTimeout: defaultPublishTimeout,
		drainTimeout:   defaultDrainTimeout,
		events:         make(chan NotificationCreatedEvent, buffer),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
		log:            logger.WithModule("queue"),
	}
	go p.run()
	return p
}

// dial opens a connection whose TCP connect and AMQP handshake are both
// bounded by timeout.
func dial(url string, timeout time.Duration) (*amqp.Connection, error) {
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// PublishNotification hands ev to the background sender.  It never waits on
// the broker: a full buffer yields ErrPublisherBusy.
func (p *Publisher) PublishNotification(ctx context.Context, ev NotificationCreatedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-p.stop:
		return ErrPublisherClosed
	default:
	}
	select {
	case p.events <- ev:
		return nil
	default:
		return ErrPublisherBusy
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for {
		select {
		case ev := <-p.events:
			p.send(ev)
		case <-p.stop:
			p.drain()
			return
		}
	}
}

// drain flushes what is still buffered, giving up once drainTimeout passes.
func (p *Publisher) drain() {
	deadline := time.Now().Add(p.drainTimeout)
	dropped := 0
	for {
		select {
		case ev := <-p.events:
			if time.Now().After(deadline) {
				dropped++
				continue
			}
			p.send(ev)
		default:
			if dropped > 0 {
				p.log.Warn("dropped notification events on shutdown", zap.Int("count", dropped))
				metrics.NotificationPublishFailures.Add(float64(dropped))
			}
			return
		}
	}
}

func (p *Publisher) send(ev NotificationCreatedEvent) {
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("encode notification event", zap.Error(err))
		return
	}
	ch, err := p.channel()
	if err != nil {
		p.log.Warn("rabbitmq channel unavailable",
			zap.Uint64("notification_id", ev.NotificationID), zap.Error(err))
		metrics.NotificationPublishFailures.Inc()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.publishTimeout)
	defer cancel()
	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.log.Warn("rabbitmq publish failed",
			zap.Uint64("notification_id", ev.NotificationID), zap.Error(err))
		metrics.NotificationPublishFailures.Inc()
		_ = ch.Close()
		p.ch = nil
	}
}

// channel returns an open channel, dialing the broker when needed.
func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := dial(p.url, p.dialTimeout)
		if err != nil {
			return nil, err
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}
	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, err
	}
	p.ch = ch
	return ch, nil
}

// Close stops accepting events, flushes the buffer and releases the
// connection.
func (p *Publisher) Close() error {
	p.once.Do(func() { close(p.stop) })
	<-p.done

	var err error
	if p.ch != nil {
		if cerr := p.ch.Close(); cerr != nil && !errors.Is(cerr, amqp.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
		p.ch = nil
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); cerr != nil && !errors.Is(cerr, amqp.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
		p.conn = nil
	}
	return err
}
