package queue

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// silentBroker accepts TCP connections and never answers the AMQP handshake.
func silentBroker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestDialGivesUpOnSilentBroker(t *testing.T) {
	url := silentBroker(t)
	start := time.Now()
	_, err := dial(url, 200*time.Millisecond)
	require.Error(t, err)
	require.Less(t, time.Since(start), 3*time.Second)
}

func TestPublishDoesNotWaitForBroker(t *testing.T) {
	p := newPublisher(silentBroker(t), "q", 8, 200*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.PublishNotification(ctx, NotificationCreatedEvent{NotificationID: uint64(i + 1)}))
	}
	require.Less(t, time.Since(start), 100*time.Millisecond)

	start = time.Now()
	require.NoError(t, p.Close())
	require.Less(t, time.Since(start), 3*time.Second)

	require.ErrorIs(t, p.PublishNotification(context.Background(), NotificationCreatedEvent{}), ErrPublisherClosed)
}

func TestPublishReportsFullBuffer(t *testing.T) {
	p := newPublisher(silentBroker(t), "q", 1, 500*time.Millisecond)
	defer func() { _ = p.Close() }()

	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = p.PublishNotification(context.Background(), NotificationCreatedEvent{NotificationID: uint64(i + 1)})
	}
	require.ErrorIs(t, err, ErrPublisherBusy)
}

func TestPublishHonoursCancelledContext(t *testing.T) {
	p := newPublisher("amqp://unused", "q", 1, 100*time.Millisecond)
	defer func() { _ = p.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, p.PublishNotification(ctx, NotificationCreatedEvent{}), context.Canceled)
}
