package natsstan

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	nats "github.com/nats-io/nats.go"
	stan "github.com/nats-io/stan.go"
)

// fakeStanConn is a minimal in-memory stan.Conn.
type fakeStanConn struct {
	mu        sync.Mutex
	published []fakeMsg
	closed    bool
}

type fakeMsg struct {
	Subject string
	Data    []byte
}

func (f *fakeStanConn) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, fakeMsg{Subject: subject, Data: data})
	return nil
}

func (f *fakeStanConn) PublishAsync(string, []byte, stan.AckHandler) (string, error) {
	return "", nil
}

func (f *fakeStanConn) Subscribe(string, stan.MsgHandler, ...stan.SubscriptionOption) (stan.Subscription, error) {
	return nil, nil
}

func (f *fakeStanConn) QueueSubscribe(string, string, stan.MsgHandler, ...stan.SubscriptionOption) (stan.Subscription, error) {
	return nil, nil
}

func (f *fakeStanConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeStanConn) NatsConn() *nats.Conn { return nil }

func waitForState(t *testing.T, c *Conn, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("state = %v, want %v", c.State(), want)
}

func TestPublishSkippedWhileDisconnected(t *testing.T) {
	conn := NewConn(Config{Subject: "order_events"})
	pub := NewPublisher(conn)

	if s := conn.State(); s != StateDisconnected {
		t.Fatalf("initial state = %v", s)
	}
	if err := pub.Publish(context.Background(), map[string]string{"type": "order_created"}); err == nil {
		t.Error("Publish() did not report skip while disconnected")
	}
}

func TestRunRetriesUntilConnected(t *testing.T) {
	fake := &fakeStanConn{}
	var attempts atomic.Int32

	conn := NewConn(Config{Subject: "order_events", RetryDelay: time.Millisecond})
	conn.dial = func(chan<- struct{}) (stan.Conn, error) {
		if attempts.Add(1) < 3 {
			return nil, errors.New("broker down")
		}
		return fake, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go conn.Run(ctx)

	waitForState(t, conn, StateConnected)
	if got := attempts.Load(); got != 3 {
		t.Errorf("dial attempts = %d, want 3", got)
	}

	pub := NewPublisher(conn)
	if err := pub.Publish(context.Background(), map[string]string{"type": "order_created"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.published) != 1 || fake.published[0].Subject != "order_events" {
		t.Errorf("published = %+v", fake.published)
	}
}

func TestRunReconnectsAfterLoss(t *testing.T) {
	lostChans := make(chan chan<- struct{}, 2)
	var dials atomic.Int32

	conn := NewConn(Config{Subject: "order_events", RetryDelay: time.Millisecond})
	conn.dial = func(lost chan<- struct{}) (stan.Conn, error) {
		dials.Add(1)
		select {
		case lostChans <- lost:
		default:
		}
		return &fakeStanConn{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go conn.Run(ctx)

	waitForState(t, conn, StateConnected)

	(<-lostChans) <- struct{}{}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if dials.Load() >= 2 && conn.State() == StateConnected {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if dials.Load() < 2 {
		t.Errorf("dials = %d, want a reconnect after loss", dials.Load())
	}
	if conn.State() != StateConnected {
		t.Errorf("state = %v after reconnect", conn.State())
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	fake := &fakeStanConn{}
	conn := NewConn(Config{Subject: "order_events", RetryDelay: time.Millisecond})
	conn.dial = func(chan<- struct{}) (stan.Conn, error) { return fake, nil }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		conn.Run(ctx)
		close(done)
	}()

	waitForState(t, conn, StateConnected)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if !fake.closed {
		t.Error("connection not closed on shutdown")
	}
	if conn.State() != StateDisconnected {
		t.Errorf("state = %v after shutdown", conn.State())
	}
}
