// Package natsstan adapts the durable order_events channel to NATS
// Streaming. The connection is process-wide, owned by an explicit Conn
// manager rather than package globals, and is re-established on a fixed
// delay forever — independently of any in-flight order operation.
package natsstan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	stan "github.com/nats-io/stan.go"
)

// State is the connection lifecycle of the event channel.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

type Config struct {
	ClusterID  string
	ClientID   string
	URL        string
	Subject    string
	RetryDelay time.Duration
}

// Conn owns the shared streaming connection and its reconnect loop.
// Publishers hold a *Conn and ask for the live connection per publish;
// while the channel is down they simply get none.
type Conn struct {
	cfg  Config
	dial func(lost chan<- struct{}) (stan.Conn, error)

	mu    sync.RWMutex
	state State
	sc    stan.Conn
}

func NewConn(cfg Config) *Conn {
	if cfg.ClientID == "" {
		cfg.ClientID = fmt.Sprintf("order-svc-%d", time.Now().UnixNano())
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	c := &Conn{cfg: cfg, state: StateDisconnected}
	c.dial = func(lost chan<- struct{}) (stan.Conn, error) {
		return stan.Connect(cfg.ClusterID, cfg.ClientID,
			stan.NatsURL(cfg.URL),
			stan.SetConnectionLostHandler(func(_ stan.Conn, err error) {
				slog.Error("event channel connection lost", "error", err)
				select {
				case lost <- struct{}{}:
				default:
				}
			}),
		)
	}
	return c
}

// Run drives the reconnect loop until ctx is cancelled: connecting →
// connected, back to disconnected on loss, retrying on the fixed delay.
// It never returns an error; a broker outage only delays events.
func (c *Conn) Run(ctx context.Context) {
	lost := make(chan struct{}, 1)
	for {
		c.set(StateConnecting, nil)
		sc, err := c.dial(lost)
		if err != nil {
			c.set(StateDisconnected, nil)
			slog.Error("event channel connect failed", "url", c.cfg.URL, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.cfg.RetryDelay):
				continue
			}
		}

		c.set(StateConnected, sc)
		slog.Info("event channel connected", "cluster", c.cfg.ClusterID, "subject", c.cfg.Subject)

		select {
		case <-ctx.Done():
			c.set(StateDisconnected, nil)
			_ = sc.Close()
			return
		case <-lost:
			c.set(StateDisconnected, nil)
			_ = sc.Close()
		}
	}
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Current returns the live connection, or false while the channel is down.
func (c *Conn) Current() (stan.Conn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sc, c.state == StateConnected && c.sc != nil
}

func (c *Conn) set(s State, sc stan.Conn) {
	c.mu.Lock()
	c.state = s
	c.sc = sc
	c.mu.Unlock()
}
