package natsstan

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ecomkit/order-service/internal/order/domain"
)

// Publisher sends lifecycle events to the durable order_events subject.
// Delivery is at-least-once on the broker side; from the caller's side a
// publish either lands or returns an error the workflow logs and discards.
// There are no retries here — retry belongs to the reconnect loop and the
// broker, not the orchestrator.
type Publisher struct {
	conn *Conn
}

var _ domain.EventPublisher = (*Publisher)(nil)

func NewPublisher(conn *Conn) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) Publish(_ context.Context, event any) error {
	sc, ok := p.conn.Current()
	if !ok {
		// Channel down: skip rather than block the order operation.
		return fmt.Errorf("event channel %s: publish skipped", p.conn.State())
	}

	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := sc.Publish(p.conn.cfg.Subject, b); err != nil {
		return fmt.Errorf("publish to %s: %w", p.conn.cfg.Subject, err)
	}
	return nil
}
