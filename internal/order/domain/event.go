package domain

import "time"

// Lifecycle event names as they appear on the wire.
const (
	EventOrderCreated         = "order_created"
	EventOrderStatusUpdated   = "order_status_updated"
	EventPaymentStatusUpdated = "payment_status_updated"
)

// OrderCreatedEvent is published after an order is durably saved.
type OrderCreatedEvent struct {
	Type        string    `json:"type"`
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      string    `json:"userId"`
	Total       float64   `json:"total"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		Type:        EventOrderCreated,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Total:       o.Total,
		Timestamp:   time.Now().UTC(),
	}
}

type OrderStatusUpdatedEvent struct {
	Type        string    `json:"type"`
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	OldStatus   Status    `json:"oldStatus"`
	NewStatus   Status    `json:"newStatus"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewOrderStatusUpdatedEvent(o *Order, oldStatus Status) OrderStatusUpdatedEvent {
	return OrderStatusUpdatedEvent{
		Type:        EventOrderStatusUpdated,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		OldStatus:   oldStatus,
		NewStatus:   o.Status,
		Timestamp:   time.Now().UTC(),
	}
}

type PaymentStatusUpdatedEvent struct {
	Type          string        `json:"type"`
	OrderID       string        `json:"orderId"`
	OrderNumber   string        `json:"orderNumber"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Timestamp     time.Time     `json:"timestamp"`
}

func NewPaymentStatusUpdatedEvent(o *Order) PaymentStatusUpdatedEvent {
	return PaymentStatusUpdatedEvent{
		Type:          EventPaymentStatusUpdated,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		PaymentStatus: o.PaymentStatus,
		Timestamp:     time.Now().UTC(),
	}
}
