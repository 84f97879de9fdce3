package domain

import "context"

// OrderFilter narrows listing queries. Zero values mean "any".
type OrderFilter struct {
	UserID string
	Status Status
}

// OrderRepository is the persistence port for the Order aggregate.
// Implemented by the infrastructure layer.
type OrderRepository interface {
	// Save inserts the order or replaces the stored aggregate by ID.
	Save(ctx context.Context, o *Order) error
	// FindByID returns ErrOrderNotFound when the ID does not resolve.
	FindByID(ctx context.Context, id string) (*Order, error)
	// List returns a page of orders, newest first.
	List(ctx context.Context, f OrderFilter, limit, offset int) ([]Order, error)
	// Count returns the total number of orders matching the filter.
	Count(ctx context.Context, f OrderFilter) (int, error)
	// FindByUser returns all of a user's orders, newest first.
	FindByUser(ctx context.Context, userID string) ([]Order, error)
}

// Product is what the inventory collaborator reports for a product.
type Product struct {
	ID    string
	Name  string
	Price float64
	Stock int
}

// StockOp is the direction of a stock adjustment.
type StockOp string

const (
	StockSubtract StockOp = "subtract"
	StockAdd      StockOp = "add"
)

// InventoryService is the port to the inventory collaborator. Each call is
// an independent remote operation; no atomicity is assumed across calls.
type InventoryService interface {
	// GetProduct returns ErrProductNotFound on a miss and
	// ErrInventoryUnavailable when the service cannot be reached.
	GetProduct(ctx context.Context, productID string) (*Product, error)
	// AdjustStock applies a delta. Returns ErrStockRejected when the service
	// refuses (insufficient stock on subtract), ErrInventoryUnavailable on
	// transport failure.
	AdjustStock(ctx context.Context, productID string, quantity int, op StockOp) error
}

// EventPublisher delivers lifecycle events to the durable order_events
// channel. Delivery is at-least-once and fire-and-forget from the workflow's
// perspective: the returned error is logged and discarded by the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}
