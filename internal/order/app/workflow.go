// Package app implements the order-fulfillment workflow: a saga-style
// cross-resource write with no global transaction. The order record is
// authoritative once saved; stock adjustments and event publishes that run
// after the save are best-effort and never roll the order back.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ecomkit/order-service/internal/order/domain"
	"github.com/ecomkit/order-service/internal/order/steplog"
)

// CreateOrderItemInput is one requested line item; pricing comes from the
// inventory service, not the caller.
type CreateOrderItemInput struct {
	ProductID string
	Quantity  int
}

// CreateOrderInput is the validated boundary of CreateOrder.
type CreateOrderInput struct {
	UserID          string
	UserEmail       string
	Items           []CreateOrderItemInput
	ShippingAddress domain.Address
	PaymentMethod   domain.PaymentMethod
	Notes           string
}

// Pagination describes a page of a listing result.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Workflow orchestrates order creation and lifecycle updates across the
// order store, the inventory collaborator and the event channel.
type Workflow struct {
	repo      domain.OrderRepository
	inventory domain.InventoryService
	publisher domain.EventPublisher
	audit     steplog.Repository // nil disables step auditing
}

func NewWorkflow(repo domain.OrderRepository, inventory domain.InventoryService, publisher domain.EventPublisher, audit steplog.Repository) *Workflow {
	return &Workflow{
		repo:      repo,
		inventory: inventory,
		publisher: publisher,
		audit:     audit,
	}
}

// CreateOrder validates the request, prices every item against the inventory
// service, persists the order, then — best-effort — decrements stock and
// publishes order_created.
//
// No side effect happens before the save. There is no lock between the
// availability check and the decrement: concurrent orders for the same
// product can both pass the check and jointly oversell. That race is an
// accepted property of the design; availability wins over strict inventory
// accuracy.
func (w *Workflow) CreateOrder(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	// Validation pass: sequential, short-circuiting, no stock mutated.
	items := make([]domain.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		product, err := w.inventory.GetProduct(ctx, it.ProductID)
		if err != nil {
			// A miss and an unreachable inventory service are
			// indistinguishable to the caller; both abort the whole order.
			return nil, &domain.ItemUnavailableError{ProductID: it.ProductID}
		}
		if product.Stock < it.Quantity {
			return nil, &domain.InsufficientStockError{ProductName: product.Name, Available: product.Stock}
		}
		items = append(items, domain.OrderItem{
			ProductID:   it.ProductID,
			ProductName: product.Name,
			Quantity:    it.Quantity,
			UnitPrice:   product.Price,
			Subtotal:    product.Price * float64(it.Quantity),
		})
	}

	order := domain.NewOrder(
		uuid.NewString(),
		domain.NewOrderNumber(),
		in.UserID,
		in.UserEmail,
		items,
		in.ShippingAddress,
		in.PaymentMethod,
		in.Notes,
	)

	if err := w.repo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: save order: %w", domain.ErrDownstreamUnavailable, err)
	}

	// The order is committed. Everything below is best-effort.
	for _, it := range order.Items {
		w.adjustStock(ctx, order.ID, steplog.StepStockSubtract, it, domain.StockSubtract)
	}

	w.publish(ctx, order.ID, domain.NewOrderCreatedEvent(order))

	slog.InfoContext(ctx, "order created", "order_number", order.OrderNumber, "user_id", order.UserID, "total", order.Total)
	return order, nil
}

// UpdateStatus applies a requested status transition, compensating stock on
// cancellation, and publishes order_status_updated.
func (w *Workflow) UpdateStatus(ctx context.Context, orderID string, newStatus domain.Status, note string) (*domain.Order, error) {
	if !domain.ValidStatus(newStatus) {
		return nil, domain.Validationf("invalid status %q", newStatus)
	}

	order, err := w.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if d := domain.CheckTransition(order.Status, newStatus); !d.Allowed {
		return nil, &domain.IllegalTransitionError{From: order.Status, To: newStatus, Reason: d.Reason}
	}

	oldStatus := order.Status
	order.SetStatus(newStatus, note)

	// Compensation: restore stock for every item, sequentially, best-effort.
	// A failed restoration silently under-restores; the order still cancels.
	if newStatus == domain.StatusCancelled {
		for _, it := range order.Items {
			w.adjustStock(ctx, order.ID, steplog.StepStockRestore, it, domain.StockAdd)
		}
	}

	if err := w.repo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: save order: %w", domain.ErrDownstreamUnavailable, err)
	}

	w.publish(ctx, order.ID, domain.NewOrderStatusUpdatedEvent(order, oldStatus))

	slog.InfoContext(ctx, "order status updated", "order_number", order.OrderNumber, "old_status", oldStatus, "new_status", newStatus)
	return order, nil
}

// UpdatePayment sets the payment status and publishes payment_status_updated.
// Payment success on a still-pending order auto-advances it to confirmed.
func (w *Workflow) UpdatePayment(ctx context.Context, orderID string, newStatus domain.PaymentStatus) (*domain.Order, error) {
	if !domain.ValidPaymentStatus(newStatus) {
		return nil, domain.Validationf("invalid payment status %q", newStatus)
	}

	order, err := w.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.SetPaymentStatus(newStatus)

	if err := w.repo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: save order: %w", domain.ErrDownstreamUnavailable, err)
	}

	w.publish(ctx, order.ID, domain.NewPaymentStatusUpdatedEvent(order))

	slog.InfoContext(ctx, "payment status updated", "order_number", order.OrderNumber, "payment_status", newStatus)
	return order, nil
}

// GetOrder loads one order by ID.
func (w *Workflow) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return w.repo.FindByID(ctx, orderID)
}

// ListOrders returns one page of orders, newest first, plus paging metadata.
func (w *Workflow) ListOrders(ctx context.Context, f domain.OrderFilter, page, limit int) ([]domain.Order, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	orders, err := w.repo.List(ctx, f, limit, (page-1)*limit)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list orders: %w", err)
	}
	total, err := w.repo.Count(ctx, f)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("count orders: %w", err)
	}

	return orders, Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: (total + limit - 1) / limit,
	}, nil
}

// ListUserOrders returns all of a user's orders, newest first.
func (w *Workflow) ListUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return w.repo.FindByUser(ctx, userID)
}

// adjustStock performs one best-effort stock call and records the outcome.
// Failures are logged and audited, never propagated: the order is already
// committed and a drifted stock count is preferable to losing it.
func (w *Workflow) adjustStock(ctx context.Context, orderID, step string, it domain.OrderItem, op domain.StockOp) {
	detail := map[string]any{"product_id": it.ProductID, "quantity": it.Quantity}

	err := w.inventory.AdjustStock(ctx, it.ProductID, it.Quantity, op)
	outcome := steplog.OutcomeOK
	if err != nil {
		outcome = steplog.OutcomeFailed
		detail["error"] = err.Error()
		slog.ErrorContext(ctx, "stock adjustment failed",
			"order_id", orderID, "product_id", it.ProductID, "op", string(op), "error", err)
	}

	w.record(ctx, steplog.NewEntry(ctx, orderID, step, outcome, detail))
}

// publish performs one best-effort event publish and records the outcome.
func (w *Workflow) publish(ctx context.Context, orderID string, event any) {
	detail := map[string]any{"event": eventType(event)}

	err := w.publisher.Publish(ctx, event)
	outcome := steplog.OutcomeOK
	if err != nil {
		outcome = steplog.OutcomeFailed
		detail["error"] = err.Error()
		slog.ErrorContext(ctx, "event publish failed", "order_id", orderID, "error", err)
	}

	w.record(ctx, steplog.NewEntry(ctx, orderID, steplog.StepPublish, outcome, detail))
}

// record appends an audit entry; auditing is itself best-effort.
func (w *Workflow) record(ctx context.Context, e *steplog.Entry) {
	if w.audit == nil {
		return
	}
	if err := w.audit.Save(ctx, e); err != nil {
		slog.WarnContext(ctx, "step audit write failed", "order_id", e.OrderID, "step", e.Step, "error", err)
	}
}

func eventType(event any) string {
	switch e := event.(type) {
	case domain.OrderCreatedEvent:
		return e.Type
	case domain.OrderStatusUpdatedEvent:
		return e.Type
	case domain.PaymentStatusUpdatedEvent:
		return e.Type
	default:
		return fmt.Sprintf("%T", event)
	}
}

func validateCreate(in CreateOrderInput) error {
	if in.UserID == "" {
		return domain.Validationf("userId is required")
	}
	if !strings.Contains(in.UserEmail, "@") {
		return domain.Validationf("userEmail must be a valid email address")
	}
	if len(in.Items) == 0 {
		return domain.Validationf("items must contain at least one entry")
	}
	for i, it := range in.Items {
		if it.ProductID == "" {
			return domain.Validationf("items[%d].productId is required", i)
		}
		if it.Quantity < 1 {
			return domain.Validationf("items[%d].quantity must be at least 1", i)
		}
	}
	addr := in.ShippingAddress
	if addr.Street == "" || addr.City == "" || addr.ZipCode == "" || addr.Country == "" {
		return domain.Validationf("shippingAddress requires street, city, zipCode and country")
	}
	if !domain.ValidPaymentMethod(in.PaymentMethod) {
		return domain.Validationf("invalid payment method %q", in.PaymentMethod)
	}
	return nil
}
