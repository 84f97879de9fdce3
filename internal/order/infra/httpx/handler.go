package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ecomkit/order-service/internal/order/app"
	"github.com/ecomkit/order-service/internal/order/domain"
	"github.com/ecomkit/order-service/internal/pkg/cache"
)

const orderCacheTTL = 5 * time.Minute

// Handler exposes the order workflow over HTTP.
type Handler struct {
	workflow *app.Workflow
	cache    cache.Cache // nil-safe: caching skipped if nil
	health   HealthFuncs
}

// HealthFuncs are the dependency probes for /health. Either may be nil.
type HealthFuncs struct {
	DBConnected     func() bool
	BrokerConnected func() bool
}

func NewHandler(workflow *app.Workflow, c cache.Cache, health HealthFuncs) *Handler {
	return &Handler{workflow: workflow, cache: c, health: health}
}

// CreateOrder handles POST /orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	items := make([]app.CreateOrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, app.CreateOrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.workflow.CreateOrder(r.Context(), app.CreateOrderInput{
		UserID:          req.UserID,
		UserEmail:       req.UserEmail,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		Notes:           req.Notes,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.primeCache(r, order)
	writeJSON(w, http.StatusCreated, order)
}

// ListOrders handles GET /orders?userId&status&page&limit.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := intParam(q.Get("page"), 1)
	limit := intParam(q.Get("limit"), 20)

	filter := domain.OrderFilter{
		UserID: q.Get("userId"),
		Status: domain.Status(q.Get("status")),
	}

	orders, pagination, err := h.workflow.ListOrders(r.Context(), filter, page, limit)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	writeJSON(w, http.StatusOK, ListOrdersResponse{Orders: orders, Pagination: pagination})
}

// GetOrder handles GET /orders/{id}, reading through the redis cache.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.cache != nil {
		if raw, err := h.cache.Get(r.Context(), h.cache.GenerateKey("order", id)); err == nil && raw != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(raw))
			return
		}
	}

	order, err := h.workflow.GetOrder(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.primeCache(r, order)
	writeJSON(w, http.StatusOK, order)
}

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	order, err := h.workflow.UpdateStatus(r.Context(), chi.URLParam(r, "id"), domain.Status(req.Status), req.Note)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.primeCache(r, order)
	writeJSON(w, http.StatusOK, order)
}

// UpdatePayment handles PATCH /orders/{id}/payment.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.PaymentStatus == "" {
		writeError(w, http.StatusBadRequest, "paymentStatus is required")
		return
	}

	order, err := h.workflow.UpdatePayment(r.Context(), chi.URLParam(r, "id"), domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	h.primeCache(r, order)
	writeJSON(w, http.StatusOK, order)
}

// ListUserOrders handles GET /orders/user/{userId}.
func (h *Handler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.workflow.ListUserOrders(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Service:   "order-service",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Database:  "disconnected",
		Broker:    "disconnected",
	}
	if h.health.DBConnected != nil && h.health.DBConnected() {
		resp.Database = "connected"
	}
	if h.health.BrokerConnected != nil && h.health.BrokerConnected() {
		resp.Broker = "connected"
	}
	writeJSON(w, http.StatusOK, resp)
}

// primeCache refreshes the cached serialization after a read miss or a
// successful mutation. Cache failures never affect the request.
func (h *Handler) primeCache(r *http.Request, o *domain.Order) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(o)
	if err != nil {
		return
	}
	key := h.cache.GenerateKey("order", o.ID)
	if err := h.cache.Set(r.Context(), key, string(b), orderCacheTTL); err != nil {
		slog.DebugContext(r.Context(), "order cache write failed", "order_id", o.ID, "error", err)
	}
}

// writeDomainError maps the error taxonomy onto HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr *domain.ValidationError
		uErr *domain.ItemUnavailableError
		sErr *domain.InsufficientStockError
		tErr *domain.IllegalTransitionError
	)
	switch {
	case errors.As(err, &vErr), errors.As(err, &uErr), errors.As(err, &sErr), errors.As(err, &tErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, domain.ErrDownstreamUnavailable):
		slog.ErrorContext(r.Context(), "downstream failure", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func intParam(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
