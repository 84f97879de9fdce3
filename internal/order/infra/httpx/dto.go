package httpx

import (
	"github.com/ecomkit/order-service/internal/order/app"
	"github.com/ecomkit/order-service/internal/order/domain"
)

// The Order aggregate carries its own JSON tags, so responses marshal the
// domain type directly; DTOs here cover the request bodies and envelopes.

type CreateOrderRequest struct {
	UserID          string                   `json:"userId"`
	UserEmail       string                   `json:"userEmail"`
	Items           []CreateOrderItemRequest `json:"items"`
	ShippingAddress domain.Address           `json:"shippingAddress"`
	PaymentMethod   string                   `json:"paymentMethod"`
	Notes           string                   `json:"notes,omitempty"`
}

type CreateOrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

type UpdatePaymentRequest struct {
	PaymentStatus string `json:"paymentStatus"`
}

type ListOrdersResponse struct {
	Orders     []domain.Order `json:"orders"`
	Pagination app.Pagination `json:"pagination"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
	Broker    string `json:"broker"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
