package domain

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// ValidStatus reports whether s is a member of the status enum.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodPaypal       PaymentMethod = "paypal"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPaypal, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// OrderItem is a priced line item. Price and name are captured from the
// inventory service at creation time and never refreshed.
type OrderItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Subtotal    float64 `json:"subtotal"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// StatusHistoryEntry is one row of the append-only status trail.
type StatusHistoryEntry struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note"`
}

// Order is the aggregate root. Totals are derived once in NewOrder and are
// never recomputed; statusHistory only ever grows.
type Order struct {
	ID              string               `json:"id"`
	OrderNumber     string               `json:"orderNumber"`
	UserID          string               `json:"userId"`
	UserEmail       string               `json:"userEmail"`
	Items           []OrderItem          `json:"items"`
	Status          Status               `json:"status"`
	PaymentStatus   PaymentStatus        `json:"paymentStatus"`
	ShippingAddress Address              `json:"shippingAddress"`
	PaymentMethod   PaymentMethod        `json:"paymentMethod"`
	Subtotal        float64              `json:"subtotal"`
	Tax             float64              `json:"tax"`
	Shipping        float64              `json:"shipping"`
	Total           float64              `json:"total"`
	Notes           string               `json:"notes,omitempty"`
	StatusHistory   []StatusHistoryEntry `json:"statusHistory"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// Pricing constants: 10% tax, flat $10 shipping waived above a $100 subtotal.
const (
	taxRate           = 0.10
	shippingFlatFee   = 10.0
	freeShippingAbove = 100.0
)

// NewOrder builds a pending order from priced items, deriving the four total
// fields and seeding the status history.
func NewOrder(id, orderNumber, userID, userEmail string, items []OrderItem, addr Address, method PaymentMethod, notes string) *Order {
	var subtotal float64
	for _, it := range items {
		subtotal += it.Subtotal
	}
	tax := subtotal * taxRate
	shipping := shippingFlatFee
	if subtotal > freeShippingAbove {
		shipping = 0
	}

	now := time.Now().UTC()
	return &Order{
		ID:              id,
		OrderNumber:     orderNumber,
		UserID:          userID,
		UserEmail:       userEmail,
		Items:           items,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		ShippingAddress: addr,
		PaymentMethod:   method,
		Subtotal:        subtotal,
		Tax:             tax,
		Shipping:        shipping,
		Total:           subtotal + tax + shipping,
		Notes:           notes,
		StatusHistory: []StatusHistoryEntry{
			{Status: StatusPending, Timestamp: now, Note: "Order created"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetStatus applies a status change and appends exactly one history entry.
// Transition legality is the caller's concern (see CheckTransition); this
// method only maintains the aggregate's internal invariants.
func (o *Order) SetStatus(s Status, note string) {
	if note == "" {
		note = "Status changed to " + string(s)
	}
	now := time.Now().UTC()
	o.Status = s
	o.StatusHistory = append(o.StatusHistory, StatusHistoryEntry{Status: s, Timestamp: now, Note: note})
	o.UpdatedAt = now
}

// SetPaymentStatus applies a payment status change. When payment succeeds
// while the order is still pending, the order auto-advances to confirmed —
// the only status transition not driven by an explicit request.
func (o *Order) SetPaymentStatus(s PaymentStatus) {
	o.PaymentStatus = s
	o.UpdatedAt = time.Now().UTC()
	if s == PaymentPaid && o.Status == StatusPending {
		o.SetStatus(StatusConfirmed, "Payment received")
	}
}
