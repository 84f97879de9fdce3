package domain

import (
	"testing"
	"time"
)

func testItems(subtotals ...float64) []OrderItem {
	items := make([]OrderItem, len(subtotals))
	for i, s := range subtotals {
		items[i] = OrderItem{ProductID: "P1", ProductName: "Widget", Quantity: 1, UnitPrice: s, Subtotal: s}
	}
	return items
}

func TestNewOrderTotals(t *testing.T) {
	tests := []struct {
		name         string
		items        []OrderItem
		wantSubtotal float64
		wantTax      float64
		wantShipping float64
		wantTotal    float64
	}{
		{
			// 2 × $50 widget: shipping applies because subtotal is not > 100.
			name:         "subtotal at free-shipping boundary",
			items:        []OrderItem{{ProductID: "P1", ProductName: "Widget", Quantity: 2, UnitPrice: 50, Subtotal: 100}},
			wantSubtotal: 100,
			wantTax:      10,
			wantShipping: 10,
			wantTotal:    120,
		},
		{
			name:         "subtotal above free-shipping threshold",
			items:        testItems(150),
			wantSubtotal: 150,
			wantTax:      15,
			wantShipping: 0,
			wantTotal:    165,
		},
		{
			name:         "small order pays flat shipping",
			items:        testItems(20, 30),
			wantSubtotal: 50,
			wantTax:      5,
			wantShipping: 10,
			wantTotal:    65,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOrder("id", "ORD-X-AAAAA", "u1", "u1@example.com", tt.items, Address{}, PaymentMethodPaypal, "")
			if o.Subtotal != tt.wantSubtotal {
				t.Errorf("Subtotal = %v, want %v", o.Subtotal, tt.wantSubtotal)
			}
			if o.Tax != tt.wantTax {
				t.Errorf("Tax = %v, want %v", o.Tax, tt.wantTax)
			}
			if o.Shipping != tt.wantShipping {
				t.Errorf("Shipping = %v, want %v", o.Shipping, tt.wantShipping)
			}
			if o.Total != tt.wantTotal {
				t.Errorf("Total = %v, want %v", o.Total, tt.wantTotal)
			}
			if o.Total != o.Subtotal+o.Tax+o.Shipping {
				t.Errorf("Total %v does not equal subtotal+tax+shipping", o.Total)
			}
		})
	}
}

func TestNewOrderSeedsHistory(t *testing.T) {
	o := NewOrder("id", "ORD-X-AAAAA", "u1", "u1@example.com", testItems(10), Address{}, PaymentMethodPaypal, "")

	if o.Status != StatusPending {
		t.Errorf("Status = %v, want pending", o.Status)
	}
	if o.PaymentStatus != PaymentPending {
		t.Errorf("PaymentStatus = %v, want pending", o.PaymentStatus)
	}
	if len(o.StatusHistory) != 1 {
		t.Fatalf("history length = %d, want 1", len(o.StatusHistory))
	}
	if o.StatusHistory[0].Status != StatusPending || o.StatusHistory[0].Note != "Order created" {
		t.Errorf("seed entry = %+v", o.StatusHistory[0])
	}
}

func TestSetStatusAppendsExactlyOneEntry(t *testing.T) {
	o := NewOrder("id", "ORD-X-AAAAA", "u1", "u1@example.com", testItems(10), Address{}, PaymentMethodPaypal, "")

	steps := []struct {
		status   Status
		note     string
		wantNote string
	}{
		{StatusConfirmed, "manual confirm", "manual confirm"},
		{StatusProcessing, "", "Status changed to processing"},
		{StatusShipped, "", "Status changed to shipped"},
	}

	for i, s := range steps {
		before := time.Now()
		o.SetStatus(s.status, s.note)
		if got := len(o.StatusHistory); got != i+2 {
			t.Fatalf("after step %d: history length = %d, want %d", i, got, i+2)
		}
		last := o.StatusHistory[len(o.StatusHistory)-1]
		if last.Status != s.status || last.Note != s.wantNote {
			t.Errorf("entry = %+v, want status %v note %q", last, s.status, s.wantNote)
		}
		if o.UpdatedAt.Before(before.Add(-time.Second)) {
			t.Errorf("UpdatedAt not refreshed")
		}
	}
}

func TestSetPaymentStatusAutoAdvance(t *testing.T) {
	t.Run("paid while pending confirms the order", func(t *testing.T) {
		o := NewOrder("id", "ORD-X-AAAAA", "u1", "u1@example.com", testItems(10), Address{}, PaymentMethodPaypal, "")
		o.SetPaymentStatus(PaymentPaid)

		if o.Status != StatusConfirmed {
			t.Errorf("Status = %v, want confirmed", o.Status)
		}
		if len(o.StatusHistory) != 2 {
			t.Fatalf("history length = %d, want 2", len(o.StatusHistory))
		}
		last := o.StatusHistory[1]
		if last.Status != StatusConfirmed || last.Note != "Payment received" {
			t.Errorf("entry = %+v", last)
		}
	})

	t.Run("paid after pending leaves status alone", func(t *testing.T) {
		o := NewOrder("id", "ORD-X-AAAAA", "u1", "u1@example.com", testItems(10), Address{}, PaymentMethodPaypal, "")
		o.SetStatus(StatusProcessing, "")
		historyLen := len(o.StatusHistory)

		o.SetPaymentStatus(PaymentPaid)
		if o.Status != StatusProcessing {
			t.Errorf("Status = %v, want processing", o.Status)
		}
		if len(o.StatusHistory) != historyLen {
			t.Errorf("history grew on payment of non-pending order")
		}
	})

	t.Run("failed payment never advances", func(t *testing.T) {
		o := NewOrder("id", "ORD-X-AAAAA", "u1", "u1@example.com", testItems(10), Address{}, PaymentMethodPaypal, "")
		o.SetPaymentStatus(PaymentFailed)
		if o.Status != StatusPending {
			t.Errorf("Status = %v, want pending", o.Status)
		}
	})
}
