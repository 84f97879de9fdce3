package domain

import (
	"regexp"
	"testing"
)

var orderNumberRe = regexp.MustCompile(`^ORD-[A-Z0-9]+-[A-Z0-9]{5}$`)

func TestNewOrderNumberFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		n := NewOrderNumber()
		if !orderNumberRe.MatchString(n) {
			t.Fatalf("order number %q does not match %v", n, orderNumberRe)
		}
	}
}

func TestNewOrderNumberUniqueness(t *testing.T) {
	const count = 10000
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		n := NewOrderNumber()
		if _, dup := seen[n]; dup {
			t.Fatalf("duplicate order number %q after %d generations", n, i)
		}
		seen[n] = struct{}{}
	}
}
