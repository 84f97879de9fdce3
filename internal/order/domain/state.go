package domain

// Decision is the outcome of a transition check. Reason is set only on deny.
type Decision struct {
	Allowed bool
	Reason  string
}

// CheckTransition is the single place where status transition policy lives.
//
// The policy is deliberately permissive: the only enforced rule is that an
// order may be cancelled only while pending or confirmed. Every other
// requested transition — identity moves and backwards moves included — is
// allowed. Tightening this into a full transition table is a possible future
// hardening, not current behaviour.
func CheckTransition(from, to Status) Decision {
	if to == StatusCancelled && from != StatusPending && from != StatusConfirmed {
		return Decision{Reason: "cannot cancel order in status " + string(from)}
	}
	return Decision{Allowed: true}
}
