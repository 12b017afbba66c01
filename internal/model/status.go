package model

import (
	"errors"
	"strings"
)

type OrderStatus string

const (
	OrderPending OrderStatus = "PENDING"
	OrderPaid    OrderStatus = "PAID"
)

// ItemStatus is the fulfillment progress of a single order line. Values are
// totally ordered; see Rank.
type ItemStatus string

const (
	ItemPlaced     ItemStatus = "PLACED"
	ItemProcessing ItemStatus = "PROCESSING"
	ItemShipped    ItemStatus = "SHIPPED"
	ItemDelivered  ItemStatus = "DELIVERED"
)

var itemStatusSequence = []ItemStatus{ItemPlaced, ItemProcessing, ItemShipped, ItemDelivered}

var (
	ErrStatusRequired = errors.New("status is required")
	ErrUnknownStatus  = errors.New("invalid status")
)

// Rank returns the position of s in the fulfillment sequence, or -1 when s is
// not a member of it.
func (s ItemStatus) Rank() int {
	for i, v := range itemStatusSequence {
		if v == s {
			return i
		}
	}
	return -1
}

func (s ItemStatus) Valid() bool { return s.Rank() >= 0 }

// CanAdvanceTo reports whether moving from s to next keeps the status
// non-decreasing. Staying on the same status is allowed.
func (s ItemStatus) CanAdvanceTo(next ItemStatus) bool {
	return s.Valid() && next.Valid() && next.Rank() >= s.Rank()
}

func ItemStatuses() []ItemStatus {
	out := make([]ItemStatus, len(itemStatusSequence))
	copy(out, itemStatusSequence)
	return out
}

// ParseItemStatus trims and upper-cases raw before matching it against the
// sequence.
func ParseItemStatus(raw string) (ItemStatus, error) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if v == "" {
		return "", ErrStatusRequired
	}
	s := ItemStatus(v)
	if !s.Valid() {
		return "", ErrUnknownStatus
	}
	return s, nil
}
