package order

import (
	"time"

	"github.com/gofrs/uuid"
)

type Status string

const (
	StatusPlaced    Status = "PLACED"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) String() string {
	return string(s)
}

// PaidStatuses are the states counted as revenue by analytics.
var PaidStatuses = []Status{StatusPaid, StatusShipped, StatusDelivered}

// allowedTransitions encodes the order lifecycle: PLACED → PAID → SHIPPED →
// DELIVERED, with CANCELLED reachable from any pre-terminal state. DELIVERED
// and CANCELLED are terminal.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPlaced: {
		StatusPaid:      true,
		StatusCancelled: true,
	},
	StatusPaid: {
		StatusShipped:   true,
		StatusCancelled: true,
	},
	StatusShipped: {
		StatusDelivered: true,
		StatusCancelled: true,
	},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransition reports whether the move from one status to another is legal.
func CanTransition(from, to Status) bool {
	return allowedTransitions[from][to]
}

// Item is one order line with the unit price captured at order time. The
// captured price never changes, whatever happens to the catalog afterwards.
type Item struct {
	ID        int64  `json:"id"`
	OrderID   int64  `json:"order_id"`
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Order is immutable once created except for status transitions.
type Order struct {
	ID          int64      `json:"id"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
	Status      Status     `json:"status"`
	Total       int64      `json:"total"`
	Currency    string     `json:"currency"`
	PromotionID *int64     `json:"promotion_id,omitempty"`
	Items       []Item     `json:"items"`
	CreatedAt   time.Time  `json:"created_at"`
}
