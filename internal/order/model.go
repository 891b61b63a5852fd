package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// ValidStatus reports whether s is a member of the status set.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPaid, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusDelivered, StatusCancelled},
}

// CanTransition reports whether an order may move from one status to another.
// Same-status moves are handled separately as no-ops by the service.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID              string          `json:"id"`
	Status          Status          `json:"status"`
	Paid            bool            `json:"paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalItems      int             `json:"total_items"`
	PaymentChargeID string          `json:"payment_charge_id,omitempty"`
	Items           []Item          `json:"items,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type Item struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"` // snapshot at creation, never re-fetched
	// Name is display-only, resolved from the catalog on create/read.
	Name string `json:"name,omitempty"`
}

type Receipt struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	ReceiptURL string    `json:"receipt_url"`
	CreatedAt  time.Time `json:"created_at"`
}
