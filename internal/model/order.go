package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCanceled   OrderStatus = "canceled"
)

// orderRank is the fixed forward ordering; canceled sits outside it.
var orderRank = map[OrderStatus]int{
	OrderPending:    0,
	OrderProcessing: 1,
	OrderShipped:    2,
	OrderDelivered:  3,
}

// Order is a customer order.
type Order struct {
	Audit
	Code            string          `json:"code"`
	User            string          `json:"user"`
	Items           []OrderItem     `json:"items" validate:"dive"`
	ShippingAddress ShippingAddress `json:"shippingAddress" validate:"-"`
	PaymentMethod   string          `json:"paymentMethod"`
	IsPaid          bool            `json:"isPaid"`
	VoucherCode     string          `json:"voucherCode"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	ShippingFee     decimal.Decimal `json:"shippingFee"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status" validate:"required,oneof=pending processing shipped delivered canceled"`
	Note            string          `json:"note"`
}

// OrderItem is a single line of an order.
type OrderItem struct {
	Product  string          `json:"product" validate:"required"`
	Name     string          `json:"name"`
	Size     string          `json:"size"`
	Color    string          `json:"color"`
	Quantity int             `json:"quantity" validate:"gte=1"`
	Price    decimal.Decimal `json:"price"`
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	if s == OrderCanceled {
		return true
	}
	_, ok := orderRank[s]
	return ok
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCanceled
}

// CanTransition reports whether an order may move from one status to another.
// Forward moves along pending → processing → shipped → delivered are allowed,
// skipping included; canceled is only reachable before shipping.
func CanTransition(from, to OrderStatus) bool {
	if !from.Valid() || !to.Valid() || from.Terminal() || from == to {
		return false
	}
	if to == OrderCanceled {
		return from == OrderPending || from == OrderProcessing
	}
	return orderRank[to] > orderRank[from]
}

// NextStatuses lists the statuses the status control may offer for s.
func NextStatuses(s OrderStatus) []OrderStatus {
	out := []OrderStatus{}
	for _, candidate := range []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCanceled} {
		if CanTransition(s, candidate) {
			out = append(out, candidate)
		}
	}
	return out
}

// StatusLocked reports whether the status control must be disabled.
func (o *Order) StatusLocked() bool {
	return o.Status.Terminal()
}

// CheckTransition returns an error describing why the order cannot move to status.
func (o *Order) CheckTransition(to OrderStatus) error {
	if o.StatusLocked() {
		return fmt.Errorf("order %s is %s and can no longer change status", o.ID, o.Status)
	}
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("order %s cannot move from %s to %s", o.ID, o.Status, to)
	}
	return nil
}

// ItemCount sums item quantities.
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// ApplyDefaults sets fallback values after decode.
func (o *Order) ApplyDefaults() {
	if o.Items == nil {
		o.Items = []OrderItem{}
	}
	if o.Status == "" {
		o.Status = OrderPending
	}
}
