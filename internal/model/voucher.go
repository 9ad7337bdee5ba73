package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// VoucherType is how a voucher's value is applied.
type VoucherType string

const (
	VoucherPercentage VoucherType = "percentage"
	VoucherFixed      VoucherType = "fixed"
)

var hundred = decimal.NewFromInt(100)

// Voucher is a discount code.
type Voucher struct {
	Audit
	Code          string          `json:"code" validate:"required"`
	Description   string          `json:"description"`
	Type          VoucherType     `json:"type" validate:"required,oneof=percentage fixed"`
	Value         decimal.Decimal `json:"value"`
	MinOrderValue decimal.Decimal `json:"minOrderValue"`
	MaxDiscount   decimal.Decimal `json:"maxDiscount"`
	Quantity      int             `json:"quantity" validate:"gte=0"`
	UsedCount     int             `json:"usedCount" validate:"gte=0"`
	IsActive      bool            `json:"isActive"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
}

// Validate checks the voucher terms.
func (v *Voucher) Validate() error {
	return CheckVoucherTerms(v.Type, v.Value, v.Quantity, v.UsedCount, v.StartDate, v.EndDate)
}

// CheckVoucherTerms validates the numeric and date terms shared by voucher
// records and voucher create/update requests.
func CheckVoucherTerms(typ VoucherType, value decimal.Decimal, quantity, usedCount int, start, end time.Time) error {
	if typ != VoucherPercentage && typ != VoucherFixed {
		return fmt.Errorf("unknown voucher type %q", typ)
	}
	if !value.IsPositive() {
		return errors.New("voucher value must be positive")
	}
	if typ == VoucherPercentage && value.GreaterThan(hundred) {
		return errors.New("percentage voucher value must not exceed 100")
	}
	if usedCount > quantity {
		return fmt.Errorf("used count %d exceeds quantity %d", usedCount, quantity)
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return errors.New("voucher start date must not be after end date")
	}
	return nil
}

// Remaining returns how many more times the voucher can be used.
func (v *Voucher) Remaining() int {
	if v.UsedCount >= v.Quantity {
		return 0
	}
	return v.Quantity - v.UsedCount
}

// Usable reports whether the voucher can be applied at t.
func (v *Voucher) Usable(t time.Time) bool {
	if !v.IsActive || v.Remaining() == 0 {
		return false
	}
	if !v.StartDate.IsZero() && t.Before(v.StartDate) {
		return false
	}
	if !v.EndDate.IsZero() && t.After(v.EndDate) {
		return false
	}
	return true
}

// Discount computes the discount for an order subtotal.
func (v *Voucher) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(v.MinOrderValue) {
		return decimal.Zero
	}
	var d decimal.Decimal
	switch v.Type {
	case VoucherPercentage:
		d = subtotal.Mul(v.Value).Div(hundred).Round(2)
	case VoucherFixed:
		d = v.Value
	}
	if v.MaxDiscount.IsPositive() && d.GreaterThan(v.MaxDiscount) {
		d = v.MaxDiscount
	}
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	return d
}
