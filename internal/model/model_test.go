package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBannerStatus_RoundTrip(t *testing.T) {
	for _, original := range []bool{true, false} {
		encoded := EncodeBannerStatus(original)
		decoded, err := DecodeBannerStatus(encoded)
		require.NoError(t, err)
		assert.Equal(t, original, decoded, "status %v encoded as %q", original, encoded)
	}

	assert.Equal(t, "true", EncodeBannerStatus(true))
	assert.Equal(t, "false", EncodeBannerStatus(false))

	_, err := DecodeBannerStatus("yes please")
	assert.Error(t, err)
}

func TestBannerStatus_JSONForms(t *testing.T) {
	tests := []struct {
		raw  string
		want Flag
	}{
		{`{"_id":"b1","title":"Summer","status":true}`, true},
		{`{"_id":"b1","title":"Summer","status":"true"}`, true},
		{`{"_id":"b1","title":"Summer","status":"false"}`, false},
		{`{"_id":"b1","title":"Summer","status":null}`, false},
	}
	for _, tt := range tests {
		var b Banner
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &b), tt.raw)
		assert.Equal(t, tt.want, b.Status, tt.raw)
		assert.Equal(t, EncodeBannerStatus(bool(tt.want)), b.Status.FormValue())
	}

	var b Banner
	assert.Error(t, json.Unmarshal([]byte(`{"status":42}`), &b))
}

func TestOrderTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderShipped, true},
		{OrderProcessing, OrderDelivered, true},
		{OrderShipped, OrderDelivered, true},
		{OrderProcessing, OrderPending, false},
		{OrderDelivered, OrderShipped, false},
		{OrderPending, OrderCanceled, true},
		{OrderProcessing, OrderCanceled, true},
		{OrderShipped, OrderCanceled, false},
		{OrderDelivered, OrderCanceled, false},
		{OrderCanceled, OrderPending, false},
		{OrderPending, OrderPending, false},
		{OrderPending, "lost", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestOrder_StatusLocked(t *testing.T) {
	for status, locked := range map[OrderStatus]bool{
		OrderPending:    false,
		OrderProcessing: false,
		OrderShipped:    false,
		OrderDelivered:  true,
		OrderCanceled:   true,
	} {
		o := Order{Audit: Audit{ID: "o1"}, Status: status}
		assert.Equal(t, locked, o.StatusLocked(), status)
		if locked {
			assert.Empty(t, NextStatuses(status))
			assert.Error(t, o.CheckTransition(OrderDelivered))
		}
	}

	assert.Equal(t, []OrderStatus{OrderDelivered}, NextStatuses(OrderShipped))
	assert.Equal(t, []OrderStatus{OrderProcessing, OrderShipped, OrderDelivered, OrderCanceled}, NextStatuses(OrderPending))
}

func TestOrder_ApplyDefaultsAndCount(t *testing.T) {
	var o Order
	o.ApplyDefaults()
	assert.Equal(t, OrderPending, o.Status)
	assert.NotNil(t, o.Items)

	o.Items = []OrderItem{{Product: "p1", Quantity: 2}, {Product: "p2", Quantity: 3}}
	assert.Equal(t, 5, o.ItemCount())
}

func TestVoucher_Validate(t *testing.T) {
	base := Voucher{
		Code:      "SALE10",
		Type:      VoucherPercentage,
		Value:     decimal.NewFromInt(10),
		Quantity:  100,
		UsedCount: 3,
		StartDate: date("2025-01-01"),
		EndDate:   date("2025-01-31"),
	}
	require.NoError(t, base.Validate())

	overused := base
	overused.UsedCount = 101
	assert.Error(t, overused.Validate())

	inverted := base
	inverted.StartDate, inverted.EndDate = base.EndDate, base.StartDate
	assert.Error(t, inverted.Validate())

	tooMuch := base
	tooMuch.Value = decimal.NewFromInt(150)
	assert.Error(t, tooMuch.Validate())

	fixed := tooMuch
	fixed.Type = VoucherFixed
	assert.NoError(t, fixed.Validate())

	zero := base
	zero.Value = decimal.Zero
	assert.Error(t, zero.Validate())
}

func TestVoucher_UsableAndDiscount(t *testing.T) {
	v := Voucher{
		Type:          VoucherPercentage,
		Value:         decimal.NewFromInt(10),
		MaxDiscount:   decimal.NewFromInt(50),
		MinOrderValue: decimal.NewFromInt(100),
		Quantity:      2,
		UsedCount:     1,
		IsActive:      true,
		StartDate:     date("2025-01-01"),
		EndDate:       date("2025-01-31"),
	}

	assert.True(t, v.Usable(date("2025-01-15")))
	assert.False(t, v.Usable(date("2025-02-15")))
	assert.Equal(t, 1, v.Remaining())

	assert.True(t, v.Discount(decimal.NewFromInt(200)).Equal(decimal.NewFromInt(20)))
	assert.True(t, v.Discount(decimal.NewFromInt(1000)).Equal(decimal.NewFromInt(50)), "capped by max discount")
	assert.True(t, v.Discount(decimal.NewFromInt(99)).IsZero(), "below minimum order value")

	v.UsedCount = 2
	assert.False(t, v.Usable(date("2025-01-15")))
}

func TestStockRef_TaggedVariant(t *testing.T) {
	var bare StockHistory
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"h1","stock_id":"abc123","quantity_change":-5,"reason":"damaged"}`), &bare))
	assert.Equal(t, "abc123", bare.Stock.ID)
	assert.False(t, bare.Stock.Populated())

	var populated StockHistory
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"h2","stock_id":{"_id":"abc123","product":"p1","quantity":7},"quantity_change":2}`), &populated))
	assert.Equal(t, "abc123", populated.Stock.ID)
	require.True(t, populated.Stock.Populated())
	assert.Equal(t, 7, populated.Stock.Record.Quantity)

	var bad StockHistory
	assert.Error(t, json.Unmarshal([]byte(`{"stock_id":12}`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`{"stock_id":{"product":"p1"}}`), &bad))

	out, err := json.Marshal(bare.Stock)
	require.NoError(t, err)
	assert.JSONEq(t, `"abc123"`, string(out))
}

func TestStock_LowStock(t *testing.T) {
	assert.True(t, (&Stock{Quantity: 2, Threshold: 5}).LowStock())
	assert.False(t, (&Stock{Quantity: 9, Threshold: 5}).LowStock())
	assert.False(t, (&Stock{Quantity: 0}).LowStock())
}

func TestAddresses_SingleDefault(t *testing.T) {
	var list []ShippingAddress
	list = AddAddress(list, ShippingAddress{FullName: "A"})
	require.Len(t, list, 1)
	assert.True(t, list[0].IsDefault, "first address becomes default")

	list = AddAddress(list, ShippingAddress{FullName: "B"})
	list = AddAddress(list, ShippingAddress{FullName: "C", IsDefault: true})

	defaults := 0
	for _, a := range list {
		if a.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
	def, ok := DefaultAddress(list)
	require.True(t, ok)
	assert.Equal(t, "C", def.FullName)

	switched, err := SetDefaultAddress(list, 1)
	require.NoError(t, err)
	assert.True(t, switched[1].IsDefault)
	assert.False(t, switched[2].IsDefault)
	assert.True(t, list[2].IsDefault, "input slice is not modified")

	_, err = SetDefaultAddress(list, 5)
	assert.Error(t, err)
}

func TestAddress_Validation(t *testing.T) {
	v := validator.New()
	ok := ShippingAddress{FullName: "Lan", Phone: "0901234567", Address: "12 Le Loi", ProvinceID: 202, DistrictID: 1442, WardCode: "20109"}
	assert.NoError(t, v.Struct(ok))

	short := ok
	short.Phone = "123"
	assert.Error(t, v.Struct(short))

	missingWard := ok
	missingWard.WardCode = ""
	assert.Error(t, v.Struct(missingWard))
}

func TestRegionOptions(t *testing.T) {
	assert.Equal(t, []Option{{Label: "Ha Noi", Value: "201"}}, ProvinceOptions([]Province{{ProvinceID: 201, ProvinceName: "Ha Noi"}}))
	assert.Equal(t, []Option{{Label: "Quan 1", Value: "1442"}}, DistrictOptions([]District{{DistrictID: 1442, DistrictName: "Quan 1"}}))
	assert.Equal(t, []Option{{Label: "Ben Nghe", Value: "20109"}}, WardOptions([]Ward{{WardCode: "20109", WardName: "Ben Nghe"}}))
}

func TestUser_ApplyDefaults(t *testing.T) {
	var u User
	u.ApplyDefaults()
	assert.Equal(t, RoleCustomer, u.Role)
	require.NotNil(t, u.IsActive)
	assert.True(t, *u.IsActive)
	assert.NotNil(t, u.Addresses)
}
