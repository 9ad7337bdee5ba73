package model

import "fmt"

// ShippingAddress is a delivery address stored on the user.
type ShippingAddress struct {
	ID         string `json:"_id,omitempty"`
	FullName   string `json:"full_name" validate:"required"`
	Phone      string `json:"phone" validate:"required,min=9,max=15"`
	Address    string `json:"address" validate:"required"`
	ProvinceID int    `json:"province_id" validate:"required"`
	DistrictID int    `json:"district_id" validate:"required"`
	WardCode   string `json:"ward_code" validate:"required"`
	IsDefault  bool   `json:"is_default"`
}

// SetDefaultAddress returns a copy of addresses where only index idx is the default.
func SetDefaultAddress(addresses []ShippingAddress, idx int) ([]ShippingAddress, error) {
	if idx < 0 || idx >= len(addresses) {
		return nil, fmt.Errorf("address index %d out of range (have %d)", idx, len(addresses))
	}
	out := make([]ShippingAddress, len(addresses))
	copy(out, addresses)
	for i := range out {
		out[i].IsDefault = i == idx
	}
	return out, nil
}

// AddAddress appends addr; if it is marked default, or it is the first
// address, every other address loses the default flag.
func AddAddress(addresses []ShippingAddress, addr ShippingAddress) []ShippingAddress {
	out := make([]ShippingAddress, 0, len(addresses)+1)
	out = append(out, addresses...)
	if len(out) == 0 {
		addr.IsDefault = true
	}
	out = append(out, addr)
	if addr.IsDefault {
		out, _ = SetDefaultAddress(out, len(out)-1)
	}
	return out
}

// DefaultAddress returns the default address, if any.
func DefaultAddress(addresses []ShippingAddress) (ShippingAddress, bool) {
	for _, a := range addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return ShippingAddress{}, false
}
