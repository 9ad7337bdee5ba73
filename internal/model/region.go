package model

import "strconv"

// Province is a top-level shipping region.
type Province struct {
	ProvinceID   int    `json:"ProvinceID"`
	ProvinceName string `json:"ProvinceName"`
}

// District belongs to a province.
type District struct {
	DistrictID   int    `json:"DistrictID"`
	ProvinceID   int    `json:"ProvinceID"`
	DistrictName string `json:"DistrictName"`
}

// Ward belongs to a district.
type Ward struct {
	WardCode   string `json:"WardCode"`
	DistrictID int    `json:"DistrictID"`
	WardName   string `json:"WardName"`
}

// Option is a select-box entry.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ProvinceOptions projects provinces to select options.
func ProvinceOptions(in []Province) []Option {
	out := make([]Option, 0, len(in))
	for _, p := range in {
		out = append(out, Option{Label: p.ProvinceName, Value: strconv.Itoa(p.ProvinceID)})
	}
	return out
}

// DistrictOptions projects districts to select options.
func DistrictOptions(in []District) []Option {
	out := make([]Option, 0, len(in))
	for _, d := range in {
		out = append(out, Option{Label: d.DistrictName, Value: strconv.Itoa(d.DistrictID)})
	}
	return out
}

// WardOptions projects wards to select options.
func WardOptions(in []Ward) []Option {
	out := make([]Option, 0, len(in))
	for _, w := range in {
		out = append(out, Option{Label: w.WardName, Value: w.WardCode})
	}
	return out
}
