package resource

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bassista/go_sole/internal/apperr"
	"github.com/bassista/go_sole/internal/client"
	"github.com/bassista/go_sole/internal/model"
	"github.com/shopspring/decimal"
)

var shippingEndpoint = client.Endpoint{Path: "shipping", Envelope: client.EnvelopeData}

// FeeInput asks for a delivery quote to a ward.
type FeeInput struct {
	ToDistrictID   int             `json:"to_district_id" validate:"required"`
	ToWardCode     string          `json:"to_ward_code" validate:"required"`
	Weight         int             `json:"weight" validate:"gte=1"`
	InsuranceValue decimal.Decimal `json:"insurance_value"`
}

// ShippingAPI covers the /shipping region lookups and fee quote.
type ShippingAPI struct{ c *client.Client }

func (a *ShippingAPI) Provinces(ctx context.Context) ([]model.Province, error) {
	return client.FetchList[model.Province](ctx, a.c, shippingEndpoint.Sub("provinces"), nil)
}

// Districts lists the districts of a province. provinceID must be set.
func (a *ShippingAPI) Districts(ctx context.Context, provinceID int) ([]model.District, error) {
	if provinceID <= 0 {
		return nil, apperr.ValidationErr("province_id is required", map[string]string{"province_id": "required"})
	}
	q := url.Values{"province_id": {strconv.Itoa(provinceID)}}
	return client.FetchList[model.District](ctx, a.c, shippingEndpoint.Sub("districts"), q)
}

// Wards lists the wards of a district. districtID must be set.
func (a *ShippingAPI) Wards(ctx context.Context, districtID int) ([]model.Ward, error) {
	if districtID <= 0 {
		return nil, apperr.ValidationErr("district_id is required", map[string]string{"district_id": "required"})
	}
	q := url.Values{"district_id": {strconv.Itoa(districtID)}}
	return client.FetchList[model.Ward](ctx, a.c, shippingEndpoint.Sub("wards"), q)
}

func (a *ShippingAPI) Fee(ctx context.Context, in FeeInput) (model.ShippingFee, error) {
	return client.Action[model.ShippingFee](ctx, a.c, client.Request{
		Method: http.MethodPost,
		Path:   shippingEndpoint.Sub("fee").Path,
		Body:   in,
	}, shippingEndpoint.Envelope)
}
