package resource

import (
	"context"
	"net/http"
	"time"

	"github.com/bassista/go_sole/internal/apperr"
	"github.com/bassista/go_sole/internal/client"
	"github.com/bassista/go_sole/internal/model"
	"github.com/shopspring/decimal"
)

var vouchersEndpoint = client.Endpoint{Path: "vouchers", Envelope: client.EnvelopeNone}

// VoucherInput is the create/update body. Dates go out as RFC 3339.
type VoucherInput struct {
	Code          string            `json:"code" validate:"required,min=3,max=32"`
	Description   string            `json:"description,omitempty"`
	Type          model.VoucherType `json:"type" validate:"required,oneof=percentage fixed"`
	Value         decimal.Decimal   `json:"value"`
	MinOrderValue *decimal.Decimal  `json:"minOrderValue,omitempty"`
	MaxDiscount   *decimal.Decimal  `json:"maxDiscount,omitempty"`
	Quantity      int               `json:"quantity" validate:"gte=1"`
	IsActive      bool              `json:"isActive"`
	StartDate     time.Time         `json:"startDate" validate:"required"`
	EndDate       time.Time         `json:"endDate" validate:"required"`
}

// OptionalAmount returns nil for zero so the field is left out of the body.
func OptionalAmount(d decimal.Decimal) *decimal.Decimal {
	if d.IsZero() {
		return nil
	}
	return &d
}

func (in VoucherInput) check() error {
	if err := model.CheckVoucherTerms(in.Type, in.Value, in.Quantity, 0, in.StartDate, in.EndDate); err != nil {
		return apperr.ValidationErr(err.Error(), nil)
	}
	return nil
}

// VoucherAPI covers /vouchers.
type VoucherAPI struct{ c *client.Client }

func (a *VoucherAPI) List(ctx context.Context) ([]model.Voucher, error) {
	return client.FetchList[model.Voucher](ctx, a.c, vouchersEndpoint, nil)
}

func (a *VoucherAPI) Get(ctx context.Context, id string) (model.Voucher, error) {
	return client.FetchByID[model.Voucher](ctx, a.c, vouchersEndpoint, id)
}

func (a *VoucherAPI) Create(ctx context.Context, in VoucherInput) (model.Voucher, error) {
	if err := in.check(); err != nil {
		return model.Voucher{}, err
	}
	return client.Create[model.Voucher](ctx, a.c, vouchersEndpoint, in)
}

func (a *VoucherAPI) Update(ctx context.Context, id string, in VoucherInput) (model.Voucher, error) {
	if err := in.check(); err != nil {
		return model.Voucher{}, err
	}
	return client.Update[model.Voucher](ctx, a.c, vouchersEndpoint, id, in)
}

func (a *VoucherAPI) Delete(ctx context.Context, id string) error {
	return client.Delete(ctx, a.c, vouchersEndpoint, id)
}

// Toggle flips isActive.
func (a *VoucherAPI) Toggle(ctx context.Context, id string) (model.Voucher, error) {
	if id == "" {
		return model.Voucher{}, apperr.ValidationErr("id is required", map[string]string{"id": "required"})
	}
	return client.Action[model.Voucher](ctx, a.c, client.Request{
		Method: http.MethodPatch,
		Path:   vouchersEndpoint.Sub(id, "toggle").Path,
	}, vouchersEndpoint.Envelope)
}
