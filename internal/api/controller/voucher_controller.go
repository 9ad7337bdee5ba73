package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/bassista/go_sole/internal/apperr"
	"github.com/bassista/go_sole/internal/cache"
	"github.com/bassista/go_sole/internal/model"
	"github.com/bassista/go_sole/internal/resource"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// VoucherForm is the voucher editor payload. DateRange holds the picker's
// [start, end] pair as dates or timestamps.
type VoucherForm struct {
	Code          string            `json:"code"`
	Description   string            `json:"description"`
	Type          model.VoucherType `json:"type"`
	Value         decimal.Decimal   `json:"value"`
	MinOrderValue decimal.Decimal   `json:"minOrderValue"`
	MaxDiscount   decimal.Decimal   `json:"maxDiscount"`
	Quantity      int               `json:"quantity"`
	IsActive      bool              `json:"isActive"`
	DateRange     []string          `json:"dateRange"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseFormDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Input converts the form into the API body.
func (f VoucherForm) Input() (resource.VoucherInput, error) {
	if len(f.DateRange) != 2 {
		return resource.VoucherInput{}, apperr.ValidationErr("dateRange needs a start and an end", map[string]string{"dateRange": "len"})
	}
	start, ok := parseFormDate(f.DateRange[0])
	if !ok {
		return resource.VoucherInput{}, apperr.ValidationErr("invalid start date", map[string]string{"dateRange": "date"})
	}
	end, ok := parseFormDate(f.DateRange[1])
	if !ok {
		return resource.VoucherInput{}, apperr.ValidationErr("invalid end date", map[string]string{"dateRange": "date"})
	}
	return resource.VoucherInput{
		Code:          f.Code,
		Description:   f.Description,
		Type:          f.Type,
		Value:         f.Value,
		MinOrderValue: resource.OptionalAmount(f.MinOrderValue),
		MaxDiscount:   resource.OptionalAmount(f.MaxDiscount),
		Quantity:      f.Quantity,
		IsActive:      f.IsActive,
		StartDate:     start,
		EndDate:       end,
	}, nil
}

// VoucherController serves /api/admin/vouchers.
type VoucherController struct {
	crud *CrudController[model.Voucher, resource.VoucherInput]
	api  *resource.VoucherAPI
}

// NewVoucherController wires the voucher screens to the cache.
func NewVoucherController(api *resource.VoucherAPI, m Mutator) *VoucherController {
	return &VoucherController{
		api: api,
		crud: &CrudController[model.Voucher, resource.VoucherInput]{
			Service:   api,
			Mutator:   m,
			Tag:       resource.TagVouchers,
			Component: "voucher-controller",
			Bind: func(c *gin.Context) (resource.VoucherInput, error) {
				var form VoucherForm
				if err := c.ShouldBindJSON(&form); err != nil {
					return resource.VoucherInput{}, apperr.ValidationErr("invalid payload", nil)
				}
				return form.Input()
			},
		},
	}
}

// Register mounts the voucher routes.
func (vc *VoucherController) Register(rg *gin.RouterGroup) {
	vc.crud.RegisterCrudRoutes(rg, "vouchers")
	rg.GET("/vouchers/:id", vc.Get)
	rg.PATCH("/vouchers/:id/toggle", vc.Toggle)
}

// Get handles GET /vouchers/:id.
func (vc *VoucherController) Get(c *gin.Context) {
	id := c.Param("id")
	serveQuery(c, vc.crud.Mutator.Store, vc.crud.Component, cache.ID(resource.TagVouchers, id), func(ctx context.Context) (model.Voucher, error) {
		return vc.api.Get(ctx, id)
	})
}

// Toggle handles PATCH /vouchers/:id/toggle.
func (vc *VoucherController) Toggle(c *gin.Context) {
	id := c.Param("id")
	runMutation(c, vc.crud.Mutator, vc.crud.Component, http.StatusOK, func(ctx context.Context) (model.Voucher, error) {
		return vc.api.Toggle(ctx, id)
	}, cache.Tag(resource.TagVouchers))
}
