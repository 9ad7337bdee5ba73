// Package resource holds one thin typed API per REST resource. Each API
// fixes the endpoint paths, the envelope convention of every endpoint and
// the request schemas; transport concerns live in package client.
package resource

import "github.com/bassista/go_sole/internal/client"

// Cache tags. Queries and mutations touching the same logical resource
// share one of these as the key tag.
const (
	TagMe                  = "me"
	TagOrders              = "orders"
	TagOrder               = "order"
	TagVouchers            = "vouchers"
	TagStocks              = "stocks"
	TagStockHistory        = "stock-history"
	TagUsers               = "users"
	TagRoles               = "roles"
	TagBanners             = "banners"
	TagNews                = "news"
	TagNotifications       = "notifications"
	TagNotificationsUnread = "notifications-unread"
	TagProvinces           = "provinces"
	TagDistricts           = "districts"
	TagWards               = "wards"
	TagShippingFee         = "shipping-fee"
	TagContacts            = "contacts"
)

// API groups the resource APIs over one client.
type API struct {
	Auth          *AuthAPI
	Orders        *OrderAPI
	Vouchers      *VoucherAPI
	Stocks        *StockAPI
	Users         *UserAPI
	Roles         *RoleAPI
	Banners       *BannerAPI
	News          *NewsAPI
	Notifications *NotificationAPI
	Shipping      *ShippingAPI
	Contacts      *ContactAPI
}

// New wires every resource API to c.
func New(c *client.Client) *API {
	return &API{
		Auth:          &AuthAPI{c: c},
		Orders:        &OrderAPI{c: c},
		Vouchers:      &VoucherAPI{c: c},
		Stocks:        &StockAPI{c: c},
		Users:         &UserAPI{c: c},
		Roles:         &RoleAPI{c: c},
		Banners:       &BannerAPI{c: c},
		News:          &NewsAPI{c: c},
		Notifications: &NotificationAPI{c: c},
		Shipping:      &ShippingAPI{c: c},
		Contacts:      &ContactAPI{c: c},
	}
}
