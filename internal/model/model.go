package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The shop API reads and writes money as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Audit holds the identifier and timestamps every backend record carries.
type Audit struct {
	ID        string    `json:"_id" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Role names used by the role gate.
const (
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

// User is an account on the shop.
type User struct {
	Audit
	Username  string            `json:"username" validate:"required"`
	Email     string            `json:"email" validate:"omitempty,email"`
	FullName  string            `json:"fullName"`
	Phone     string            `json:"phone"`
	Role      string            `json:"role"`
	IsActive  *bool             `json:"isActive"`
	Addresses []ShippingAddress `json:"addresses" validate:"dive"`
}

// Role is an assignable role with its permission names.
type Role struct {
	Audit
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// News is a blog post shown on the storefront.
type News struct {
	Audit
	Title     string `json:"title" validate:"required"`
	Slug      string `json:"slug"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	Image     string `json:"image"`
	Author    string `json:"author"`
	Published *bool  `json:"published"`
}

// Notification is an admin notification, pushed in realtime and polled.
type Notification struct {
	Audit
	Title   string `json:"title"`
	Message string `json:"message" validate:"required"`
	Type    string `json:"type"`
	Link    string `json:"link"`
	IsRead  bool   `json:"isRead"`
}

// Contact is a customer message from the storefront contact form.
type Contact struct {
	Audit
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
	Handled bool   `json:"handled"`
}

// ShippingFee is a fee quote for delivering to a ward.
type ShippingFee struct {
	Total        decimal.Decimal `json:"total"`
	ServiceFee   decimal.Decimal `json:"service_fee"`
	InsuranceFee decimal.Decimal `json:"insurance_fee"`
	ExpectedDays int             `json:"expected_days"`
	DistrictID   int             `json:"district_id"`
	WardCode     string          `json:"ward_code"`
}

// ApplyDefaults sets fallback values after decode.
func (u *User) ApplyDefaults() {
	if u.Addresses == nil {
		u.Addresses = []ShippingAddress{}
	}
	if u.IsActive == nil {
		v := true
		u.IsActive = &v
	}
	if u.Role == "" {
		u.Role = RoleCustomer
	}
}

// ApplyDefaults sets fallback values after decode.
func (n *News) ApplyDefaults() {
	if n.Published == nil {
		v := false
		n.Published = &v
	}
}
