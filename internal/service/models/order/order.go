package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrAlreadyCancelled    = errors.New("order is already cancelled")
	ErrCancelWindowExpired = errors.New("cancellation window expired")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

// Order represents one customer purchase of the product.
type Order struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     int             `json:"orderNumber"`
	CustomerName    string          `json:"customerName"`
	CustomerSurname string          `json:"customerSurname"`
	PackageSize     PackageSize     `json:"packageSize"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Status          Status          `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	PIN             string          `json:"-"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// CreateInput carries the sanitized fields of a new order.
type CreateInput struct {
	CustomerName    string
	CustomerSurname string
	PackageSize     PackageSize
	Quantity        int
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
	Notes           string
	PIN             string
}

// Update carries a partial admin edit; nil fields are left untouched.
type Update struct {
	CustomerName    *string
	CustomerSurname *string
	PackageSize     *PackageSize
	Quantity        *int
	UnitPrice       *decimal.Decimal
	TotalPrice      *decimal.Decimal
	Status          *Status
	Notes           *string
}

// Event names an order lifecycle change worth notifying about.
type Event string

const (
	EventOrderCreated   Event = "order.created"
	EventOrderCancelled Event = "order.cancelled"
)
