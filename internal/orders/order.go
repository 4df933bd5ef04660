package orders

import (
	"time"

	"github.com/nuvemflow/orderdesk-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order is the normalized, classified view of one upstream order. It is rebuilt
// on every upstream fetch and never persisted.
type Order struct {
	ID             string               `json:"id"`
	Number         string               `json:"number,omitempty"`
	CustomerName   string               `json:"customerName"`
	CustomerEmail  string               `json:"customerEmail,omitempty"`
	OrderDate      time.Time            `json:"orderDate"`
	ShippingStatus enums.ShippingStatus `json:"shippingStatus"`
	Status         string               `json:"status"`
	PaymentStatus  string               `json:"paymentStatus,omitempty"`
	Total          decimal.NullDecimal  `json:"total"`
	Currency       string               `json:"currency,omitempty"`
	DaysInUnpacked int                  `json:"daysInUnpacked"`
	IsDelayed      bool                 `json:"isDelayed"`
	IsOverdue      bool                 `json:"isOverdue"`
	OverdueDays    int                  `json:"overdueDays"`
}

// OrderView is an Order joined with its annotation.
type OrderView struct {
	Order
	Note      *string `json:"note"`
	Attention bool    `json:"attention"`
}

// Page is one cached page of normalized orders.
type Page struct {
	Orders     []Order `json:"orders"`
	TotalCount int     `json:"totalCount"`
	TotalPages int     `json:"totalPages"`
	// Degraded marks the empty page substituted for a failed upstream call.
	Degraded bool `json:"-"`
}

// ListResult is the filtered, sorted page returned to the API.
type ListResult struct {
	Orders      []OrderView `json:"orders"`
	Count       int         `json:"count"`
	TotalCount  int         `json:"totalCount"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
	PerPage     int         `json:"perPage"`
}
