package orders

import (
	"strings"
	"time"

	"github.com/nuvemflow/orderdesk-backend/pkg/nuvemshop"
	"github.com/shopspring/decimal"
)

// RawOrder is the loosely shaped upstream record consumed by the normalizer.
// Any field may be missing; the zero value of each means "absent".
type RawOrder struct {
	ID             string
	Number         string
	CreatedAt      time.Time
	Status         string
	ShippingStatus string
	NextAction     string
	PaymentStatus  string
	Total          decimal.NullDecimal
	Currency       string
	Customer       *RawCustomer
}

type RawCustomer struct {
	Name      string
	FirstName string
	LastName  string
	Email     string
}

// FromNuvemshop adapts an upstream payload into a RawOrder.
func FromNuvemshop(o nuvemshop.Order) RawOrder {
	raw := RawOrder{
		ID:             o.ID.String(),
		Number:         o.Number.String(),
		CreatedAt:      o.CreatedAt.Time,
		Status:         strings.TrimSpace(o.Status),
		ShippingStatus: strings.TrimSpace(o.ShippingStatus),
		NextAction:     strings.TrimSpace(o.NextAction),
		PaymentStatus:  strings.TrimSpace(o.PaymentStatus),
		Total:          o.Total.NullDecimal,
		Currency:       o.Currency,
	}
	if o.Customer != nil {
		raw.Customer = &RawCustomer{
			Name:      o.Customer.Name,
			FirstName: o.Customer.FirstName,
			LastName:  o.Customer.LastName,
			Email:     o.Customer.Email,
		}
	}
	return raw
}
