package orders

import (
	"time"

	"github.com/nuvemflow/orderdesk-backend/pkg/enums"
)

const (
	// OverdueBusinessDays is the business-day SLA for packing an order.
	OverdueBusinessDays = 2
	// DelayedCalendarDays is the looser calendar-day threshold surfaced as "delayed".
	DelayedCalendarDays = 3
)

// Classification holds the SLA flags derived for one order.
type Classification struct {
	DaysInUnpacked int
	IsDelayed      bool
	IsOverdue      bool
	OverdueDays    int
}

// Classifier computes SLA flags relative to its clock.
type Classifier struct {
	now func() time.Time
	loc *time.Location
}

// NewClassifier builds a classifier. A nil clock uses time.Now and a nil
// location uses time.Local.
func NewClassifier(now func() time.Time, loc *time.Location) *Classifier {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Classifier{now: now, loc: loc}
}

// Now returns the classifier clock in its location.
func (c *Classifier) Now() time.Time {
	return c.now().In(c.loc)
}

// Classify evaluates both SLA policies. Anything but an unpacked order, or one
// without an order date, yields the zero Classification.
func (c *Classifier) Classify(status enums.ShippingStatus, orderDate time.Time) Classification {
	if status != enums.ShippingStatusUnpacked || orderDate.IsZero() {
		return Classification{}
	}
	now := c.Now()

	days := 0
	if elapsed := now.Sub(orderDate); elapsed > 0 {
		days = int(elapsed / (24 * time.Hour))
	}

	business := BusinessDaysBetween(orderDate.In(c.loc), now)
	overdueDays := business - OverdueBusinessDays
	if overdueDays < 0 {
		overdueDays = 0
	}

	return Classification{
		DaysInUnpacked: days,
		IsDelayed:      days > DelayedCalendarDays,
		IsOverdue:      business > OverdueBusinessDays,
		OverdueDays:    overdueDays,
	}
}

// Normalize builds a classified Order from a raw upstream record.
func (c *Classifier) Normalize(raw RawOrder) Order {
	status := NormalizeStatus(raw)
	order := Order{
		ID:             raw.ID,
		Number:         raw.Number,
		CustomerName:   ExtractCustomerName(raw),
		OrderDate:      raw.CreatedAt,
		ShippingStatus: status,
		Status:         LegacyStatus(raw),
		PaymentStatus:  raw.PaymentStatus,
		Total:          raw.Total,
		Currency:       raw.Currency,
	}
	if raw.Customer != nil {
		order.CustomerEmail = raw.Customer.Email
	}
	c.apply(&order)
	return order
}

// Reclassify refreshes the SLA flags of an order against the current clock.
func (c *Classifier) Reclassify(order Order) Order {
	c.apply(&order)
	return order
}

func (c *Classifier) apply(order *Order) {
	cls := c.Classify(order.ShippingStatus, order.OrderDate)
	order.DaysInUnpacked = cls.DaysInUnpacked
	order.IsDelayed = cls.IsDelayed
	order.IsOverdue = cls.IsOverdue
	order.OverdueDays = cls.OverdueDays
}
