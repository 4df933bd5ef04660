package orders

import (
	"testing"
	"time"

	"github.com/nuvemflow/orderdesk-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyUnpacked(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		orderDate time.Time
		want      Classification
	}{
		{
			name:      "four calendar days without a weekend",
			now:       friday,
			orderDate: monday,
			want:      Classification{DaysInUnpacked: 4, IsDelayed: true, IsOverdue: true, OverdueDays: 3},
		},
		{
			name:      "three business days",
			now:       friday,
			orderDate: friday.AddDate(0, 0, -2),
			want:      Classification{DaysInUnpacked: 2, IsOverdue: true, OverdueDays: 1},
		},
		{
			name:      "two business days is within sla",
			now:       friday,
			orderDate: thursday,
			want:      Classification{DaysInUnpacked: 1},
		},
		{
			name:      "weekend does not count",
			now:       friday.AddDate(0, 0, 3),
			orderDate: friday,
			want:      Classification{DaysInUnpacked: 3},
		},
		{
			name:      "partial day floors",
			now:       friday.Add(-time.Hour),
			orderDate: tuesday,
			want:      Classification{DaysInUnpacked: 2, IsOverdue: true, OverdueDays: 2},
		},
		{
			name:      "future order date",
			now:       monday,
			orderDate: friday,
			want:      Classification{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(fixedClock(tt.now), time.UTC)
			assert.Equal(t, tt.want, c.Classify(enums.ShippingStatusUnpacked, tt.orderDate))
		})
	}
}

func TestClassifyNonUnpackedIsAlwaysZero(t *testing.T) {
	c := NewClassifier(fixedClock(friday.AddDate(0, 1, 0)), time.UTC)
	for _, status := range []enums.ShippingStatus{enums.ShippingStatusUnshipped, enums.ShippingStatusShipped, "packed", ""} {
		for _, date := range []time.Time{monday, monday.AddDate(-1, 0, 0), {}} {
			assert.Equal(t, Classification{}, c.Classify(status, date), "status=%q date=%s", status, date)
		}
	}
}

func TestClassifyMissingOrderDate(t *testing.T) {
	c := NewClassifier(fixedClock(friday), time.UTC)
	assert.Equal(t, Classification{}, c.Classify(enums.ShippingStatusUnpacked, time.Time{}))
}

func TestNormalizeBuildsClassifiedOrder(t *testing.T) {
	c := NewClassifier(fixedClock(friday), time.UTC)
	order := c.Normalize(RawOrder{
		ID:             "1001",
		Number:         "501",
		CreatedAt:      monday,
		Status:         "open",
		ShippingStatus: "unpacked",
		PaymentStatus:  "paid",
		Total:          decimal.NewNullDecimal(decimal.RequireFromString("149.90")),
		Currency:       "BRL",
		Customer:       &RawCustomer{FirstName: "Ana", LastName: "Souza", Email: "ana@example.com"},
	})

	require.Equal(t, "1001", order.ID)
	assert.Equal(t, "501", order.Number)
	assert.Equal(t, "Ana Souza", order.CustomerName)
	assert.Equal(t, "ana@example.com", order.CustomerEmail)
	assert.Equal(t, enums.ShippingStatusUnpacked, order.ShippingStatus)
	assert.Equal(t, "ready_to_pack", order.Status)
	assert.Equal(t, "149.9", order.Total.Decimal.String())
	assert.True(t, order.IsOverdue)
	assert.True(t, order.IsDelayed)
	assert.Equal(t, 4, order.DaysInUnpacked)
	assert.Equal(t, 3, order.OverdueDays)
}

func TestNormalizeFulfilledIsNeverLate(t *testing.T) {
	c := NewClassifier(fixedClock(friday.AddDate(0, 2, 0)), time.UTC)
	order := c.Normalize(RawOrder{ID: "7", CreatedAt: monday, Status: "closed", ShippingStatus: "fulfilled"})

	assert.Equal(t, enums.ShippingStatusShipped, order.ShippingStatus)
	assert.False(t, order.IsOverdue)
	assert.False(t, order.IsDelayed)
	assert.Zero(t, order.DaysInUnpacked)
	assert.Zero(t, order.OverdueDays)
	assert.Equal(t, "Unknown Customer", order.CustomerName)
}

func TestReclassifyUsesCurrentClock(t *testing.T) {
	clock := &fakeClock{now: tuesday}
	c := NewClassifier(clock.Now, time.UTC)
	order := c.Normalize(RawOrder{ID: "1", CreatedAt: monday, ShippingStatus: "unpacked"})
	require.False(t, order.IsOverdue)

	clock.Advance(48 * time.Hour)
	order = c.Reclassify(order)
	assert.True(t, order.IsOverdue)
	assert.Equal(t, 2, order.OverdueDays)
}
