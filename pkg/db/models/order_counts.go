package models

import "time"

// OrderCountsRowID identifies the single aggregate row.
const OrderCountsRowID = "summary"

// OrderCounts holds the last computed unshipped/shipped totals.
type OrderCounts struct {
	ID        string    `gorm:"column:id;type:text;primaryKey"`
	Unshipped int64     `gorm:"column:unshipped;not null;default:0"`
	Shipped   int64     `gorm:"column:shipped;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (OrderCounts) TableName() string { return "order_counts" }
