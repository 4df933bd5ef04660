package models

import "time"

// OrderNote is the operator annotation attached to an upstream order id.
type OrderNote struct {
	OrderID   string    `gorm:"column:order_id;type:text;primaryKey"`
	Note      *string   `gorm:"column:note;type:text"`
	Attention bool      `gorm:"column:attention;not null;default:false;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (OrderNote) TableName() string { return "order_notes" }
