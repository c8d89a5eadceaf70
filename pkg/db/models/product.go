package models

import "time"

// Product is an add-on module an organization may attach to its subscription,
// priced independently of the base plan. PriceAI is the surcharge applied when
// the AI variant of the product is enabled; nil means no AI variant exists.
type Product struct {
	ID            string    `gorm:"column:id;primaryKey"`
	DisplayName   string    `gorm:"column:display_name;not null"`
	PriceStandard int64     `gorm:"column:price_standard;not null"`
	PriceAI       *int64    `gorm:"column:price_ai"`
	Active        bool      `gorm:"column:active;not null;default:true"`
	SortOrder     int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
