package model

import (
	"time"
)

type ProductBadge string

const (
	BadgeHotSell  ProductBadge = "Hot Sell"
	BadgeTrending ProductBadge = "Trending"
	BadgeLatest   ProductBadge = "Latest"
)

// Product is a sellable website template. The catalog is seeded at boot and
// read-only afterwards; prices are whole INR.
type Product struct {
	ID           string       `gorm:"primarykey" json:"id"`
	Slug         string       `gorm:"uniqueIndex;not null" json:"slug"`
	Title        string       `gorm:"not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description"`
	Category     string       `gorm:"index" json:"category"`
	CurrentPrice int64        `gorm:"not null" json:"current_price"`
	// OriginalPrice is the struck-through price; nil means no displayed discount.
	OriginalPrice *int64 `json:"original_price,omitempty"`
	// StockCount: nil = unlimited, 0 = sold out, >0 = limited.
	StockCount   *int         `json:"stock_count,omitempty"`
	ThumbnailURL string       `json:"thumbnail_url"`
	VideoURL     string       `json:"video_url,omitempty"`
	DemoURL      string       `json:"demo_url,omitempty"`
	// ArchiveKey is the S3 object key of the deliverable template archive.
	ArchiveKey string       `json:"-"`
	Badge      ProductBadge `json:"badge,omitempty"`
	ComingSoon bool         `json:"coming_soon,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// SoldOut reports whether the product has an exhausted limited stock.
func (p *Product) SoldOut() bool {
	return p.StockCount != nil && *p.StockCount == 0
}

// StoreDiscount is the displayed price cut relative to the original price.
func (p *Product) StoreDiscount() int64 {
	if p.OriginalPrice == nil {
		return 0
	}
	return *p.OriginalPrice - p.CurrentPrice
}
