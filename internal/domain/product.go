package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryClothing    Category = "Clothing"
	CategoryShoes       Category = "Shoes"
	CategoryAccessories Category = "Accessories"
	CategoryElectronics Category = "Electronics"
	CategoryBooks       Category = "Books"
	CategoryHome        Category = "Home"
	CategorySports      Category = "Sports"
	CategoryToys        Category = "Toys"
	CategoryBeauty      Category = "Beauty"
	CategoryOther       Category = "Other"
)

var Categories = []Category{
	CategoryClothing,
	CategoryShoes,
	CategoryAccessories,
	CategoryElectronics,
	CategoryBooks,
	CategoryHome,
	CategorySports,
	CategoryToys,
	CategoryBeauty,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches case-insensitively and returns the canonical spelling.
func ParseCategory(raw string) (Category, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, known := range Categories {
		if strings.EqualFold(trimmed, string(known)) {
			return known, true
		}
	}
	return "", false
}

// Prices are stored as decimal(10,2): at most two fractional digits and
// strictly below PriceCeiling.
const PriceScale = 2

var PriceCeiling = decimal.New(1, 8)

// PriceStorable reports whether p round-trips unchanged through the price column.
func PriceStorable(p decimal.Decimal) bool {
	return p.LessThan(PriceCeiling) && p.Equal(p.Truncate(PriceScale))
}

type Product struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Title        string          `gorm:"size:255;not null;index" json:"title"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	Image        string          `gorm:"size:1024;not null" json:"image"`
	Category     Category        `gorm:"size:32;not null;index:idx_products_category_created" json:"category"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null;index" json:"price"`
	Availability bool            `gorm:"not null" json:"availability"`
	CreatedAt    time.Time       `gorm:"index:idx_products_category_created" json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}
