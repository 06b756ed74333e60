package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UnitType is the pricing denomination of a product.
type UnitType string

const (
	UnitPiece UnitType = "piece"
	UnitDozen UnitType = "dozen"
	UnitKilo  UnitType = "kilo"
)

var unitLabels = map[UnitType]string{
	UnitPiece: "حبة",
	UnitDozen: "دزينة",
	UnitKilo:  "كيلو",
}

var (
	halfStep = decimal.NewFromFloat(0.5)
	oneStep  = decimal.NewFromInt(1)
)

// ParseUnitType accepts either the code ("kilo") or the Arabic label ("كيلو").
func ParseUnitType(s string) (UnitType, bool) {
	s = strings.TrimSpace(s)
	if _, ok := unitLabels[UnitType(strings.ToLower(s))]; ok {
		return UnitType(strings.ToLower(s)), true
	}
	for u, label := range unitLabels {
		if label == s {
			return u, true
		}
	}
	return "", false
}

// Valid reports whether u is one of the known unit types.
func (u UnitType) Valid() bool {
	_, ok := unitLabels[u]
	return ok
}

// Label returns the Arabic display label; unknown units fall back to the piece label.
func (u UnitType) Label() string {
	if l, ok := unitLabels[u]; ok {
		return l
	}
	return unitLabels[UnitPiece]
}

// Step is the quantity increment used by cart controls.
func (u UnitType) Step() decimal.Decimal {
	if u == UnitKilo {
		return halfStep
	}
	return oneStep
}

// Category groups products on the menu.
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
}

// Product is a menu item. Price is in minor currency units.
type Product struct {
	ID          int64    `json:"id"`
	CategoryID  *int64   `json:"categoryId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	UnitType    UnitType `json:"unitType"`
	Image       string   `json:"image"`
	IsPopular   bool     `json:"isPopular"`
}

// DeliveryLocation is a delivery zone with a flat fee in minor units.
type DeliveryLocation struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Image string `json:"image"`
}

// Offer is a promotional bundle shown on the offers page.
type Offer struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	OriginalPrice   int64  `json:"originalPrice"`
	DiscountedPrice int64  `json:"discountedPrice"`
	Image           string `json:"image"`
}

// SyncedImage marks a remote CDN file as already imported.
type SyncedImage struct {
	ID       int64     `json:"id"`
	FileID   string    `json:"fileId"`
	FileName string    `json:"fileName"`
	URL      string    `json:"url"`
	SyncedAt time.Time `json:"syncedAt"`
}

// Profile is the public store info shown on the contact page.
type Profile struct {
	DisplayName   string `json:"displayName"`
	Tagline       string `json:"tagline"`
	WhatsAppPhone string `json:"whatsappPhone"`
	Address       string `json:"address"`
	AvatarURL     string `json:"avatarUrl"`
}

// ProductFilter narrows a product listing. Zero value lists everything.
type ProductFilter struct {
	CategoryID *int64
	IsPopular  bool
}

// Match reports whether p passes the filter.
func (f ProductFilter) Match(p Product) bool {
	if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
		return false
	}
	if f.IsPopular && !p.IsPopular {
		return false
	}
	return true
}

// ProductPatch carries the admin price-edit fields; nil fields are left unchanged.
type ProductPatch struct {
	Price    *int64
	UnitType *UnitType
	Name     *string
}

// Apply returns p with the patch applied.
func (pp ProductPatch) Apply(p Product) Product {
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.UnitType != nil && pp.UnitType.Valid() {
		p.UnitType = *pp.UnitType
	}
	if pp.Name != nil && strings.TrimSpace(*pp.Name) != "" {
		p.Name = *pp.Name
	}
	return p
}
