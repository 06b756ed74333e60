package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Store is the catalog persistence contract. memstore and sqlstore both
// implement it; one of them is chosen at process start.
type Store interface {
	Categories(ctx context.Context) ([]Category, error)
	Category(ctx context.Context, id int64) (Category, error)
	CreateCategory(ctx context.Context, c Category) (Category, error)
	// DeleteCategory removes the category and leaves its products uncategorized.
	DeleteCategory(ctx context.Context, id int64) error

	Products(ctx context.Context, f ProductFilter) ([]Product, error)
	Product(ctx context.Context, id int64) (Product, error)
	ProductByImage(ctx context.Context, url string) (Product, error)
	CreateProduct(ctx context.Context, p Product) (Product, error)
	PatchProduct(ctx context.Context, id int64, patch ProductPatch) (Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	DeliveryLocations(ctx context.Context) ([]DeliveryLocation, error)
	CreateDeliveryLocation(ctx context.Context, l DeliveryLocation) (DeliveryLocation, error)
	DeleteDeliveryLocation(ctx context.Context, id int64) error

	Offers(ctx context.Context) ([]Offer, error)
	CreateOffer(ctx context.Context, o Offer) (Offer, error)

	Profile(ctx context.Context) (Profile, error)
	SaveProfile(ctx context.Context, p Profile) error

	SyncedImages(ctx context.Context) ([]SyncedImage, error)
	// ClaimImage inserts the ledger row unless one with the same FileID
	// exists. It reports whether this call created the row.
	ClaimImage(ctx context.Context, img SyncedImage) (bool, error)

	Close() error
}

// ValidateProduct normalizes and checks a product before it is stored.
func ValidateProduct(p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || p.Price < 0 {
		return Product{}, ErrInvalidInput
	}
	if p.UnitType == "" {
		p.UnitType = UnitPiece
	}
	if !p.UnitType.Valid() {
		return Product{}, fmt.Errorf("unit type %q: %w", p.UnitType, ErrInvalidInput)
	}
	return p, nil
}

// Slugify lowercases s and joins its letter/digit runs with dashes.
// Non-Latin letters are kept as-is.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
