package catalog

import (
	"context"
	"fmt"
)

// DefaultProfile is used until an admin saves a profile.
var DefaultProfile = Profile{
	DisplayName: "مطعم البيت",
	Tagline:     "مقبلات وأطباق بيتية طازجة كل يوم",
	Address:     "عمّان",
}

var seedCategories = []Category{
	{Name: "مقبلات", Slug: "appetizers", Image: "/images/hero1.png"},
	{Name: "أطباق رئيسية", Slug: "main-dishes", Image: "/images/hero2.png"},
	{Name: "حلويات", Slug: "desserts", Image: "/images/hero1.png"},
}

var seedProducts = []struct {
	slug string
	p    Product
}{
	{"appetizers", Product{Name: "كبة مقلية", Description: "كبة محشوة باللحم والصنوبر مقلية ومقرمشة", Price: 500, Image: "/images/hero2.png", IsPopular: true}},
	{"appetizers", Product{Name: "سمبوسة", Description: "سمبوسة هشة بحشوة الجبن أو اللحم", Price: 300, Image: "/images/hero1.png", IsPopular: true}},
	{"appetizers", Product{Name: "ورق عنب", Description: "ورق عنب بخلطة الأرز والليمون المميزة", Price: 600, UnitType: UnitKilo, Image: "/images/hero2.png", IsPopular: true}},
	{"main-dishes", Product{Name: "كبة مشوية", Description: "كبة مشوية على الفحم بنكهة الشواء الأصيلة", Price: 1200, Image: "/images/hero1.png", IsPopular: true}},
	{"main-dishes", Product{Name: "منسف أردني", Description: "منسف باللحم البلدي والجميد الكركي", Price: 2500, Image: "/images/hero2.png"}},
	{"desserts", Product{Name: "كنافة نابلسية", Description: "كنافة بالجبنة الساخنة والقطر", Price: 800, UnitType: UnitKilo, Image: "/images/hero1.png", IsPopular: true}},
}

var seedLocations = []DeliveryLocation{
	{Name: "عمّان - الجبيهة", Price: 200, Image: "/images/hero1.png"},
	{Name: "عمّان - خلدا", Price: 250, Image: "/images/hero2.png"},
	{Name: "الزرقاء", Price: 400, Image: "/images/hero1.png"},
}

var seedOffers = []Offer{
	{Title: "عرض العائلة", Description: "احصل على كيلو كبة مشوية + نصف كيلو ورق عنب بسعر مميز", OriginalPrice: 3000, DiscountedPrice: 2500, Image: "/images/hero2.png"},
	{Title: "عرض الجمعة", Description: "خصم 20% على جميع المقبلات", OriginalPrice: 1000, DiscountedPrice: 800, Image: "/images/hero1.png"},
}

// Seed fills empty category, product, delivery location and offer tables with the starter menu.
// Tables that already hold rows are left alone.
func Seed(ctx context.Context, s Store) error {
	cats, err := s.Categories(ctx)
	if err != nil {
		return fmt.Errorf("seed: list categories: %w", err)
	}
	if len(cats) == 0 {
		for _, c := range seedCategories {
			created, err := s.CreateCategory(ctx, c)
			if err != nil {
				return fmt.Errorf("seed: category %s: %w", c.Slug, err)
			}
			cats = append(cats, created)
		}
	}
	bySlug := make(map[string]int64, len(cats))
	for _, c := range cats {
		bySlug[c.Slug] = c.ID
	}

	products, err := s.Products(ctx, ProductFilter{})
	if err != nil {
		return fmt.Errorf("seed: list products: %w", err)
	}
	if len(products) == 0 && len(bySlug) > 0 {
		for _, sp := range seedProducts {
			p := sp.p
			if id, ok := bySlug[sp.slug]; ok {
				p.CategoryID = &id
			}
			if _, err := s.CreateProduct(ctx, p); err != nil {
				return fmt.Errorf("seed: product %s: %w", p.Name, err)
			}
		}
	}

	locs, err := s.DeliveryLocations(ctx)
	if err != nil {
		return fmt.Errorf("seed: list delivery locations: %w", err)
	}
	if len(locs) == 0 {
		for _, l := range seedLocations {
			if _, err := s.CreateDeliveryLocation(ctx, l); err != nil {
				return fmt.Errorf("seed: delivery location %s: %w", l.Name, err)
			}
		}
	}

	offers, err := s.Offers(ctx)
	if err != nil {
		return fmt.Errorf("seed: list offers: %w", err)
	}
	if len(offers) == 0 {
		for _, o := range seedOffers {
			if _, err := s.CreateOffer(ctx, o); err != nil {
				return fmt.Errorf("seed: offer %s: %w", o.Title, err)
			}
		}
	}
	return nil
}
