// Package catalogtest holds the behaviour every catalog.Store must share.
// Store packages call Run from their own tests.
package catalogtest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"mataam/internal/catalog"
)

// Run exercises s against the Store contract. newStore must return an empty
// store (no rows, default profile) each time it is called.
func Run(t *testing.T, newStore func(t *testing.T) catalog.Store) {
	t.Run("Seed", func(t *testing.T) { testSeed(t, newStore(t)) })
	t.Run("ProductCRUD", func(t *testing.T) { testProductCRUD(t, newStore(t)) })
	t.Run("ProductFilter", func(t *testing.T) { testProductFilter(t, newStore(t)) })
	t.Run("DeleteCategoryDetachesProducts", func(t *testing.T) { testDeleteCategory(t, newStore(t)) })
	t.Run("Locations", func(t *testing.T) { testLocations(t, newStore(t)) })
	t.Run("Offers", func(t *testing.T) { testOffers(t, newStore(t)) })
	t.Run("Profile", func(t *testing.T) { testProfile(t, newStore(t)) })
	t.Run("ClaimImageIsAtomic", func(t *testing.T) { testClaimImage(t, newStore(t)) })
}

func testSeed(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	if err := catalog.Seed(ctx, s); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cats, _ := s.Categories(ctx)
	products, _ := s.Products(ctx, catalog.ProductFilter{})
	locs, _ := s.DeliveryLocations(ctx)
	offers, _ := s.Offers(ctx)
	if len(cats) != 3 || len(products) == 0 || len(locs) == 0 || len(offers) == 0 {
		t.Fatalf("seed produced %d cats, %d products, %d locations, %d offers", len(cats), len(products), len(locs), len(offers))
	}
	for _, p := range products {
		if p.CategoryID == nil {
			t.Fatalf("seeded product without category: %+v", p)
		}
	}

	// A second seed is a no-op.
	if err := catalog.Seed(ctx, s); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	again, _ := s.Products(ctx, catalog.ProductFilter{})
	if len(again) != len(products) {
		t.Fatalf("reseed duplicated products")
	}
}

func testProductCRUD(t *testing.T, s catalog.Store) {
	ctx := context.Background()

	p, err := s.CreateProduct(ctx, catalog.Product{Name: "كبة", Price: 500, Image: "https://cdn/k.png"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID <= 0 || p.UnitType != catalog.UnitPiece {
		t.Fatalf("created %+v", p)
	}
	if _, err := s.CreateProduct(ctx, catalog.Product{Name: "x", Price: -1}); !errors.Is(err, catalog.ErrInvalidInput) {
		t.Fatalf("negative price err = %v", err)
	}

	got, err := s.Product(ctx, p.ID)
	if err != nil || got != p {
		t.Fatalf("get: %+v %v", got, err)
	}
	byImg, err := s.ProductByImage(ctx, "https://cdn/k.png")
	if err != nil || byImg.ID != p.ID {
		t.Fatalf("by image: %+v %v", byImg, err)
	}
	if _, err := s.ProductByImage(ctx, "https://cdn/none.png"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("unknown image err = %v", err)
	}

	price := int64(700)
	unit := catalog.UnitKilo
	patched, err := s.PatchProduct(ctx, p.ID, catalog.ProductPatch{Price: &price, UnitType: &unit})
	if err != nil || patched.Price != 700 || patched.UnitType != catalog.UnitKilo || patched.Name != "كبة" {
		t.Fatalf("patch: %+v %v", patched, err)
	}
	// Re-applying identical values still finds the row.
	if again, err := s.PatchProduct(ctx, p.ID, catalog.ProductPatch{Price: &price}); err != nil || again.Price != 700 {
		t.Fatalf("unchanged patch: %+v %v", again, err)
	}
	neg := int64(-1)
	if _, err := s.PatchProduct(ctx, p.ID, catalog.ProductPatch{Price: &neg}); !errors.Is(err, catalog.ErrInvalidInput) {
		t.Fatalf("negative patch err = %v", err)
	}
	if _, err := s.PatchProduct(ctx, p.ID+1000, catalog.ProductPatch{Price: &price}); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("unknown patch err = %v", err)
	}

	if err := s.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteProduct(ctx, p.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	if _, err := s.Product(ctx, p.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("get deleted err = %v", err)
	}
}

func testProductFilter(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	c, err := s.CreateCategory(ctx, catalog.Category{Name: "حلويات", Slug: "desserts"})
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	_, _ = s.CreateProduct(ctx, catalog.Product{Name: "كنافة", Price: 800, CategoryID: &c.ID, IsPopular: true})
	_, _ = s.CreateProduct(ctx, catalog.Product{Name: "هريسة", Price: 400, CategoryID: &c.ID})
	_, _ = s.CreateProduct(ctx, catalog.Product{Name: "منسف", Price: 2500, IsPopular: true})

	tests := []struct {
		name string
		f    catalog.ProductFilter
		want int
	}{
		{"all", catalog.ProductFilter{}, 3},
		{"category", catalog.ProductFilter{CategoryID: &c.ID}, 2},
		{"popular", catalog.ProductFilter{IsPopular: true}, 2},
		{"both", catalog.ProductFilter{CategoryID: &c.ID, IsPopular: true}, 1},
	}
	for _, tt := range tests {
		got, err := s.Products(ctx, tt.f)
		if err != nil || len(got) != tt.want {
			t.Errorf("%s: %d products, err %v; want %d", tt.name, len(got), err, tt.want)
		}
	}
}

func testDeleteCategory(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	c, err := s.CreateCategory(ctx, catalog.Category{Name: "مقبلات", Slug: "appetizers"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateCategory(ctx, catalog.Category{Name: "dup", Slug: "appetizers"}); !errors.Is(err, catalog.ErrInvalidInput) {
		t.Fatalf("duplicate slug err = %v", err)
	}
	p, _ := s.CreateProduct(ctx, catalog.Product{Name: "x", Price: 1, CategoryID: &c.ID})

	if err := s.DeleteCategory(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := s.Product(ctx, p.ID)
	if err != nil || got.CategoryID != nil {
		t.Fatalf("product still categorized: %+v %v", got, err)
	}
	if err := s.DeleteCategory(ctx, c.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	if _, err := s.Category(ctx, c.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("get deleted err = %v", err)
	}
}

func testLocations(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	l, err := s.CreateDeliveryLocation(ctx, catalog.DeliveryLocation{Name: "خلدا", Price: 250})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateDeliveryLocation(ctx, catalog.DeliveryLocation{Name: "x", Price: -1}); !errors.Is(err, catalog.ErrInvalidInput) {
		t.Fatalf("negative price err = %v", err)
	}
	if err := s.DeleteDeliveryLocation(ctx, l.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteDeliveryLocation(ctx, l.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	locs, _ := s.DeliveryLocations(ctx)
	if len(locs) != 0 {
		t.Fatalf("locations left: %+v", locs)
	}
}

func testOffers(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	o, err := s.CreateOffer(ctx, catalog.Offer{Title: "عرض الجمعة", OriginalPrice: 1000, DiscountedPrice: 800})
	if err != nil || o.ID <= 0 {
		t.Fatalf("create: %+v %v", o, err)
	}
	offers, _ := s.Offers(ctx)
	if len(offers) != 1 || offers[0] != o {
		t.Fatalf("offers = %+v", offers)
	}
}

func testProfile(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	p, err := s.Profile(ctx)
	if err != nil || p.DisplayName != catalog.DefaultProfile.DisplayName {
		t.Fatalf("default profile = %+v %v", p, err)
	}
	p.WhatsAppPhone = "962700000000"
	if err := s.SaveProfile(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, _ := s.Profile(ctx)
	if got != p {
		t.Fatalf("saved profile = %+v", got)
	}
}

func testClaimImage(t *testing.T, s catalog.Store) {
	ctx := context.Background()

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.ClaimImage(ctx, catalog.SyncedImage{FileID: "same", FileName: "a.png", URL: "u"})
			if err != nil {
				t.Errorf("claim: %v", err)
				return
			}
			if ok {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if claimed != 1 {
		t.Fatalf("claimed %d times, want exactly once", claimed)
	}

	// A second pass over the same listing adds nothing.
	if ok, err := s.ClaimImage(ctx, catalog.SyncedImage{FileID: "same", FileName: "a.png", URL: "u"}); ok || err != nil {
		t.Fatalf("reclaim = %v, %v", ok, err)
	}
	if ok, err := s.ClaimImage(ctx, catalog.SyncedImage{FileID: "other", FileName: "b.png", URL: "v"}); !ok || err != nil {
		t.Fatalf("new claim = %v, %v", ok, err)
	}
	ledger, _ := s.SyncedImages(ctx)
	if len(ledger) != 2 || ledger[0].SyncedAt.IsZero() {
		t.Fatalf("ledger = %+v", ledger)
	}
}
