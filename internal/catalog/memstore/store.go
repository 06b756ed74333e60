// Package memstore is the in-memory catalog used in dev mode and whenever the
// database is unreachable at startup. Nothing survives a restart.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mataam/internal/catalog"
)

type Store struct {
	mu sync.Mutex

	categories []catalog.Category
	products   []catalog.Product
	locations  []catalog.DeliveryLocation
	offers     []catalog.Offer
	synced     []catalog.SyncedImage
	syncedByID map[string]struct{}
	profile    catalog.Profile

	nextID map[string]int64
}

var _ catalog.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		syncedByID: make(map[string]struct{}),
		profile:    catalog.DefaultProfile,
		nextID:     make(map[string]int64),
	}
}

// id hands out per-table serial ids starting at 1. Callers hold s.mu.
func (s *Store) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

func (s *Store) Categories(ctx context.Context) ([]catalog.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]catalog.Category, len(s.categories))
	copy(cp, s.categories)
	return cp, nil
}

func (s *Store) Category(ctx context.Context, id int64) (catalog.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return catalog.Category{}, catalog.ErrNotFound
}

func (s *Store) CreateCategory(ctx context.Context, c catalog.Category) (catalog.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.categories {
		if existing.Slug == c.Slug {
			return catalog.Category{}, fmt.Errorf("slug %q already used: %w", c.Slug, catalog.ErrInvalidInput)
		}
	}
	c.ID = s.id("categories")
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, c := range s.categories {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return catalog.ErrNotFound
	}
	s.categories = append(s.categories[:idx], s.categories[idx+1:]...)
	for i := range s.products {
		if s.products[i].CategoryID != nil && *s.products[i].CategoryID == id {
			s.products[i].CategoryID = nil
		}
	}
	return nil
}

func (s *Store) Products(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) Product(ctx context.Context, id int64) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (s *Store) ProductByImage(ctx context.Context, url string) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Image == url {
			return p, nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (s *Store) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	p, err := catalog.ValidateProduct(p)
	if err != nil {
		return catalog.Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id("products")
	s.products = append(s.products, p)
	return p, nil
}

func (s *Store) PatchProduct(ctx context.Context, id int64, patch catalog.ProductPatch) (catalog.Product, error) {
	if patch.Price != nil && *patch.Price < 0 {
		return catalog.Product{}, catalog.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			s.products[i] = patch.Apply(p)
			return s.products[i], nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (s *Store) DeliveryLocations(ctx context.Context) ([]catalog.DeliveryLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]catalog.DeliveryLocation, len(s.locations))
	copy(cp, s.locations)
	return cp, nil
}

func (s *Store) CreateDeliveryLocation(ctx context.Context, l catalog.DeliveryLocation) (catalog.DeliveryLocation, error) {
	if l.Price < 0 {
		return catalog.DeliveryLocation{}, catalog.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.id("delivery_locations")
	s.locations = append(s.locations, l)
	return l, nil
}

func (s *Store) DeleteDeliveryLocation(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.locations {
		if l.ID == id {
			s.locations = append(s.locations[:i], s.locations[i+1:]...)
			return nil
		}
	}
	return catalog.ErrNotFound
}

func (s *Store) Offers(ctx context.Context) ([]catalog.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]catalog.Offer, len(s.offers))
	copy(cp, s.offers)
	return cp, nil
}

func (s *Store) CreateOffer(ctx context.Context, o catalog.Offer) (catalog.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.id("offers")
	s.offers = append(s.offers, o)
	return o, nil
}

func (s *Store) Profile(ctx context.Context) (catalog.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, nil
}

func (s *Store) SaveProfile(ctx context.Context, p catalog.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	return nil
}

func (s *Store) SyncedImages(ctx context.Context) ([]catalog.SyncedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]catalog.SyncedImage, len(s.synced))
	copy(cp, s.synced)
	return cp, nil
}

func (s *Store) ClaimImage(ctx context.Context, img catalog.SyncedImage) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.syncedByID[img.FileID]; ok {
		return false, nil
	}
	if img.SyncedAt.IsZero() {
		img.SyncedAt = time.Now().UTC()
	}
	img.ID = s.id("synced_images")
	s.synced = append(s.synced, img)
	s.syncedByID[img.FileID] = struct{}{}
	return true, nil
}

func (s *Store) Close() error { return nil }
