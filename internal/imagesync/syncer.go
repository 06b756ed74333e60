// Package imagesync imports images uploaded to the CDN as catalog rows.
package imagesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"mataam/internal/catalog"
	"mataam/internal/cdn"
)

const (
	DefaultCategoryName = "منتجات"
	DefaultCategorySlug = "products"
	placeholderImage    = "/images/hero1.png"

	DefaultProductPrice  int64 = 100
	DefaultLocationPrice int64 = 200
)

// Result counts the rows one pass created.
type Result struct {
	NewProducts   int `json:"newProductsAdded"`
	NewCategories int `json:"newCategoriesAdded"`
	NewLocations  int `json:"newLocationsAdded"`
	Skipped       int `json:"skipped"`
}

// Created is the number of catalog rows added.
func (r Result) Created() int { return r.NewProducts + r.NewCategories + r.NewLocations }

type Syncer struct {
	store    catalog.Store
	provider cdn.Provider
	log      *slog.Logger
	now      func() time.Time
}

func NewSyncer(store catalog.Store, provider cdn.Provider, log *slog.Logger) *Syncer {
	return &Syncer{store: store, provider: provider, log: log, now: time.Now}
}

// Run performs one full pass over the remote listing. Files already in the
// ledger are skipped; rows created earlier are never touched.
func (s *Syncer) Run(ctx context.Context) (Result, error) {
	var res Result

	files, err := s.provider.ListFiles(ctx)
	if err != nil {
		return res, fmt.Errorf("list remote files: %w", err)
	}

	defaultCat, err := s.ensureDefaultCategory(ctx)
	if err != nil {
		return res, err
	}

	for _, f := range files {
		if f.IsDir() {
			res.Skipped++
			continue
		}
		created, err := s.importFile(ctx, f, defaultCat)
		if err != nil {
			// One bad file must not stall the rest of the listing.
			s.log.Warn("sync: import failed",
				slog.String("fileId", f.ID),
				slog.String("name", f.Name),
				slog.String("kind", classify(f.Path).String()),
				slog.Any("err", err),
			)
			res.Skipped++
			continue
		}
		switch created {
		case kindCategory:
			res.NewCategories++
		case kindLocation:
			res.NewLocations++
		case kindProduct:
			res.NewProducts++
		default:
			res.Skipped++
		}
	}
	return res, nil
}

const kindNone kind = -1

// importFile claims f in the ledger and creates its catalog row. It returns
// kindNone when the file was already imported.
func (s *Syncer) importFile(ctx context.Context, f cdn.File, defaultCat int64) (kind, error) {
	claimed, err := s.store.ClaimImage(ctx, catalog.SyncedImage{
		FileID:   f.ID,
		FileName: f.Name,
		URL:      f.URL,
		SyncedAt: s.now().UTC(),
	})
	if err != nil {
		return kindNone, err
	}
	if !claimed {
		return kindNone, nil
	}

	// A file re-uploaded under a new id keeps its URL.
	if _, err := s.store.ProductByImage(ctx, f.URL); err == nil {
		return kindNone, nil
	} else if !errors.Is(err, catalog.ErrNotFound) {
		return kindNone, err
	}

	canonical := DeriveName(f.Name)
	name := Translate(canonical)
	k := classify(f.Path)
	switch k {
	case kindCategory:
		slug, err := s.uniqueSlug(ctx, catalog.Slugify(canonical))
		if err != nil {
			return kindNone, err
		}
		_, err = s.store.CreateCategory(ctx, catalog.Category{Name: name, Slug: slug, Image: f.URL})
		return k, err
	case kindLocation:
		_, err := s.store.CreateDeliveryLocation(ctx, catalog.DeliveryLocation{Name: name, Price: DefaultLocationPrice, Image: f.URL})
		return k, err
	default:
		cat := defaultCat
		_, err := s.store.CreateProduct(ctx, catalog.Product{
			CategoryID: &cat,
			Name:       name,
			Price:      DefaultProductPrice,
			UnitType:   catalog.UnitPiece,
			Image:      f.URL,
		})
		return k, err
	}
}

// ensureDefaultCategory returns the category new products go into: the one
// with the default slug, else the first category, else a freshly created one.
func (s *Syncer) ensureDefaultCategory(ctx context.Context) (int64, error) {
	cats, err := s.store.Categories(ctx)
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range cats {
		if c.Slug == DefaultCategorySlug {
			return c.ID, nil
		}
	}
	if len(cats) > 0 {
		return cats[0].ID, nil
	}
	c, err := s.store.CreateCategory(ctx, catalog.Category{Name: DefaultCategoryName, Slug: DefaultCategorySlug, Image: placeholderImage})
	if err != nil {
		return 0, fmt.Errorf("create default category: %w", err)
	}
	s.log.Info("sync: created default category", slog.Int64("id", c.ID))
	return c.ID, nil
}

func (s *Syncer) uniqueSlug(ctx context.Context, base string) (string, error) {
	if base == "" {
		base = "category"
	}
	cats, err := s.store.Categories(ctx)
	if err != nil {
		return "", fmt.Errorf("list categories: %w", err)
	}
	taken := make(map[string]bool, len(cats))
	for _, c := range cats {
		taken[c.Slug] = true
	}
	slug := base
	for i := 2; taken[slug]; i++ {
		slug = base + "-" + strconv.Itoa(i)
	}
	return slug, nil
}
