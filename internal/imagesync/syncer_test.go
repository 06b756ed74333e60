package imagesync

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"mataam/internal/catalog"
	"mataam/internal/catalog/memstore"
	"mataam/internal/cdn"
)

type fakeProvider struct {
	files []cdn.File
	err   error

	// When set, ListFiles signals entered and then waits on block.
	entered chan struct{}
	block   chan struct{}
}

func (f *fakeProvider) ListFiles(ctx context.Context) ([]cdn.File, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.files, f.err
}

func (f *fakeProvider) AuthParams(ctx context.Context) (cdn.UploadAuth, error) {
	return cdn.UploadAuth{}, nil
}

func (f *fakeProvider) Upload(ctx context.Context, r io.Reader, name, folder string) (cdn.File, error) {
	return cdn.File{}, nil
}

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestDeriveName(t *testing.T) {
	tests := map[string]string{
		"kibbeh_fried.png":              "kibbeh fried",
		"kibbeh_fried-1712345678.png":   "kibbeh fried",
		"grape-leaves_oil 2.jpg":        "grape leaves oil",
		"  shishbarak.webp":             "shishbarak",
		"2024.png":                      "2024",
		"raqayeq__cheese___sausage.png": "raqayeq cheese sausage",
		"no_extension":                  "no extension",
	}
	for in, want := range tests {
		if got := DeriveName(in); got != want {
			t.Errorf("DeriveName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTranslate(t *testing.T) {
	if got := Translate("Kibbeh Fried"); got != "كبة مقلية" {
		t.Fatalf("Translate = %q", got)
	}
	if got := Translate("falafel"); got != "falafel" {
		t.Fatalf("unknown names must pass through, got %q", got)
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]kind{
		"/categories":          kindCategory,
		"/menu/Categories":     kindCategory,
		"/locations":           kindLocation,
		"/delivery":            kindLocation,
		"/products":            kindProduct,
		"/":                    kindProduct,
		"/random/folder":       kindProduct,
		"/categories-old/misc": kindProduct,
	}
	for in, want := range tests {
		if got := classify(in); got != want {
			t.Errorf("classify(%q) = %s, want %s", in, got, want)
		}
	}
}

func listing() []cdn.File {
	return []cdn.File{
		{ID: "p1", Name: "kibbeh_fried-1712345678.png", URL: "https://cdn/p1.png", Path: "/products"},
		{ID: "p2", Name: "falafel.png", URL: "https://cdn/p2.png", Path: "/"},
		{ID: "c1", Name: "appetizers.png", URL: "https://cdn/c1.png", Path: "/categories"},
		{ID: "l1", Name: "khalda.png", URL: "https://cdn/l1.png", Path: "/locations"},
		{ID: "d1", Name: "products/", Path: "/"},
	}
}

func TestRunImportsAndClassifies(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	s := NewSyncer(store, &fakeProvider{files: listing()}, quietLog())

	res, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := Result{NewProducts: 2, NewCategories: 1, NewLocations: 1, Skipped: 1}
	if res != want {
		t.Fatalf("result = %+v, want %+v", res, want)
	}

	cats, _ := store.Categories(ctx)
	if len(cats) != 2 || cats[0].Slug != DefaultCategorySlug || cats[0].Name != DefaultCategoryName {
		t.Fatalf("expected default category then imported one, got %+v", cats)
	}
	if cats[1].Name != "مقبلات" || cats[1].Slug != "appetizers" {
		t.Fatalf("imported category = %+v", cats[1])
	}

	products, _ := store.Products(ctx, catalog.ProductFilter{})
	if len(products) != 2 {
		t.Fatalf("products = %+v", products)
	}
	p := products[0]
	if p.Name != "كبة مقلية" || p.Price != DefaultProductPrice || p.UnitType != catalog.UnitPiece {
		t.Fatalf("imported product = %+v", p)
	}
	if p.CategoryID == nil || *p.CategoryID != cats[0].ID {
		t.Fatalf("product should land in the default category: %+v", p)
	}

	locs, _ := store.DeliveryLocations(ctx)
	if len(locs) != 1 || locs[0].Price != DefaultLocationPrice || locs[0].Image != "https://cdn/l1.png" {
		t.Fatalf("locations = %+v", locs)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	prov := &fakeProvider{files: listing()}
	s := NewSyncer(store, prov, quietLog())

	if _, err := s.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	ledger, _ := store.SyncedImages(ctx)

	res, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if res.Created() != 0 {
		t.Fatalf("second pass created rows: %+v", res)
	}
	again, _ := store.SyncedImages(ctx)
	if len(again) != len(ledger) {
		t.Fatalf("ledger grew from %d to %d", len(ledger), len(again))
	}
}

func TestRunNewAndLedgeredFiles(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	// M files already ledgered.
	seen := []cdn.File{
		{ID: "old1", Name: "a.png", URL: "https://cdn/old1.png", Path: "/products"},
		{ID: "old2", Name: "b.png", URL: "https://cdn/old2.png", Path: "/products"},
	}
	for _, f := range seen {
		if _, err := store.ClaimImage(ctx, catalog.SyncedImage{FileID: f.ID, FileName: f.Name, URL: f.URL}); err != nil {
			t.Fatalf("claim: %v", err)
		}
	}
	// N unseen files, one of which has a URL already used by a product.
	fresh := []cdn.File{
		{ID: "new1", Name: "c.png", URL: "https://cdn/new1.png", Path: "/products"},
		{ID: "new2", Name: "d.png", URL: "https://cdn/new2.png", Path: "/products"},
		{ID: "new3", Name: "e.png", URL: "https://cdn/reused.png", Path: "/products"},
	}
	if _, err := store.CreateProduct(ctx, catalog.Product{Name: "قديم", Price: 100, Image: "https://cdn/reused.png"}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	s := NewSyncer(store, &fakeProvider{files: append(seen, fresh...)}, quietLog())
	res, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	ledger, _ := store.SyncedImages(ctx)
	if len(ledger) != len(seen)+len(fresh) {
		t.Fatalf("ledger has %d rows, want %d", len(ledger), len(seen)+len(fresh))
	}
	if res.Created() > len(fresh) || res.NewProducts != 2 {
		t.Fatalf("result = %+v", res)
	}
	if res.Skipped != len(seen)+1 {
		t.Fatalf("skipped = %d", res.Skipped)
	}
}

func TestRunCategorySlugCollision(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	s := NewSyncer(store, &fakeProvider{files: []cdn.File{
		{ID: "c1", Name: "desserts.png", URL: "u1", Path: "/categories"},
		{ID: "c2", Name: "desserts_2.png", URL: "u2", Path: "/categories"},
	}}, quietLog())

	res, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.NewCategories != 2 {
		t.Fatalf("result = %+v", res)
	}
	cats, _ := store.Categories(ctx)
	if cats[1].Slug != "desserts" || cats[2].Slug != "desserts-2" {
		t.Fatalf("slugs = %q, %q", cats[1].Slug, cats[2].Slug)
	}
}

func TestRunUsesExistingCategory(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	existing, _ := store.CreateCategory(ctx, catalog.Category{Name: "مقبلات", Slug: "appetizers"})
	s := NewSyncer(store, &fakeProvider{files: []cdn.File{{ID: "p", Name: "x.png", URL: "u", Path: "/products"}}}, quietLog())
	if _, err := s.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	cats, _ := store.Categories(ctx)
	if len(cats) != 1 {
		t.Fatalf("no default category should be created when one exists, got %+v", cats)
	}
	products, _ := store.Products(ctx, catalog.ProductFilter{CategoryID: &existing.ID})
	if len(products) != 1 {
		t.Fatalf("product not attached to existing category")
	}
}

func TestRunListError(t *testing.T) {
	boom := errors.New("boom")
	s := NewSyncer(memstore.New(), &fakeProvider{err: boom}, quietLog())
	if _, err := s.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected list error, got %v", err)
	}
}

// brokenLocations fails every delivery location insert.
type brokenLocations struct {
	catalog.Store
}

func (brokenLocations) CreateDeliveryLocation(ctx context.Context, l catalog.DeliveryLocation) (catalog.DeliveryLocation, error) {
	return catalog.DeliveryLocation{}, errors.New("disk full")
}

func TestRunLogsFailedImportKind(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	store := brokenLocations{Store: memstore.New()}
	s := NewSyncer(store, &fakeProvider{files: []cdn.File{
		{ID: "l1", Name: "zarqa.png", URL: "https://cdn/l1.png", Path: "/locations"},
		{ID: "p1", Name: "kibbeh_fried.png", URL: "https://cdn/p1.png", Path: "/products"},
	}}, log)

	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.NewProducts != 1 || res.NewLocations != 0 || res.Skipped != 1 {
		t.Fatalf("result %+v", res)
	}
	out := buf.String()
	if !strings.Contains(out, `"msg":"sync: import failed"`) || !strings.Contains(out, `"kind":"location"`) {
		t.Fatalf("warn line missing kind: %s", out)
	}
}

func TestKindString(t *testing.T) {
	for k, want := range map[kind]string{kindProduct: "product", kindCategory: "category", kindLocation: "location"} {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", k, got, want)
		}
	}
}
