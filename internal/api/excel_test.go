package api

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/tealeg/xlsx"

	"mataam/internal/catalog"
)

func TestExportProducts(t *testing.T) {
	env := newEnv(t, nil)
	w := env.do(http.MethodGet, "/api/admin/products/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: %d %s", w.Code, w.Body)
	}
	book, err := xlsx.OpenBinary(w.Body.Bytes())
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	sheet := book.Sheets[0]
	products, _ := env.store.Products(context.Background(), catalog.ProductFilter{})
	if sheet.MaxRow != len(products)+1 {
		t.Fatalf("rows = %d, want %d", sheet.MaxRow, len(products)+1)
	}
	if got := sheet.Rows[1].Cells[1].String(); got != products[0].Name {
		t.Fatalf("first name = %q", got)
	}
}

func buildWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Products")
	if err != nil {
		t.Fatalf("add sheet: %v", err)
	}
	for _, r := range append([][]string{productSheetHeaders}, rows...) {
		row := sheet.AddRow()
		for _, v := range r {
			row.AddCell().SetString(v)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestImportProducts(t *testing.T) {
	env := newEnv(t, nil)
	data := buildWorkbook(t, [][]string{
		// update existing product 1
		{"1", "كبة مقلية كبيرة", "", "650", "piece", "", "", ""},
		// new product in category 2
		{"", "مسخن", "دجاج وبصل وسماق", "1800", "كيلو", "2", "/images/m.png", "true"},
		// invalid price
		{"", "خطأ", "", "abc", "piece", "", "", ""},
		// unknown unit
		{"", "خطأ", "", "100", "litre", "", "", ""},
	})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "products.xlsx")
	_, _ = fw.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("import: %d %s", w.Code, w.Body)
	}
	res := decode[importResult](t, w)
	if res.Created != 1 || res.Updated != 1 || res.Skipped != 2 {
		t.Fatalf("result %+v", res)
	}

	ctx := context.Background()
	p1, _ := env.store.Product(ctx, 1)
	if p1.Price != 650 || p1.Name != "كبة مقلية كبيرة" {
		t.Fatalf("updated product %+v", p1)
	}
	all, _ := env.store.Products(ctx, catalog.ProductFilter{})
	last := all[len(all)-1]
	if last.Name != "مسخن" || last.UnitType != catalog.UnitKilo || !last.IsPopular || last.CategoryID == nil || *last.CategoryID != 2 {
		t.Fatalf("created product %+v", last)
	}
	if got := env.events.reasons(); len(got) != 1 || got[0] != "products.imported" {
		t.Fatalf("events %v", got)
	}
}

func postWorkbook(t *testing.T, env *testEnv, data []byte) importResult {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "products.xlsx")
	_, _ = fw.Write(data)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("import: %d %s", w.Code, w.Body)
	}
	return decode[importResult](t, w)
}

func TestImportBlankUnitKeepsStoredUnit(t *testing.T) {
	env := newEnv(t, nil)
	ctx := context.Background()
	var kilo catalog.Product
	all, _ := env.store.Products(ctx, catalog.ProductFilter{})
	for _, p := range all {
		if p.UnitType == catalog.UnitKilo {
			kilo = p
			break
		}
	}
	if kilo.ID == 0 {
		t.Fatal("seed has no kilo product")
	}
	id := strconv.FormatInt(kilo.ID, 10)

	res := postWorkbook(t, env, buildWorkbook(t, [][]string{
		{id, kilo.Name, "", "700", "", "", "", ""},
		// blank unit on a new row still defaults to piece
		{"", "فلافل", "", "150", "", "", "", ""},
	}))
	if res.Updated != 1 || res.Created != 1 {
		t.Fatalf("result %+v", res)
	}
	got, _ := env.store.Product(ctx, kilo.ID)
	if got.UnitType != catalog.UnitKilo || got.Price != 700 {
		t.Fatalf("updated product %+v", got)
	}
	all, _ = env.store.Products(ctx, catalog.ProductFilter{})
	if last := all[len(all)-1]; last.Name != "فلافل" || last.UnitType != catalog.UnitPiece {
		t.Fatalf("created product %+v", last)
	}

	res = postWorkbook(t, env, buildWorkbook(t, [][]string{{id, kilo.Name, "", "700", "dozen", "", "", ""}}))
	if got, _ = env.store.Product(ctx, kilo.ID); res.Updated != 1 || got.UnitType != catalog.UnitDozen {
		t.Fatalf("explicit unit not applied: %+v", got)
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	env := newEnv(t, nil)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "products.xlsx")
	_, _ = fw.Write([]byte("not a workbook"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("garbage upload: %d", w.Code)
	}
}
