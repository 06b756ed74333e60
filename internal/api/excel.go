package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"mataam/internal/catalog"
)

var productSheetHeaders = []string{
	"ID", "Name", "Description", "Price", "UnitType", "CategoryID", "Image", "IsPopular",
}

// exportProducts streams the product list as an xlsx workbook.
func (h *handler) exportProducts(c *gin.Context) {
	products, err := h.Store.Products(c.Request.Context(), catalog.ProductFilter{})
	if err != nil {
		h.fail(c, "Product", err)
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		h.fail(c, "Product", err)
		return
	}
	header := sheet.AddRow()
	for _, name := range productSheetHeaders {
		header.AddCell().SetString(name)
	}
	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt64(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetInt64(p.Price)
		row.AddCell().SetString(string(p.UnitType))
		if p.CategoryID != nil {
			row.AddCell().SetInt64(*p.CategoryID)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(p.Image)
		row.AddCell().SetBool(p.IsPopular)
	}

	c.Header("Content-Disposition", "attachment; filename=products.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		h.fail(c, "Product", err)
	}
}

type importResult struct {
	Created int `json:"createdCount"`
	Updated int `json:"updatedCount"`
	Skipped int `json:"skippedCount"`
}

// importProducts reads a workbook in the export layout. Rows whose ID names
// an existing product update its name, price and unit; other rows create
// products. Invalid rows are counted and skipped.
func (h *handler) importProducts(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.badRequest(c)
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.badRequest(c)
		return
	}
	defer f.Close()

	book, err := xlsx.OpenReaderAt(f, fh.Size)
	if err != nil || len(book.Sheets) == 0 || book.Sheets[0].MaxRow < 2 {
		h.badRequest(c)
		return
	}
	ctx := c.Request.Context()
	sheet := book.Sheets[0]

	var res importResult
	for i := 1; i < sheet.MaxRow && i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		get := func(idx int) string {
			if row != nil && idx < len(row.Cells) {
				return strings.TrimSpace(row.Cells[idx].String())
			}
			return ""
		}

		name := get(1)
		price, perr := strconv.ParseInt(get(3), 10, 64)
		if name == "" || perr != nil || price < 0 {
			res.Skipped++
			continue
		}
		// A blank unit cell keeps the stored unit on update.
		var unit *catalog.UnitType
		if raw := get(4); raw != "" {
			u, ok := catalog.ParseUnitType(raw)
			if !ok {
				res.Skipped++
				continue
			}
			unit = &u
		}

		if id, err := strconv.ParseInt(get(0), 10, 64); err == nil && id > 0 {
			_, err := h.Store.PatchProduct(ctx, id, catalog.ProductPatch{Price: &price, UnitType: unit, Name: &name})
			if err == nil {
				res.Updated++
				continue
			}
			if !isNotFound(err) {
				res.Skipped++
				continue
			}
		}

		p := catalog.Product{
			Name:        name,
			Description: get(2),
			Price:       price,
			UnitType:    catalog.UnitPiece,
			Image:       get(6),
			IsPopular:   parseSheetBool(get(7)),
		}
		if unit != nil {
			p.UnitType = *unit
		}
		if catID, err := strconv.ParseInt(get(5), 10, 64); err == nil && catID > 0 {
			if _, err := h.Store.Category(ctx, catID); err == nil {
				p.CategoryID = &catID
			}
		}
		if _, err := h.Store.CreateProduct(ctx, p); err != nil {
			res.Skipped++
			continue
		}
		res.Created++
	}

	if res.Created+res.Updated > 0 {
		h.publish("products.imported")
	}
	c.JSON(http.StatusOK, res)
}

func parseSheetBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "نعم":
		return true
	}
	return false
}
