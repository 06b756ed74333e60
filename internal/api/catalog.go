package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mataam/internal/catalog"
)

// ---- categories

func (h *handler) listCategories(c *gin.Context) {
	cats, err := h.Store.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, "Category", err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (h *handler) getCategory(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	cat, err := h.Store.Category(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "Category", err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

type categoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
}

func (h *handler) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c)
		return
	}
	slug := catalog.Slugify(req.Slug)
	if slug == "" {
		slug = catalog.Slugify(req.Name)
	}
	if slug == "" {
		h.badRequest(c)
		return
	}
	cat, err := h.Store.CreateCategory(c.Request.Context(), catalog.Category{
		Name:  strings.TrimSpace(req.Name),
		Slug:  slug,
		Image: req.Image,
	})
	if err != nil {
		h.fail(c, "Category", err)
		return
	}
	h.publish("category.created")
	c.JSON(http.StatusCreated, cat)
}

func (h *handler) deleteCategory(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteCategory(c.Request.Context(), id); err != nil {
		h.fail(c, "Category", err)
		return
	}
	h.publish("category.deleted")
	c.Status(http.StatusNoContent)
}

// ---- products

type productQuery struct {
	CategoryID *int64 `schema:"categoryId"`
	IsPopular  string `schema:"isPopular"`
}

func (h *handler) listProducts(c *gin.Context) {
	var q productQuery
	if err := h.query.Decode(&q, c.Request.URL.Query()); err != nil {
		h.badRequest(c)
		return
	}
	products, err := h.Store.Products(c.Request.Context(), catalog.ProductFilter{
		CategoryID: q.CategoryID,
		IsPopular:  q.IsPopular == "true",
	})
	if err != nil {
		h.fail(c, "Product", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *handler) getProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	p, err := h.Store.Product(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "Product", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type productRequest struct {
	CategoryID  *int64 `json:"categoryId"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       *int64 `json:"price" binding:"required,min=0"`
	UnitType    string `json:"unitType"`
	Image       string `json:"image"`
	IsPopular   bool   `json:"isPopular"`
}

func (h *handler) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c)
		return
	}
	p := catalog.Product{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Image:       req.Image,
		IsPopular:   req.IsPopular,
	}
	if req.UnitType != "" {
		u, ok := catalog.ParseUnitType(req.UnitType)
		if !ok {
			h.badRequest(c)
			return
		}
		p.UnitType = u
	}
	if !h.categoryExists(c, p.CategoryID) {
		return
	}
	created, err := h.Store.CreateProduct(c.Request.Context(), p)
	if err != nil {
		h.fail(c, "Product", err)
		return
	}
	h.publish("product.created")
	c.JSON(http.StatusCreated, created)
}

// categoryExists writes a 400 and returns false when id names no category.
// A nil id is allowed.
func (h *handler) categoryExists(c *gin.Context, id *int64) bool {
	if id == nil {
		return true
	}
	_, err := h.Store.Category(c.Request.Context(), *id)
	if errors.Is(err, catalog.ErrNotFound) {
		h.badRequest(c)
		return false
	}
	if err != nil {
		h.fail(c, "Category", err)
		return false
	}
	return true
}

type priceRequest struct {
	Price    *int64  `json:"price" binding:"required,min=0"`
	UnitType *string `json:"unitType"`
	Name     *string `json:"name"`
}

func (h *handler) updateProductPrice(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c)
		return
	}
	patch := catalog.ProductPatch{Price: req.Price, Name: req.Name}
	if req.UnitType != nil && *req.UnitType != "" {
		u, ok := catalog.ParseUnitType(*req.UnitType)
		if !ok {
			h.badRequest(c)
			return
		}
		patch.UnitType = &u
	}
	p, err := h.Store.PatchProduct(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, "Product", err)
		return
	}
	h.publish("product.updated")
	c.JSON(http.StatusOK, p)
}

func (h *handler) deleteProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteProduct(c.Request.Context(), id); err != nil {
		h.fail(c, "Product", err)
		return
	}
	h.publish("product.deleted")
	c.Status(http.StatusNoContent)
}

// ---- delivery locations

func (h *handler) listLocations(c *gin.Context) {
	locs, err := h.Store.DeliveryLocations(c.Request.Context())
	if err != nil {
		h.fail(c, "Delivery location", err)
		return
	}
	c.JSON(http.StatusOK, locs)
}

type locationRequest struct {
	Name  string `json:"name" binding:"required"`
	Price *int64 `json:"price" binding:"required,min=0"`
	Image string `json:"image"`
}

func (h *handler) createLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c)
		return
	}
	loc, err := h.Store.CreateDeliveryLocation(c.Request.Context(), catalog.DeliveryLocation{
		Name:  strings.TrimSpace(req.Name),
		Price: *req.Price,
		Image: req.Image,
	})
	if err != nil {
		h.fail(c, "Delivery location", err)
		return
	}
	h.publish("location.created")
	c.JSON(http.StatusCreated, loc)
}

func (h *handler) deleteLocation(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.Store.DeleteDeliveryLocation(c.Request.Context(), id); err != nil {
		h.fail(c, "Delivery location", err)
		return
	}
	h.publish("location.deleted")
	c.Status(http.StatusNoContent)
}

// ---- offers

func (h *handler) listOffers(c *gin.Context) {
	offers, err := h.Store.Offers(c.Request.Context())
	if err != nil {
		h.fail(c, "Offer", err)
		return
	}
	c.JSON(http.StatusOK, offers)
}

type offerRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	OriginalPrice   *int64 `json:"originalPrice" binding:"required,min=0"`
	DiscountedPrice *int64 `json:"discountedPrice" binding:"required,min=0"`
	Image           string `json:"image"`
}

func (h *handler) createOffer(c *gin.Context) {
	var req offerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c)
		return
	}
	o, err := h.Store.CreateOffer(c.Request.Context(), catalog.Offer{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		OriginalPrice:   *req.OriginalPrice,
		DiscountedPrice: *req.DiscountedPrice,
		Image:           req.Image,
	})
	if err != nil {
		h.fail(c, "Offer", err)
		return
	}
	h.publish("offer.created")
	c.JSON(http.StatusCreated, o)
}

// ---- profile

func (h *handler) getProfile(c *gin.Context) {
	p, err := h.Store.Profile(c.Request.Context())
	if err != nil {
		h.fail(c, "Profile", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type profileRequest struct {
	DisplayName   string `json:"displayName" binding:"required"`
	Tagline       string `json:"tagline"`
	WhatsAppPhone string `json:"whatsappPhone"`
	Address       string `json:"address"`
	AvatarURL     string `json:"avatarUrl"`
}

func (h *handler) saveProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c)
		return
	}
	p := catalog.Profile(req)
	if err := h.Store.SaveProfile(c.Request.Context(), p); err != nil {
		h.fail(c, "Profile", err)
		return
	}
	h.publish("profile.updated")
	c.JSON(http.StatusOK, p)
}
