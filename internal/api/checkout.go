package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"mataam/internal/cart"
	"mataam/internal/catalog"
	"mataam/internal/checkout"
)

type checkoutItem struct {
	ProductID int64           `json:"productId" binding:"required,min=1"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type checkoutRequest struct {
	Items              []checkoutItem `json:"items" binding:"required,min=1,dive"`
	DeliveryLocationID *int64         `json:"deliveryLocationId"`
}

type checkoutResponse struct {
	Message     string      `json:"message"`
	URL         string      `json:"url"`
	Subtotal    json.Number `json:"subtotal"`
	DeliveryFee int64       `json:"deliveryFee"`
	Total       json.Number `json:"total"`
}

// checkout rebuilds the shopper's cart from current catalog prices and
// returns the WhatsApp link. Nothing is stored.
func (h *handler) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c)
		return
	}
	ctx := c.Request.Context()

	ct := cart.New()
	for _, it := range req.Items {
		p, err := h.Store.Product(ctx, it.ProductID)
		if errors.Is(err, catalog.ErrNotFound) {
			h.badRequest(c)
			return
		}
		if err != nil {
			h.fail(c, "Product", err)
			return
		}
		if it.Quantity.LessThan(p.UnitType.Step()) {
			h.badRequest(c)
			return
		}
		ct.AddItem(p, it.Quantity)
	}

	var loc *catalog.DeliveryLocation
	if req.DeliveryLocationID != nil {
		l, err := h.findLocation(c, *req.DeliveryLocationID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				h.badRequest(c)
			} else {
				h.fail(c, "Delivery location", err)
			}
			return
		}
		loc = &l
	}

	phone := h.WhatsAppPhone
	if prof, err := h.Store.Profile(ctx); err == nil && prof.WhatsAppPhone != "" {
		phone = prof.WhatsAppPhone
	}
	composer := checkout.Composer{Phone: phone, Currency: h.Currency}
	order, err := composer.Compose(ct, loc)
	if err != nil {
		h.badRequest(c)
		return
	}
	c.JSON(http.StatusOK, checkoutResponse{
		Message:     order.Message,
		URL:         order.URL,
		Subtotal:    json.Number(order.Subtotal.String()),
		DeliveryFee: order.DeliveryFee,
		Total:       json.Number(order.Total.String()),
	})
}

func (h *handler) findLocation(c *gin.Context, id int64) (catalog.DeliveryLocation, error) {
	locs, err := h.Store.DeliveryLocations(c.Request.Context())
	if err != nil {
		return catalog.DeliveryLocation{}, err
	}
	for _, l := range locs {
		if l.ID == id {
			return l, nil
		}
	}
	return catalog.DeliveryLocation{}, catalog.ErrNotFound
}
