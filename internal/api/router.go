// Package api is the HTTP surface of the storefront: public catalog reads,
// checkout, CDN sync and the admin write endpoints.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/schema"

	"mataam/internal/catalog"
	"mataam/internal/cdn"
	"mataam/internal/events"
	"mataam/internal/imagesync"
)

// EventStream is both the publisher admin handlers notify and the websocket
// endpoint browsers subscribe to.
type EventStream interface {
	events.Publisher
	http.Handler
}

type Deps struct {
	Store   catalog.Store
	CDN     cdn.Provider
	SyncJob *imagesync.Job
	Events  EventStream
	Log     *slog.Logger

	AdminToken    string
	CORSOrigins   []string
	WhatsAppPhone string
	Currency      string

	// StaticDir, when set, is served for every non-API path with an
	// index.html fallback for client-side routes.
	StaticDir string
}

type handler struct {
	Deps
	query *schema.Decoder
}

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(d Deps) *gin.Engine {
	if d.CDN == nil {
		d.CDN = cdn.Unconfigured{}
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	h := &handler{Deps: d, query: dec}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Log))
	r.MaxMultipartMemory = 32 << 20
	r.Use(cors.New(corsConfig(d.CORSOrigins)))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/categories", h.listCategories)
		api.GET("/categories/:id", h.getCategory)
		api.GET("/products", h.listProducts)
		api.GET("/products/:id", h.getProduct)
		api.GET("/delivery-locations", h.listLocations)
		api.GET("/offers", h.listOffers)
		api.GET("/profile", h.getProfile)
		api.POST("/checkout", h.checkout)

		api.GET("/imagekit/auth", h.uploadAuth)
		api.POST("/imagekit/sync", h.triggerSync)
	}
	if d.Events != nil {
		api.GET("/events", gin.WrapH(d.Events))
	}

	admin := api.Group("", requireAdmin(d.AdminToken))
	{
		admin.POST("/products", h.createProduct)
		admin.PATCH("/products/:id/price", h.updateProductPrice)
		admin.DELETE("/products/:id", h.deleteProduct)

		admin.POST("/categories", h.createCategory)
		admin.DELETE("/categories/:id", h.deleteCategory)

		admin.POST("/delivery-locations", h.createLocation)
		admin.DELETE("/delivery-locations/:id", h.deleteLocation)

		admin.POST("/offers", h.createOffer)
		admin.PUT("/profile", h.saveProfile)

		admin.GET("/admin/products/export", h.exportProducts)
		admin.POST("/admin/products/import", h.importProducts)

		admin.POST("/imagekit/upload", h.upload)
	}

	if d.StaticDir != "" {
		r.NoRoute(h.serveStatic)
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Admin-Token", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// publish notifies subscribers that the catalog changed.
func (h *handler) publish(reason string) {
	if h.Events != nil {
		h.Events.Publish(events.CatalogChanged(reason))
	}
}
