package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// serveStatic serves the built storefront. Unknown paths get index.html so
// client-side routes like /cart or /admin survive a reload. Unmatched /api
// paths stay JSON 404s.
func (h *handler) serveStatic(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
		return
	}
	name := filepath.Join(h.StaticDir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
	if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
		c.File(name)
		return
	}
	index := filepath.Join(h.StaticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
		return
	}
	c.File(index)
}
