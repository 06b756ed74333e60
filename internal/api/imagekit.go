package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"mataam/internal/cdn"
)

func (h *handler) uploadAuth(c *gin.Context) {
	auth, err := h.CDN.AuthParams(c.Request.Context())
	if err != nil {
		h.fail(c, "CDN", err)
		return
	}
	c.JSON(http.StatusOK, auth)
}

// triggerSync runs one import pass and reports what it created.
func (h *handler) triggerSync(c *gin.Context) {
	if h.SyncJob == nil {
		h.fail(c, "CDN", cdn.ErrNotConfigured)
		return
	}
	res, err := h.SyncJob.Trigger(c.Request.Context())
	if err != nil {
		h.fail(c, "CDN", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// upload stores the multipart "file" on the CDN under "folder" (default
// products). The next sync pass turns it into a catalog row.
func (h *handler) upload(c *gin.Context) {
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

	folder := strings.TrimSpace(c.PostForm("folder"))
	if folder == "" {
		folder = "products"
	}
	name := filepath.Base(fh.Filename)
	file, err := h.CDN.Upload(c.Request.Context(), f, name, folder)
	if err != nil {
		h.fail(c, "CDN", err)
		return
	}
	c.JSON(http.StatusCreated, file)
}
