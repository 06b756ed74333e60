package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mataam/internal/catalog"
	"mataam/internal/cdn"
	"mataam/internal/imagesync"
)

const msgInvalid = "Invalid request"

func (h *handler) badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalid})
}

func (h *handler) notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"message": what + " not found"})
}

// fail maps a store/CDN/sync error to its status. what names the resource
// for 404 messages.
func (h *handler) fail(c *gin.Context, what string, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		h.notFound(c, what)
	case errors.Is(err, catalog.ErrInvalidInput):
		h.badRequest(c)
	case errors.Is(err, cdn.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "CDN is not configured"})
	case errors.Is(err, imagesync.ErrInProgress):
		c.JSON(http.StatusConflict, gin.H{"message": "Sync already in progress"})
	default:
		h.Log.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.String("requestId", c.GetString("requestId")),
			slog.Any("err", err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

// pathID parses the :id route parameter; on failure it writes a 400.
func (h *handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.badRequest(c)
		return 0, false
	}
	return id, true
}

func isNotFound(err error) bool { return errors.Is(err, catalog.ErrNotFound) }
