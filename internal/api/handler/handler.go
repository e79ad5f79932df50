// Package handler holds the gin handlers of the /api/v1 surface.
package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"yamdb/internal/api/dto"
	"yamdb/internal/api/service"
	"yamdb/internal/api/validation"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

var notFoundBody = gin.H{"detail": "Not found."}

func withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError maps service errors onto status codes. Anything unexpected is
// attached to the context for the request logger and answered with 500.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr.Fields)
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, notFoundBody)
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"detail": "You do not have permission to perform this action."})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}

// bindJSON decodes and validates the body into obj, writing the 400 itself
// when that fails.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		fields, detail, ok := validation.Translate(err)
		if ok {
			c.JSON(http.StatusBadRequest, fields)
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
		}
		return false
	}
	return true
}

// pathID parses a numeric path parameter. Malformed ids cannot match a
// record, so they answer 404 like an unknown one.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, notFoundBody)
		return 0, false
	}
	return uint(id), true
}

// selfURL rebuilds the absolute URL of the current request for pagination
// links.
func selfURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
	}
}

// Pager carries the default page size into every list handler.
type Pager struct {
	PageSize int
}

func (p Pager) parse(c *gin.Context) dto.Pagination {
	size := p.PageSize
	if size <= 0 {
		size = 10
	}
	return dto.ParsePagination(c.Request.URL.Query(), size)
}

func writePage[T any](c *gin.Context, results []T, count int64, page dto.Pagination) {
	c.JSON(http.StatusOK, dto.NewPage(results, count, page, selfURL(c)))
}
