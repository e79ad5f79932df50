package handler

import (
	"context"
	"net/http"

	"yamdb/internal/api/access"
	"yamdb/internal/api/dto"
	"yamdb/internal/api/middleware"
	"yamdb/internal/api/service"

	"github.com/gin-gonic/gin"
)

// TaxonomyHandler serves categories and genres. Both collections expose the
// same list/create/delete surface, so one handler is mounted twice.
type TaxonomyHandler struct {
	svc   service.TaxonomyService
	pager Pager
}

func NewTaxonomyHandler(svc service.TaxonomyService, pager Pager) *TaxonomyHandler {
	return &TaxonomyHandler{svc: svc, pager: pager}
}

// taxonomyOps binds one collection to the service methods that back it
type taxonomyOps struct {
	resource access.Resource
	list     func(ctx context.Context, search string, page dto.Pagination) ([]dto.TaxonResponse, int64, error)
	create   func(ctx context.Context, req dto.TaxonRequest) (dto.TaxonResponse, error)
	remove   func(ctx context.Context, slug string) error
}

func (h *TaxonomyHandler) RegisterCategoryRoutes(rg *gin.RouterGroup) {
	h.register(rg, taxonomyOps{
		resource: access.Category,
		list: func(ctx context.Context, search string, page dto.Pagination) ([]dto.TaxonResponse, int64, error) {
			list, total, err := h.svc.ListCategories(ctx, search, page)
			return dto.FromCategories(list), total, err
		},
		create: func(ctx context.Context, req dto.TaxonRequest) (dto.TaxonResponse, error) {
			category, err := h.svc.CreateCategory(ctx, req)
			if err != nil {
				return dto.TaxonResponse{}, err
			}
			return dto.FromTaxon(category.Taxon), nil
		},
		remove: h.svc.DeleteCategory,
	})
}

func (h *TaxonomyHandler) RegisterGenreRoutes(rg *gin.RouterGroup) {
	h.register(rg, taxonomyOps{
		resource: access.Genre,
		list: func(ctx context.Context, search string, page dto.Pagination) ([]dto.TaxonResponse, int64, error) {
			list, total, err := h.svc.ListGenres(ctx, search, page)
			return dto.FromGenres(list), total, err
		},
		create: func(ctx context.Context, req dto.TaxonRequest) (dto.TaxonResponse, error) {
			genre, err := h.svc.CreateGenre(ctx, req)
			if err != nil {
				return dto.TaxonResponse{}, err
			}
			return dto.FromTaxon(genre.Taxon), nil
		},
		remove: h.svc.DeleteGenre,
	})
}

func (h *TaxonomyHandler) register(rg *gin.RouterGroup, ops taxonomyOps) {
	rg.Use(middleware.RequireAccess(ops.resource))
	rg.GET("", h.list(ops))
	rg.POST("", h.create(ops))
	rg.DELETE("/:slug", h.delete(ops))
}

func (h *TaxonomyHandler) list(ops taxonomyOps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c)
		defer cancel()

		page := h.pager.parse(c)
		list, total, err := ops.list(ctx, c.Query("search"), page)
		if err != nil {
			respondError(c, err)
			return
		}
		writePage(c, list, total, page)
	}
}

func (h *TaxonomyHandler) create(ops taxonomyOps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.TaxonRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx, cancel := withTimeout(c)
		defer cancel()

		resp, err := ops.create(ctx, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

func (h *TaxonomyHandler) delete(ops taxonomyOps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := withTimeout(c)
		defer cancel()

		if err := ops.remove(ctx, c.Param("slug")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
