package handler

import (
	"net/http"

	"yamdb/internal/api/access"
	"yamdb/internal/api/dto"
	"yamdb/internal/api/middleware"
	"yamdb/internal/api/repository"
	"yamdb/internal/api/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	titleService service.TitleService
	pager        Pager
}

func NewTitleHandler(titleService service.TitleService, pager Pager) *TitleHandler {
	return &TitleHandler{titleService: titleService, pager: pager}
}

func (h *TitleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(middleware.RequireAccess(access.Title))
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:title_id", h.Get)
	rg.PATCH("/:title_id", h.Update)
	rg.PUT("/:title_id", MethodNotAllowed)
	rg.DELETE("/:title_id", h.Delete)
}

// List supports ?name= ?year= ?category= ?genre=
// GET /api/v1/titles
func (h *TitleHandler) List(c *gin.Context) {
	var q dto.TitleFilter
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"year": []string{"Enter a number."}})
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	page := h.pager.parse(c)
	filter := repository.TitleFilter{
		Name:     q.Name,
		Year:     q.Year,
		Category: q.Category,
		Genre:    q.Genre,
	}
	titles, total, err := h.titleService.List(ctx, filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	writePage(c, dto.FromTitlesWithRating(titles), total, page)
}

// GET /api/v1/titles/:title_id
func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	title, err := h.titleService.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToTitleResponse(&title.Title, title.Rating))
}

// POST /api/v1/titles
func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.TitleCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	title, err := h.titleService.Create(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToTitleResponse(&title.Title, title.Rating))
}

// PATCH /api/v1/titles/:title_id
func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	var req dto.TitleUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	title, err := h.titleService.Update(ctx, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToTitleResponse(&title.Title, title.Rating))
}

// DELETE /api/v1/titles/:title_id
func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.titleService.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
