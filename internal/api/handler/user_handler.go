package handler

import (
	"net/http"

	"yamdb/internal/api/access"
	"yamdb/internal/api/dto"
	"yamdb/internal/api/middleware"
	"yamdb/internal/api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
	pager       Pager
}

func NewUserHandler(userService service.UserService, pager Pager) *UserHandler {
	return &UserHandler{userService: userService, pager: pager}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// Self-service profile (any authenticated user)
	me := rg.Group("/me", middleware.RequireAccess(access.Profile))
	{
		me.GET("", h.Me)
		me.PATCH("", h.UpdateMe)
	}

	// User management (admin only)
	admin := rg.Group("", middleware.RequireAccess(access.Users))
	{
		admin.GET("", h.List)
		admin.POST("", h.Create)
		admin.GET("/:username", h.Get)
		admin.PATCH("/:username", h.Update)
		admin.DELETE("/:username", h.Delete)
	}
}

// List returns users, optionally filtered by ?search= on the username
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	page := h.pager.parse(c)
	users, total, err := h.userService.List(ctx, c.Query("search"), page)
	if err != nil {
		respondError(c, err)
		return
	}
	writePage(c, dto.FromModelsToUserResponses(users), total, page)
}

// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.UserCreateRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userService.Create(ctx, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromModelToUserResponse(user))
}

// GET /api/v1/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userService.Get(ctx, c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// PATCH /api/v1/users/:username
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UserUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userService.Update(ctx, c.Param("username"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// DELETE /api/v1/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.userService.Delete(ctx, c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the caller's own profile
// GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(middleware.CurrentUser(c)))
}

// UpdateMe patches the caller's profile; a role in the body is ignored
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.ProfileUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	user, err := h.userService.UpdateProfile(ctx, middleware.CurrentUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}
