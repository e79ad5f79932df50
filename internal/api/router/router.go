// Package router assembles the gin engine serving the API.
package router

import (
	"net/http"
	"strings"

	"yamdb/internal/api/handler"
	"yamdb/internal/api/middleware"
	"yamdb/internal/api/service"
	"yamdb/internal/logging"
	"yamdb/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const apiPrefix = "/api/v1"

// Deps is everything the router wires into handlers.
type Deps struct {
	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	AuthService     service.AuthService
	UserService     service.UserService
	TaxonomyService service.TaxonomyService
	TitleService    service.TitleService
	ReviewService   service.ReviewService
	CommentService  service.CommentService

	// AuthLimiter throttles /auth per client IP; nil disables it.
	AuthLimiter *middleware.IPRateLimiter
	// HealthChecks are probed by /health.
	HealthChecks map[string]handler.Pinger
	PageSize     int
}

// New builds the engine and wraps it so that a trailing slash is optional on
// every route.
func New(deps Deps) http.Handler {
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(logging.RequestLogger(deps.Logger))
	r.Use(deps.Metrics.Middleware())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	})
	r.NoMethod(handler.MethodNotAllowed)

	health := handler.NewHealthHandler(deps.HealthChecks)
	r.GET("/health", health.Health)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	pager := handler.Pager{PageSize: deps.PageSize}
	v1 := r.Group(apiPrefix, middleware.Authenticate(deps.AuthService))

	// Auth routes
	authGroup := v1.Group("/auth")
	if deps.AuthLimiter != nil {
		authGroup.Use(deps.AuthLimiter.Middleware())
	}
	handler.NewAuthHandler(deps.AuthService).RegisterRoutes(authGroup)

	// Users
	handler.NewUserHandler(deps.UserService, pager).RegisterRoutes(v1.Group("/users"))

	// Taxonomy
	taxonomy := handler.NewTaxonomyHandler(deps.TaxonomyService, pager)
	taxonomy.RegisterCategoryRoutes(v1.Group("/categories"))
	taxonomy.RegisterGenreRoutes(v1.Group("/genres"))

	// Titles with nested reviews and comments. The nested groups hang off v1
	// so they do not inherit the title access rule.
	handler.NewTitleHandler(deps.TitleService, pager).RegisterRoutes(v1.Group("/titles"))
	handler.NewReviewHandler(deps.ReviewService, pager).RegisterRoutes(v1.Group("/titles/:title_id/reviews"))
	handler.NewCommentHandler(deps.CommentService, pager).
		RegisterRoutes(v1.Group("/titles/:title_id/reviews/:review_id/comments"))

	return StripTrailingSlash(r)
}

// StripTrailingSlash removes one trailing slash from the request path before
// routing, so /titles/ and /titles hit the same handler without a redirect.
func StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
			req.URL.Path = strings.TrimSuffix(p, "/")
			if req.URL.RawPath != "" {
				req.URL.RawPath = strings.TrimSuffix(req.URL.RawPath, "/")
			}
		}
		next.ServeHTTP(w, req)
	})
}
