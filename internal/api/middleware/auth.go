package middleware

import (
	"errors"
	"net/http"
	"strings"

	"yamdb/internal/api/access"
	"yamdb/internal/api/models"
	"yamdb/internal/api/service"

	"github.com/gin-gonic/gin"
)

const userKey = "user"

// Authenticate resolves an optional bearer token into the current user.
// Requests without an Authorization header continue anonymously; a header
// that is present but invalid is rejected with 401.
func Authenticate(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid authorization header format."})
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type."})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// SetUser is used by tests to bypass token handling.
func SetUser(c *gin.Context, user *models.User) {
	c.Set(userKey, user)
}

// RequireAccess applies the collection level rule for resource.
func RequireAccess(resource access.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch d := access.Check(CurrentUser(c), c.Request.Method, resource); d {
		case access.Unauthenticated:
			c.AbortWithStatusJSON(d.Status(), gin.H{"detail": "Authentication credentials were not provided."})
			return
		case access.Forbidden:
			c.AbortWithStatusJSON(d.Status(), gin.H{"detail": "You do not have permission to perform this action."})
			return
		}
		c.Next()
	}
}
