package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/growshare/service-booking/pkg/auth"
)

const (
	ctxKeyUserID = "auth_user_id"
	ctxKeyRoles  = "auth_roles"
)

// AuthMiddleware validates the Bearer token and stores the principal's
// identity and role set on the request context.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := jwtManager.VerifyToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ctxKeyUserID, claims.UserID)
		c.Set(ctxKeyRoles, auth.ParseRoleSet(claims.Roles))
		c.Next()
	}
}

// RequireRole aborts with 403 unless the principal holds at least one of the
// given roles.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		set, ok := GetUserRoles(c)
		if !ok || !set.HasAny(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated user's ID from the request context.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserRoles returns the authenticated user's role set from the request
// context.
func GetUserRoles(c *gin.Context) (auth.RoleSet, bool) {
	v, ok := c.Get(ctxKeyRoles)
	if !ok {
		return nil, false
	}
	set, ok := v.(auth.RoleSet)
	return set, ok
}

// GetActor returns the authenticated principal as an auth.Actor.
func GetActor(c *gin.Context) (auth.Actor, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return auth.Actor{}, false
	}
	roles, ok := GetUserRoles(c)
	if !ok {
		return auth.Actor{}, false
	}
	return auth.Actor{ID: id, Roles: roles}, true
}
