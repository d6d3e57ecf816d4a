package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/parlour/logger"
	"github.com/joy095/parlour/services/auth_service"
)

// Context keys set by AuthMiddleware.
const (
	ClaimsKey   = "admin_claims"
	AdminIDKey  = "admin_id"
	UsernameKey = "username"
)

type TokenVerifier interface {
	VerifyToken(token string) (*auth_service.Claims, error)
}

// AuthMiddleware admits requests carrying a valid "Authorization: Bearer <token>".
// A header without a credential is 403. Any credential that fails verification,
// including one sent under another scheme, is 401.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := credential(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied. No token provided."})
			return
		}

		claims, err := verifier.VerifyToken(token)
		if err != nil {
			logger.WarnLogger.Warnf("Rejected admin token from %s: %v", c.ClientIP(), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(AdminIDKey, claims.AdminID)
		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}

// credential returns the part after the scheme, e.g. "abc" for "Bearer abc".
// The scheme is not checked; a non-bearer credential fails verification.
func credential(header string) (string, bool) {
	_, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetAdminClaims returns the claims stored by AuthMiddleware.
func GetAdminClaims(c *gin.Context) (*auth_service.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth_service.Claims)
	return claims, ok
}

// GetAdminID returns the authenticated admin's id.
func GetAdminID(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := GetAdminClaims(c)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(claims.AdminID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
