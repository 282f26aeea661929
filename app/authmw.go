package app

import (
	"Gin_postgres_library_management/db"
	"Gin_postgres_library_management/session"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthRequired parses the Bearer token, rejects revoked jtis, and confirms
// the account still exists and is usable. userID/isAdmin land in the
// context so handlers only query once.
func AuthRequired(issuer *session.TokenIssuer, tokens *session.TokenStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "authorization token is missing"})
			return
		}
		claims, err := issuer.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid token"})
			return
		}
		if revoked, err := tokens.IsRevoked(c.Request.Context(), claims.ID); err != nil || revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "token has been revoked"})
			return
		}

		u, err := repo.FindUserByID(c.Request.Context(), claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}

		c.Set("userID", u.ID)
		c.Set("isAdmin", u.IsAdmin())
		c.Set("jti", claims.ID)
		c.Next()
	}
}

// AdminOnly 依赖 AuthRequired 先行
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("isAdmin")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if isAdmin, _ := v.(bool); !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
