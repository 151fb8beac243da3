package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/regdesk-api/internal/models"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
	"github.com/noah-isme/regdesk-api/pkg/logger"
	"github.com/noah-isme/regdesk-api/pkg/response"
)

// ContextDeskKey is the gin context key storing the desk token claims.
const ContextDeskKey = "currentDesk"

// DeskTokenValidator validates desk bearer tokens.
type DeskTokenValidator interface {
	Validate(token string) (*models.DeskClaims, error)
}

// DeskAuth protects routes by requiring a valid desk token.
func DeskAuth(tokens DeskTokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextDeskKey, claims)
		c.Set(logger.DeskIDKey, claims.DeskID)
		c.Next()
	}
}

// DeskClaims returns the claims stored by DeskAuth.
func DeskClaims(c *gin.Context) (*models.DeskClaims, bool) {
	value, exists := c.Get(ContextDeskKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.DeskClaims)
	return claims, ok && claims != nil
}
