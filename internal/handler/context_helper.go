package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/regdesk-api/internal/middleware"
	appErrors "github.com/noah-isme/regdesk-api/pkg/errors"
	"github.com/noah-isme/regdesk-api/pkg/response"
)

// deskFromContext returns the authenticated desk id, writing a 401 when missing.
func deskFromContext(c *gin.Context) (string, bool) {
	claims, ok := middleware.DeskClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.DeskID, true
}
