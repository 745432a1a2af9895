package handlers

import (
	"net/http"
	"strings"

	"cocodry/internal/models"

	"github.com/gin-gonic/gin"
)

const operatorKey = "operator"

func (h *Handler) operatorMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "missing Authorization header",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid Authorization header format",
		})
		return
	}

	op, err := h.services.ParseToken(parts[1])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "invalid or expired token",
		})
		return
	}

	// store in Gin context
	c.Set(operatorKey, op)
	c.Next()
}

// operatorFrom returns the operator set by operatorMiddleware.
func operatorFrom(c *gin.Context) models.Operator {
	if v, ok := c.Get(operatorKey); ok {
		if op, ok := v.(models.Operator); ok {
			return op
		}
	}
	return models.Operator{}
}
