package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/culina-ai/backend/internal/types"
)

// ErrorHandler recovers from panics and turns them into a JSON 500
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("recovery")
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("panic while handling request",
					zap.Any("panic", err),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"))
				c.AbortWithStatusJSON(http.StatusInternalServerError, types.ErrorResponse{
					Error: "Désolé, une erreur est survenue. Veuillez réessayer.",
					Code:  "INTERNAL",
				})
			}
		}()
		c.Next()
	}
}
