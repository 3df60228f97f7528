package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/culina-ai/backend/internal/service"
	"github.com/pageza/culina-ai/backend/internal/types"
)

// Client-facing messages per error code. Internal details are never returned.
var messages = map[service.ErrorCode]string{
	service.CodeInvalidInput:  "Requête invalide",
	service.CodeQuotaExceeded: service.MessageQuotaExceeded,
	service.CodeNotFound:      "Ressource introuvable",
	service.CodeForbidden:     "Action non autorisée",
	service.CodeFavoriteLimit: "Limite de recettes sauvegardées atteinte. Passez à Pro pour des sauvegardes illimitées.",
	service.CodeCanceled:      "La requête a été interrompue",
	service.CodeInternal:      "Erreur interne du serveur",
}

// statusFor maps an error code to its HTTP status
func statusFor(code service.ErrorCode) int {
	switch code {
	case service.CodeInvalidInput:
		return http.StatusBadRequest
	case service.CodeQuotaExceeded, service.CodeForbidden, service.CodeFavoriteLimit:
		return http.StatusForbidden
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeUpstreamUnavailable:
		return http.StatusBadGateway
	case service.CodeCanceled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body for err. fallback replaces the message of
// server-side failures.
func respondError(c *gin.Context, log *zap.Logger, err error, fallback string) {
	code := service.CodeOf(err)
	status := statusFor(code)

	message, ok := messages[code]
	if !ok || status >= http.StatusInternalServerError {
		message = fallback
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", string(code)),
			zap.Int("status", status),
			zap.Error(err))
	}

	c.JSON(status, types.ErrorResponse{Error: message, Code: string(code)})
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, types.ErrorResponse{
		Error: messages[service.CodeInvalidInput],
		Code:  string(service.CodeInvalidInput),
	})
}

// pathID parses the uuid path parameter name, answering 400 when it is malformed
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c)
		return uuid.Nil, false
	}
	return id, true
}

// listQuery binds and clamps the paging parameters
func listQuery(c *gin.Context) (types.ListQuery, bool) {
	var q types.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c)
		return q, false
	}
	q.Limit, q.Offset = service.ClampPage(q.Limit, q.Offset)
	return q, true
}
