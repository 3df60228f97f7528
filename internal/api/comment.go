package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/culina-ai/backend/internal/middleware"
	"github.com/pageza/culina-ai/backend/internal/models"
	"github.com/pageza/culina-ai/backend/internal/service"
	"github.com/pageza/culina-ai/backend/internal/types"
)

const messageCommentsFailed = "Impossible de traiter le commentaire"

// CommentHandler serves comments on public recipes
type CommentHandler struct {
	comments service.ICommentService
	auth     middleware.TokenValidator
	logger   *zap.Logger
}

// NewCommentHandler creates a new CommentHandler instance
func NewCommentHandler(comments service.ICommentService, auth middleware.TokenValidator, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		auth:     auth,
		logger:   logger.Named("api.comments"),
	}
}

// RegisterRoutes registers the comment routes
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/recipes/:id/comments", h.ListComments)
	router.POST("/recipes/:id/comments", middleware.AuthMiddleware(h.auth), h.CreateComment)
	router.DELETE("/comments/:id", middleware.AuthMiddleware(h.auth), h.DeleteComment)
}

// ListComments returns a page of comments, newest first
func (h *CommentHandler) ListComments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	q, ok := listQuery(c)
	if !ok {
		return
	}

	comments, err := h.comments.ListComments(c.Request.Context(), id, q.Limit, q.Offset)
	if err != nil {
		respondError(c, h.logger, err, messageCommentsFailed)
		return
	}
	c.JSON(http.StatusOK, types.ListResponse[models.Comment]{Items: comments, Limit: q.Limit, Offset: q.Offset})
}

// CreateComment posts a comment on a public recipe
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, id, ok := ownerRequest(c)
	if !ok {
		return
	}

	var req types.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	comment, err := h.comments.AddComment(c.Request.Context(), userID, id, req.Body)
	if err != nil {
		respondError(c, h.logger, err, messageCommentsFailed)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment removes one of the user's comments
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, id, ok := ownerRequest(c)
	if !ok {
		return
	}

	if err := h.comments.DeleteComment(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err, messageCommentsFailed)
		return
	}
	c.Status(http.StatusNoContent)
}
