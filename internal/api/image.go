package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/culina-ai/backend/internal/middleware"
	"github.com/pageza/culina-ai/backend/internal/service"
)

// ImageHandler handles recipe picture uploads
type ImageHandler struct {
	images service.IImageService
	auth   middleware.TokenValidator
	logger *zap.Logger
}

// NewImageHandler creates a new image handler
func NewImageHandler(images service.IImageService, auth middleware.TokenValidator, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		images: images,
		auth:   auth,
		logger: logger.Named("api.images"),
	}
}

// RegisterRoutes registers the image routes
func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/recipes/:id/image", middleware.AuthMiddleware(h.auth), h.UploadRecipeImage)
}

// UploadRecipeImage stores the multipart field "image" as the recipe picture
func (h *ImageHandler) UploadRecipeImage(c *gin.Context) {
	userID, id, ok := ownerRequest(c)
	if !ok {
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		badRequest(c)
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c)
		return
	}
	defer file.Close()

	// one byte over the limit is enough for the service to reject it
	data, err := io.ReadAll(io.LimitReader(file, service.MaxImageSize+1))
	if err != nil {
		badRequest(c)
		return
	}

	url, err := h.images.UploadRecipeImage(c.Request.Context(), userID, id, data)
	if err != nil {
		respondError(c, h.logger, err, "Impossible d'enregistrer l'image")
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": url})
}
