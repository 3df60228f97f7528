package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pageza/culina-ai/backend/config"
	"go.uber.org/zap"
)

// MaxImageSize bounds an uploaded recipe picture
const MaxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ObjectUploader is the part of the S3 client used for recipe pictures
type ObjectUploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageService stores recipe pictures in S3
type ImageService struct {
	uploader  ObjectUploader
	bucket    string
	publicURL func(key string) string
	recipes   *RecipeService
	logger    *zap.Logger
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config, recipes *RecipeService, logger *zap.Logger) *ImageService {
	return newImageService(s3Config.Client, s3Config.BucketName, s3Config.PublicURL, recipes, logger)
}

func newImageService(uploader ObjectUploader, bucket string, publicURL func(string) string, recipes *RecipeService, logger *zap.Logger) *ImageService {
	return &ImageService{
		uploader:  uploader,
		bucket:    bucket,
		publicURL: publicURL,
		recipes:   recipes,
		logger:    logger.Named("image"),
	}
}

// UploadRecipeImage stores data as the picture of a recipe owned by userID and returns its URL
func (s *ImageService) UploadRecipeImage(ctx context.Context, userID, recipeID uuid.UUID, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &InputError{Field: "image", Message: "must not be empty"}
	}
	if len(data) > MaxImageSize {
		return "", &InputError{Field: "image", Message: fmt.Sprintf("must be at most %d bytes", MaxImageSize)}
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", &InputError{Field: "image", Message: fmt.Sprintf("unsupported type %s", contentType)}
	}

	if err := s.recipes.EnsureOwner(ctx, userID, recipeID); err != nil {
		return "", err
	}

	key := fmt.Sprintf("recipe-images/%s/%d.%s", recipeID, time.Now().UnixNano(), ext)
	_, err := s.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	url := s.publicURL(key)
	if err := s.recipes.SetImageURL(ctx, userID, recipeID, url); err != nil {
		return "", err
	}

	s.logger.Info("recipe image uploaded",
		zap.String("recipe_id", recipeID.String()),
		zap.String("key", key))
	return url, nil
}
