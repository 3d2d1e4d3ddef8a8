package utils

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"fanpulse/internal/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// Image upload errors
var (
	ErrFileTooLarge       = fmt.Errorf("file size exceeds limit")
	ErrInvalidContentType = fmt.Errorf("invalid content type")
	ErrInvalidExtension   = fmt.Errorf("invalid file extension")
	ErrMissingCredentials = fmt.Errorf("cloudinary credentials are missing")
	ErrUploadFailed       = fmt.Errorf("failed to upload file")
)

const uploadTimeout = 30 * time.Second

// allowedImageTypes maps accepted content types to their valid extensions.
// Article covers are images only.
var allowedImageTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/webp": {".webp"},
	"image/gif":  {".gif"},
}

// CloudinaryService uploads article cover images to Cloudinary
type CloudinaryService struct {
	client      *cloudinary.Cloudinary
	maxFileSize int64
	folder      string
	logger      *zap.Logger
}

// NewCloudinaryService creates an upload service from configuration
func NewCloudinaryService(cfg *config.CloudinaryConfig, logger *zap.Logger) (*CloudinaryService, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrMissingCredentials
	}

	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryService{
		client:      client,
		maxFileSize: cfg.MaxFileSize,
		folder:      cfg.UploadFolder,
		logger:      logger,
	}, nil
}

// ValidateImage checks size, content type and extension before upload
func (s *CloudinaryService) ValidateImage(header *multipart.FileHeader) error {
	if header.Size > s.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrFileTooLarge, header.Size, s.maxFileSize)
	}

	contentType := header.Header.Get("Content-Type")
	extensions, ok := allowedImageTypes[contentType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidContentType, contentType)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	for _, valid := range extensions {
		if ext == valid {
			return nil
		}
	}
	return fmt.Errorf("%w: %s for %s", ErrInvalidExtension, ext, contentType)
}

// UploadImage validates and uploads an image, retrying transient failures,
// and returns the delivered secure URL.
func (s *CloudinaryService) UploadImage(ctx context.Context, file multipart.File, header *multipart.FileHeader, subfolder string) (string, error) {
	if err := s.ValidateImage(header); err != nil {
		return "", err
	}

	folder := s.folder
	if subfolder != "" {
		folder = folder + "/" + subfolder
	}

	var url string
	upload := func() error {
		if _, err := file.Seek(0, 0); err != nil {
			return backoff.Permanent(fmt.Errorf("unable to reset file position: %w", err))
		}

		uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
		defer cancel()

		result, err := s.client.Upload.Upload(uploadCtx, file, uploader.UploadParams{
			Folder:         folder,
			ResourceType:   "image",
			UniqueFilename: boolPtr(true),
		})
		if err != nil {
			s.logger.Warn("cloudinary upload attempt failed",
				zap.String("filename", header.Filename),
				zap.Error(err),
			)
			return err
		}
		url = result.SecureURL
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(upload, policy); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	s.logger.Info("image uploaded",
		zap.String("filename", header.Filename),
		zap.String("folder", folder),
		zap.Int64("size", header.Size),
	)
	return url, nil
}

func boolPtr(b bool) *bool {
	return &b
}
