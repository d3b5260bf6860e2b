package storage

import (
	"context"
	"time"

	"dmline/internal/pkg/errs"
)

const (
	// MaxAvatarSize is the maximum allowed avatar file size (2 MB).
	MaxAvatarSize = 2 * 1024 * 1024

	// PresignedURLDuration is how long a generated upload URL stays valid.
	PresignedURLDuration = 5 * time.Minute
)

// AllowedAvatarMIMETypes defines the permitted MIME types for avatar uploads.
var AllowedAvatarMIMETypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// StorageService defines the public interface for the avatar storage service.
type StorageService interface {
	// PresignUpload generates a pre-signed URL for uploading a file.
	PresignUpload(
		ctx context.Context,
		key string,
		mimeType string,
		fileSize int64,
		duration time.Duration,
	) (string, error)

	// Delete removes the file specified by the given key.
	Delete(ctx context.Context, key string) error
}

// NewStorageService is the factory function for StorageService.
// Only S3-compatible implementations are currently supported.
func NewStorageService(cfg ServiceConfig) (StorageService, error) {
	return newS3Client(cfg)
}

// ValidateAvatarUpload checks the declared upload parameters against avatar constraints.
func ValidateAvatarUpload(mimeType string, fileSize int64) *errs.CustomError {
	if _, ok := AllowedAvatarMIMETypes[mimeType]; !ok {
		return errs.NewError(errs.ErrInvalidParams)
	}

	if fileSize <= 0 || fileSize > MaxAvatarSize {
		return errs.NewError(errs.ErrInvalidParams)
	}

	return nil
}
