package storage

import (
	"context"
	"errors"
	"fmt"

	"contestacao-backend/config"
	"contestacao-backend/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or malformed result ids
var ErrNotFound = errors.New("result not found")

// ResultStore keeps raw model responses between the processing request
// and the requests that read or render them. Entries are written once.
type ResultStore interface {
	// Put stores content under a new id and returns the id
	Put(ctx context.Context, content string) (string, error)

	// Get retrieves a stored result by id
	Get(ctx context.Context, id string) (*models.StoredResult, error)

	// Delete removes a stored result. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal    StorageType = "local"
	StorageTypeS3       StorageType = "s3"
	StorageTypeGCS      StorageType = "gcs"
	StorageTypePostgres StorageType = "postgres"
	StorageTypeMemory   StorageType = "memory"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
	GCSBucket    string // For GCS storage
	DatabaseURL  string // For postgres storage
}

// NewStorage creates a result store based on configuration
func NewStorage(ctx context.Context, cfg StorageConfig) (ResultStore, error) {
	switch cfg.Type {
	case StorageTypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 storage")
		}
		return NewS3Storage(ctx, cfg)
	case StorageTypeGCS:
		if cfg.GCSBucket == "" {
			return nil, errors.New("GCS_RESULTS_BUCKET environment variable is required for GCS storage")
		}
		return NewGCSStorage(ctx, cfg.GCSBucket)
	case StorageTypePostgres:
		return NewPostgresStorageFromURL(ctx, cfg.DatabaseURL)
	case StorageTypeMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// ConfigFromEnv reads the storage configuration from environment variables
func ConfigFromEnv() StorageConfig {
	return StorageConfig{
		Type:         StorageType(config.GetEnv("STORAGE_TYPE", string(StorageTypeLocal))),
		LocalPath:    config.GetEnv("STORAGE_LOCAL_PATH", "./results"),
		S3Bucket:     config.GetEnv("AWS_S3_BUCKET", ""),
		S3Region:     config.GetEnv("AWS_REGION", "us-east-1"),
		AWSAccessKey: config.GetEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey: config.GetEnv("AWS_SECRET_ACCESS_KEY", ""),
		GCSBucket:    config.GetEnv("GCS_RESULTS_BUCKET", ""),
		DatabaseURL:  config.GetEnv("DATABASE_URL", ""),
	}
}

// NewStorageFromEnv creates a result store from environment variables
func NewStorageFromEnv(ctx context.Context) (ResultStore, error) {
	return NewStorage(ctx, ConfigFromEnv())
}

// parseID validates a result id. Anything that is not a UUID cannot exist.
func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return parsed, nil
}

// objectName is the file or object key of a result
func objectName(id uuid.UUID) string {
	return id.String() + ".txt"
}
