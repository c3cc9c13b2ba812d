package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"contestacao-backend/models"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

const gcsPrefix = "results/"

// GCSStorage implements ResultStore on a Google Cloud Storage bucket
type GCSStorage struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
	name   string
}

// NewGCSStorage creates a GCS client using application default credentials
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSStorage{
		client: client,
		bucket: client.Bucket(bucket),
		name:   bucket,
	}, nil
}

// Put writes content to a new object. The write only succeeds if the object does not exist yet.
func (s *GCSStorage) Put(ctx context.Context, content string) (string, error) {
	id := uuid.New()
	name := gcsPrefix + objectName(id)

	writer := s.bucket.Object(name).If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = "text/plain; charset=utf-8"

	if _, err := io.Copy(writer, strings.NewReader(content)); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 412 {
			return "", fmt.Errorf("object %s already exists: %w", name, err)
		}
		return "", fmt.Errorf("failed to finalize GCS write: %w", err)
	}

	zap.L().Info("result saved", zap.String("backend", "gcs"), zap.String("object", fmt.Sprintf("gs://%s/%s", s.name, name)), zap.Int("chars", len(content)))
	return id.String(), nil
}

// Get reads an object
func (s *GCSStorage) Get(ctx context.Context, id string) (*models.StoredResult, error) {
	parsed, err := parseID(id)
	if err != nil {
		return nil, err
	}

	reader, err := s.bucket.Object(gcsPrefix + objectName(parsed)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open GCS object: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object: %w", err)
	}

	return &models.StoredResult{
		ID:        parsed,
		Content:   string(data),
		Size:      int64(len(data)),
		CreatedAt: reader.Attrs.LastModified,
	}, nil
}

// Delete removes an object
func (s *GCSStorage) Delete(ctx context.Context, id string) error {
	parsed, err := parseID(id)
	if err != nil {
		return nil
	}

	err = s.bucket.Object(gcsPrefix + objectName(parsed)).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object: %w", err)
	}
	return nil
}

// Close releases the client
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
