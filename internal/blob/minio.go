// Package blob implements the Blob Gateway (spec.md §4): stores originals
// and extracted text and fetches them by key, with two interchangeable
// backends (minio.go, cos.go) selected by config.Blob.Driver.
package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioGateway implements interfaces.BlobGateway against a MinIO (or
// S3-compatible) endpoint, grounded on internal/handler/system.go's
// minio-go/v7 client usage (minio.New, credentials.NewStaticV4).
type MinioGateway struct {
	client *minio.Client
}

// NewMinioGateway builds a MinioGateway.
func NewMinioGateway(endpoint, accessKeyID, secretAccessKey string, useSSL bool) (*MinioGateway, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinioGateway{client: client}, nil
}

func (m *MinioGateway) Upload(ctx context.Context, container, key, contentType string, metadata map[string]string, body io.Reader, size int64) (string, error) {
	exists, err := m.client.BucketExists(ctx, container)
	if err != nil {
		return "", fmt.Errorf("check bucket exists: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, container, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("create bucket: %w", err)
		}
	}

	_, err = m.client.PutObject(ctx, container, key, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	return key, nil
}

func (m *MinioGateway) Download(ctx context.Context, container, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, container, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("download object: %w", err)
	}
	return obj, nil
}

func (m *MinioGateway) Delete(ctx context.Context, container, key string) error {
	if err := m.client.RemoveObject(ctx, container, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

func (m *MinioGateway) Exists(ctx context.Context, container, key string) (bool, error) {
	_, err := m.client.StatObject(ctx, container, key, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}
	return true, nil
}
