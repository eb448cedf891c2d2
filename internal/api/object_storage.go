package api

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"

	"locallift/internal/storage"
)

var _ ObjectStorage = (*storage.Client)(nil)

// ObjectStorage is the slice of the MinIO client the handlers use.
type ObjectStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
	GeneratePresignedURLWithParams(ctx context.Context, objectKey string, duration time.Duration, params map[string]string) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}
