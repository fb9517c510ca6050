package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"vidtube/internal/config"
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/observability"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const publicReadPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`

// MinIOStorage stores objects in an S3-compatible bucket.
type MinIOStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	prober    Prober

	ensureOnce sync.Once
	ensureErr  error
}

// NewMinIOStorage connects to the configured endpoint. Bucket creation is
// deferred to the first upload.
func NewMinIOStorage(cfg *config.Config, prober Prober) (*MinIOStorage, error) {
	if cfg.StorageEndpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}
	client, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	publicURL := strings.TrimRight(cfg.StoragePublicURL, "/")
	if publicURL == "" {
		publicURL = strings.TrimRight(client.EndpointURL().String(), "/") + "/" + cfg.StorageBucket
	}

	return &MinIOStorage{
		client:    client,
		bucket:    strings.TrimSpace(cfg.StorageBucket),
		publicURL: publicURL,
		prober:    prober,
	}, nil
}

// EnsureBucket creates the bucket with a public-read policy if it is missing.
func (s *MinIOStorage) EnsureBucket(ctx context.Context) error {
	s.ensureOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.ensureErr = err
			return
		}
		if exists {
			return
		}
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			s.ensureErr = err
			return
		}
		s.ensureErr = s.client.SetBucketPolicy(ctx, s.bucket, fmt.Sprintf(publicReadPolicy, s.bucket))
	})

	if s.ensureErr != nil {
		return fmt.Errorf("ensure bucket %q: %w", s.bucket, s.ensureErr)
	}
	return nil
}

// Upload stores localPath under a fresh key and removes the local file.
func (s *MinIOStorage) Upload(ctx context.Context, localPath string, kind Kind) (upload *Upload, err error) {
	defer removeTemp(localPath)
	defer func() { recordUpload(kind, upload, err) }()

	if err := s.EnsureBucket(ctx); err != nil {
		return nil, models.NewUpstreamError("Object storage unavailable", err)
	}

	key := objectKey(kind, localPath)
	opts := minio.PutObjectOptions{ContentType: contentTypeFor(kind, key)}
	upload = &Upload{Key: key, URL: s.publicURL + "/" + key}

	if kind.IsImage() {
		f, err := os.Open(localPath)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		data, err := NormalizeImage(f, kind)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), opts)
		if err != nil {
			return nil, models.NewUpstreamError(fmt.Sprintf("Failed to upload %s", kind), err)
		}
		upload.Size = info.Size
		return upload, nil
	}

	if s.prober != nil {
		d, err := s.prober.Duration(ctx, localPath)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "duration probe failed",
				slog.String("kind", string(kind)), slog.String("error", err.Error()))
		}
		upload.Duration = d
	}
	info, err := s.client.FPutObject(ctx, s.bucket, key, localPath, opts)
	if err != nil {
		return nil, models.NewUpstreamError(fmt.Sprintf("Failed to upload %s", kind), err)
	}
	upload.Size = info.Size
	return upload, nil
}

// Delete removes an object. Empty keys are ignored.
func (s *MinIOStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return models.NewUpstreamError("Failed to delete object", err)
	}
	return nil
}

func removeTemp(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		middleware.Logger.Warn("failed to remove temp upload",
			slog.String("path", path), slog.String("error", err.Error()))
	}
}

func recordUpload(kind Kind, upload *Upload, err error) {
	if err != nil {
		observability.UploadsTotal.WithLabelValues(string(kind), "error").Inc()
		return
	}
	observability.UploadsTotal.WithLabelValues(string(kind), "ok").Inc()
	if upload != nil {
		observability.UploadBytes.WithLabelValues(string(kind)).Observe(float64(upload.Size))
	}
}
