package media_storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/khoahotran/careerfolio/internal/application/service"
	"github.com/khoahotran/careerfolio/internal/config"
	"github.com/khoahotran/careerfolio/pkg/apperror"
	"github.com/khoahotran/careerfolio/pkg/logger"
)

type minioVideoStore struct {
	client *minio.Client
	bucket string
	logger logger.Logger
}

// NewMinioVideoStore connects to MinIO and creates the video bucket if needed.
func NewMinioVideoStore(ctx context.Context, cfg config.Config, log logger.Logger) (service.VideoStore, error) {
	endpoint := strings.TrimPrefix(cfg.Minio.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")
	if endpoint == "" {
		return nil, fmt.Errorf("minio endpoint has not config")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Minio.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", cfg.Minio.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Minio.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.Minio.Bucket, err)
		}
		log.Info("Created video bucket", zap.String("bucket", cfg.Minio.Bucket))
	}

	log.Info("connect MinIO successfully.", zap.String("endpoint", endpoint))
	return &minioVideoStore{client: client, bucket: cfg.Minio.Bucket, logger: log}, nil
}

func (s *minioVideoStore) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return apperror.NewInternal("failed to store video", err)
	}
	return nil
}

func (s *minioVideoStore) Open(ctx context.Context, objectName string) (service.VideoObject, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperror.NewInternal("failed to open video", err)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, apperror.NewNotFound("video", objectName)
		}
		return nil, apperror.NewInternal("failed to stat video", err)
	}
	return &minioVideo{Object: obj, info: info}, nil
}

func (s *minioVideoStore) Remove(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return apperror.NewInternal("failed to remove video", err)
	}
	return nil
}

type minioVideo struct {
	*minio.Object
	info minio.ObjectInfo
}

func (v *minioVideo) Size() int64 { return v.info.Size }

func (v *minioVideo) ContentType() string { return v.info.ContentType }

func (v *minioVideo) ModTime() time.Time { return v.info.LastModified }
