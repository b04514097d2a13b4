// Package minio stores rendered report artifacts in S3-compatible object
// storage and hands out presigned download links.
package minio

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/patentminer/patentminer/internal/config"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

// objectAPI abstracts the minio client surface this package uses, so tests
// can substitute a fake.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// ArtifactStore uploads and serves report artifacts from one bucket.
type ArtifactStore struct {
	api    objectAPI
	bucket string
	logger logging.Logger
}

// NewArtifactStore connects to object storage and ensures the report bucket
// exists.
func NewArtifactStore(ctx context.Context, cfg config.MinIOConfig, log logging.Logger) (*ArtifactStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create minio client")
	}

	store := &ArtifactStore{api: client, bucket: cfg.ReportBucket, logger: log.Named("artifacts")}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}

	log.Info("MinIO artifact store ready",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("bucket", cfg.ReportBucket))
	return store, nil
}

// newArtifactStoreWithAPI wires a fake API, used by tests.
func newArtifactStoreWithAPI(api objectAPI, bucket string, log logging.Logger) *ArtifactStore {
	return &ArtifactStore{api: api, bucket: bucket, logger: log}
}

func (s *ArtifactStore) ensureBucket(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to check report bucket")
	}
	if exists {
		return nil
	}
	if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to create report bucket")
	}
	s.logger.Info("created report bucket", logging.String("bucket", s.bucket))
	return nil
}

// Bucket returns the bucket artifacts land in.
func (s *ArtifactStore) Bucket() string {
	return s.bucket
}

// Upload stores one artifact and returns the byte count written.
func (s *ArtifactStore) Upload(ctx context.Context, objectKey, contentType string, body []byte) (int64, error) {
	info, err := s.api.PutObject(ctx, s.bucket, objectKey,
		bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeReportUploadFailed, "failed to upload report artifact")
	}
	s.logger.Debug("uploaded artifact",
		logging.String("object_key", objectKey),
		logging.Int64("size", info.Size))
	return info.Size, nil
}

// Download reads an artifact back in full.
func (s *ArtifactStore) Download(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := s.api.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to fetch report artifact")
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to read report artifact")
	}
	return body, nil
}

// PresignedURL issues a time-limited download link.
func (s *ArtifactStore) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = time.Hour
	}
	u, err := s.api.PresignedGetObject(ctx, s.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExternalService, "failed to presign artifact url")
	}
	return u.String(), nil
}

// Remove deletes an artifact.
func (s *ArtifactStore) Remove(ctx context.Context, objectKey string) error {
	if err := s.api.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to remove report artifact")
	}
	return nil
}
