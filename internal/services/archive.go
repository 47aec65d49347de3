package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ImageArchive keeps original invoice photos in S3-compatible storage so
// detections can be audited later. The archive is optional: the server
// runs without one when no endpoint is configured.
type ImageArchive struct {
	client *minio.Client
	bucket string
	region string
}

// NewImageArchive creates an archive backed by an S3-compatible endpoint.
func NewImageArchive(endpoint, accessKey, secretKey, bucket, region string, useSSL bool) (*ImageArchive, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &ImageArchive{
		client: client,
		bucket: bucket,
		region: region,
	}, nil
}

// EnsureBucket creates the archive bucket if it doesn't exist.
func (a *ImageArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		err = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// Store uploads an invoice image keyed by invoice id and upload date.
func (a *ImageArchive) Store(ctx context.Context, invoiceID, filename, contentType string, data []byte) (string, error) {
	key := path.Join("invoices", time.Now().UTC().Format("2006/01/02"), invoiceID+path.Ext(filename))

	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload invoice image: %w", err)
	}
	return key, nil
}

// PresignedURL generates a temporary download link for an archived image.
func (a *ImageArchive) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	url, err := a.client.PresignedGetObject(ctx, a.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url.String(), nil
}
