// Package storage archives rendered invoice PDFs in MinIO so repeat
// downloads don't re-render. Archival is optional: when MinIO is not
// configured the portal renders every download on demand.
package storage

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"simcoe_portal/platform/apperr"
	"simcoe_portal/platform/config"
)

// Archive stores invoice PDFs keyed by quote id.
type Archive struct {
	client *minio.Client
	bucket string
}

// New creates the invoice archive.
func New(cfg config.StorageConfig) (*Archive, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, apperr.New(apperr.KindUnavailable, "MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "create MinIO client", err)
	}

	return &Archive{client: client, bucket: cfg.GetMinioBucketInvoicePDFs()}, nil
}

// EnsureBucket creates the invoice bucket if it doesn't exist. Called
// once at startup.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "check invoice bucket", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return apperr.Wrap(apperr.KindUnavailable, "create invoice bucket", err)
		}
	}
	return nil
}

func objectKey(quoteID string) string {
	return "invoices/" + quoteID + ".pdf"
}

// Put stores the rendered invoice for a quote, replacing any previous
// copy. The key is deterministic so a re-render overwrites in place.
func (a *Archive) Put(ctx context.Context, quoteID string, pdf []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, objectKey(quoteID),
		bytes.NewReader(pdf), int64(len(pdf)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "archive invoice", err)
	}
	return nil
}

// Get returns the archived invoice for a quote.
func (a *Archive) Get(ctx context.Context, quoteID string) ([]byte, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, objectKey(quoteID), minio.GetObjectOptions{})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "fetch archived invoice", err)
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		var respErr minio.ErrorResponse
		if errors.As(err, &respErr) && respErr.Code == "NoSuchKey" {
			return nil, apperr.NotFound("no archived invoice for quote")
		}
		return nil, apperr.Wrap(apperr.KindUnavailable, "read archived invoice", err)
	}
	return raw, nil
}

// Drop removes the archived invoice, typically after the quote is
// deleted upstream.
func (a *Archive) Drop(ctx context.Context, quoteID string) error {
	if err := a.client.RemoveObject(ctx, a.bucket, objectKey(quoteID), minio.RemoveObjectOptions{}); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "drop archived invoice", err)
	}
	return nil
}
