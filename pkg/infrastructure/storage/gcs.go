// Package storage adapts Google Cloud Storage to the BlobStore interface.
package storage

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
)

// StorageAdapter reads and writes objects in GCS.
type StorageAdapter struct {
	Client *storage.Client
}

func (a *StorageAdapter) Write(ctx context.Context, bucketName, objectName string, data []byte) error {
	wc := a.Client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return wrap(err, bucketName, objectName)
	}
	if err := wc.Close(); err != nil {
		return wrap(err, bucketName, objectName)
	}
	return nil
}

func (a *StorageAdapter) Read(ctx context.Context, bucketName, objectName string) ([]byte, error) {
	rc, err := a.Client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, wrap(err, bucketName, objectName)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, wrap(err, bucketName, objectName)
	}
	return data, nil
}

func wrap(err error, bucket, object string) error {
	base := apperrors.ErrStorageError
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		// Missing objects will not appear on retry.
		base = apperrors.New(apperrors.CodeStorageError, "object not found")
	}
	return base.WithCause(err).WithMetadata("object", "gs://"+bucket+"/"+object)
}
