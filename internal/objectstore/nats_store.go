// Package objectstore persists rendered speech clips in NATS JetStream
// object storage so announce requesters can fetch audio out of band.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// ClipStore implements core.ObjectStore on a JetStream object bucket.
type ClipStore struct {
	bucket string
	store  nats.ObjectStore
}

// New creates the clip bucket, or binds to it when another instance already
// created it.
func New(jetstreamContext nats.JetStreamContext, bucketName string) (*ClipStore, error) {
	store, err := jetstreamContext.CreateObjectStore(&nats.ObjectStoreConfig{
		Bucket:      bucketName,
		Description: fmt.Sprintf("Rendered speech clips for the %s bucket.", bucketName),
		TTL:         0,
		MaxBytes:    0,
		Storage:     nats.FileStorage,
		Replicas:    1,
		Placement:   nil,
		Metadata:    nil,
		Compression: false,
	})
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketExists) {
			return nil, fmt.Errorf("failed to create clip bucket '%s': %w", bucketName, err)
		}

		store, err = jetstreamContext.ObjectStore(bucketName)
		if err != nil {
			return nil, fmt.Errorf("failed to bind to clip bucket '%s': %w", bucketName, err)
		}
	}

	return &ClipStore{
		bucket: bucketName,
		store:  store,
	}, nil
}

// Download retrieves a stored clip by key.
func (s *ClipStore) Download(_ context.Context, key string) ([]byte, error) {
	obj, err := s.store.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to get clip '%s' from bucket '%s': %w", key, s.bucket, err)
	}

	data, readErr := io.ReadAll(obj)
	closeErr := obj.Close()

	if readErr != nil {
		return nil, fmt.Errorf("failed to read clip '%s': %w", key, readErr)
	}

	if closeErr != nil {
		return data, fmt.Errorf("failed to close clip '%s': %w", key, closeErr)
	}

	return data, nil
}

// Upload stores a rendered clip under the given key.
func (s *ClipStore) Upload(_ context.Context, key string, data []byte) error {
	reader := bytes.NewReader(data)

	_, err := s.store.Put(&nats.ObjectMeta{
		Name:        key,
		Description: "rendered speech clip",
		Headers:     nil,
		Metadata:    nil,
		Opts:        nil,
	}, reader)
	if err != nil {
		return fmt.Errorf("failed to put clip '%s' to bucket '%s': %w", key, s.bucket, err)
	}

	return nil
}
