// Package storage keeps uploaded files in named buckets on top of a single
// gocloud.dev blob bucket. Each logical bucket is a key prefix.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

type Bucket string

const (
	MessageAttachments Bucket = "message_attachments"
	HotDeals           Bucket = "hot-deals"
	BusinessProfiles   Bucket = "business_profiles"
)

var (
	ErrUnknownBucket = errors.New("unknown bucket")
	ErrNotFound      = errors.New("object not found")
)

func (b Bucket) Valid() bool {
	switch b {
	case MessageAttachments, HotDeals, BusinessProfiles:
		return true
	}
	return false
}

type Store struct {
	bucket     *blob.Bucket
	publicBase string
}

// Open accepts any gocloud.dev blob URL, e.g. file:///srv/data, mem://, s3://name?region=x.
func Open(ctx context.Context, bucketURL, publicBase string) (*Store, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket: %w", err)
	}
	return New(bucket, publicBase), nil
}

func New(bucket *blob.Bucket, publicBase string) *Store {
	return &Store{bucket: bucket, publicBase: strings.TrimRight(publicBase, "/")}
}

func (s *Store) Close() error {
	return s.bucket.Close()
}

// Upload writes data under name and returns the object path within the bucket.
func (s *Store) Upload(ctx context.Context, bucket Bucket, name, contentType string, data []byte) (string, error) {
	if !bucket.Valid() {
		return "", ErrUnknownBucket
	}
	opts := &blob.WriterOptions{ContentType: contentType}
	if err := s.bucket.WriteAll(ctx, key(bucket, name), data, opts); err != nil {
		return "", fmt.Errorf("upload %s/%s: %w", bucket, name, err)
	}
	return name, nil
}

func (s *Store) Read(ctx context.Context, bucket Bucket, path string) ([]byte, string, error) {
	if !bucket.Valid() {
		return nil, "", ErrUnknownBucket
	}
	attrs, err := s.bucket.Attributes(ctx, key(bucket, path))
	if err != nil {
		return nil, "", translate(err)
	}
	data, err := s.bucket.ReadAll(ctx, key(bucket, path))
	if err != nil {
		return nil, "", translate(err)
	}
	return data, attrs.ContentType, nil
}

func (s *Store) Delete(ctx context.Context, bucket Bucket, path string) error {
	if !bucket.Valid() {
		return ErrUnknownBucket
	}
	return translate(s.bucket.Delete(ctx, key(bucket, path)))
}

// PublicURL escapes each segment of path so nested names keep their slashes.
func (s *Store) PublicURL(bucket Bucket, path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return s.publicBase + "/" + string(bucket) + "/" + strings.Join(segments, "/")
}

func key(bucket Bucket, name string) string {
	return string(bucket) + "/" + name
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if gcerrors.Code(err) == gcerrors.NotFound {
		return ErrNotFound
	}
	return err
}
