package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// MaxImageBytes caps every uploaded image.
const MaxImageBytes = 5 << 20

var (
	ErrNotImage = errors.New("file is not a supported image")
	ErrTooLarge = errors.New("image exceeds 5 MiB")
)

var allowedImages = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Uploader interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error)
}

// GCSUploader writes objects to a Firebase Storage bucket and returns a
// token-protected download URL.
type GCSUploader struct {
	client *storage.Client
	bucket string
}

func NewGCSUploader(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSUploader, error) {
	if bucket == "" {
		return nil, errors.New("STORAGE_BUCKET is not set")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GCSUploader{client: client, bucket: bucket}, nil
}

func (u *GCSUploader) Upload(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	token := uuid.NewString()
	w := u.client.Bucket(u.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return PublicURL(u.bucket, objectPath, token), nil
}

func (u *GCSUploader) Close() error {
	return u.client.Close()
}

func PublicURL(bucket, objectPath, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(objectPath), token)
}

// SniffImage checks the content, not the client's claimed type, and returns
// the mime type and file extension to store it under.
func SniffImage(data []byte) (string, string, error) {
	if len(data) > MaxImageBytes {
		return "", "", ErrTooLarge
	}
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if ext, ok := allowedImages[m.String()]; ok {
			return m.String(), ext, nil
		}
	}
	return "", "", ErrNotImage
}

// ObjectPath builds a collision-free object name under prefix/uid/.
func ObjectPath(prefix, uid, ext string) string {
	return strings.Trim(prefix, "/") + "/" + uid + "/" + uuid.NewString() + ext
}
