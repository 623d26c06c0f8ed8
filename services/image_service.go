package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"carrental-api/config"
	"carrental-api/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	MaxImageSize = 5 << 20

	carImageFolder  = "cars"
	userImageFolder = "users"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// Upload is an image received from a client.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// ImageStore persists images and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// readImage loads at most MaxImageSize bytes and checks the content type by
// sniffing, ignoring whatever the client declared.
func readImage(upload *Upload) ([]byte, *mimetype.MIME, error) {
	if upload == nil || upload.Reader == nil {
		return nil, nil, utils.ValidationError("Image file is required")
	}
	data, err := io.ReadAll(io.LimitReader(upload.Reader, MaxImageSize+1))
	if err != nil {
		return nil, nil, utils.ValidationError("Could not read image file")
	}
	if len(data) == 0 {
		return nil, nil, utils.ValidationError("Image file is required")
	}
	if len(data) > MaxImageSize {
		return nil, nil, utils.ValidationError("Image file is too large")
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return nil, nil, utils.ValidationError("Only JPEG, PNG and WEBP images are allowed")
	}
	return data, mtype, nil
}

func storeImage(ctx context.Context, store ImageStore, folder string, upload *Upload) (string, error) {
	data, mtype, err := readImage(upload)
	if err != nil {
		return "", err
	}
	key := path.Join(folder, uuid.NewString()+mtype.Extension())
	url, err := store.Put(ctx, key, mtype.String(), data)
	if err != nil {
		return "", utils.InternalError("Failed to upload image", err)
	}
	return url, nil
}

type MinioImageStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewMinioImageStore(cfg *config.Config) (*MinioImageStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	publicURL := cfg.MinioPublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
	}

	return &MinioImageStore{
		client:    client,
		bucket:    cfg.MinioBucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// EnsureBucket creates the image bucket if it does not exist yet.
func (s *MinioImageStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("creating bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *MinioImageStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}
