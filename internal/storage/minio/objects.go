package minio

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"
	"github.com/pribylovaa/go-marketplace/internal/models"
	"github.com/pribylovaa/go-marketplace/internal/storage"
)

// Upload валидирует тип и размер, кладёт объект в бакет и возвращает публичный URL.
func (o *Objects) Upload(ctx context.Context, prefix string, up models.Upload) (string, error) {
	const op = "storage/minio/Upload"

	if up.Body == nil || up.Size <= 0 || up.Size > o.cfg.Uploads.MaxSizeBytes {
		return "", fmt.Errorf("%s: size %d: %w", op, up.Size, storage.ErrInvalidArgument)
	}

	if !isAllowedContentType(o.cfg.Uploads.AllowedContentTypes, up.ContentType) {
		return "", fmt.Errorf("%s: content type %q: %w", op, up.ContentType, storage.ErrInvalidArgument)
	}

	key := objectKey(prefix, up.ContentType, up.Filename)

	_, err := o.client.PutObject(ctx, o.cfg.S3.Bucket, key, up.Body, up.Size, mclient.PutObjectOptions{
		ContentType: up.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
	}

	return o.objectURL(key), nil
}

// objectKey формирует ключ вида <prefix>/<uuid><ext>.
func objectKey(prefix, contentType, filename string) string {
	return path.Join(strings.Trim(prefix, "/"), uuid.NewString()+extFor(contentType, filename))
}

// extFor подбирает расширение по типу содержимого, иначе берёт его из имени файла.
func extFor(contentType, filename string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "application/pdf":
		return ".pdf"
	}

	return strings.ToLower(filepath.Ext(filename))
}

// objectURL — публичный адрес объекта: PublicBaseURL, если задан, иначе endpoint/bucket.
func (o *Objects) objectURL(key string) string {
	if base := strings.TrimRight(o.cfg.S3.PublicBaseURL, "/"); base != "" {
		return base + "/" + key
	}

	return strings.TrimRight(o.client.EndpointURL().String(), "/") + "/" + o.cfg.S3.Bucket + "/" + key
}

// isAllowedContentType проверяет, что тип содержимого входит в allow-list.
func isAllowedContentType(allow []string, contentType string) bool {
	for _, a := range allow {
		if a == contentType {
			return true
		}
	}

	return false
}
