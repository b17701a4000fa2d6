// Package minio — объектное хранилище изображений товаров и файлов на базе MinIO/S3.
// Файлы передаются через сервис (relay): PutObject под ключом <prefix>/<uuid><ext>,
// наружу отдаётся публичный URL объекта.
package minio

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pribylovaa/go-marketplace/internal/config"
	"github.com/pribylovaa/go-marketplace/internal/storage"
)

// Objects — адаптер MinIO для загрузки объектов.
type Objects struct {
	cfg    *config.Config
	client *mclient.Client
}

// New создаёт клиент MinIO.
// Убирает схему из endpoint, подбирает Secure по схеме
// и проверяет наличие целевого бакета (fail-fast).
func New(ctx context.Context, cfg *config.Config) (*Objects, error) {
	const op = "storage/minio/New"

	endpoint, secure := splitEndpoint(cfg.S3.Endpoint)

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.S3.RootUser, cfg.S3.RootPassword, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.S3.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.S3.Bucket)
	}

	return &Objects{cfg: cfg, client: client}, nil
}

var _ storage.ObjectStorage = (*Objects)(nil)

// splitEndpoint возвращает host[:port] и признак TLS.
func splitEndpoint(raw string) (string, bool) {
	endpoint := raw
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	return endpoint, secure
}
