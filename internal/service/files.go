package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pribylovaa/go-marketplace/internal/models"
	"github.com/pribylovaa/go-marketplace/internal/pkg/log"
	"github.com/pribylovaa/go-marketplace/internal/storage"
)

const filesPrefix = "files"

// UploadFile передаёт файл в объектное хранилище и сохраняет его метаданные.
func (s *Service) UploadFile(ctx context.Context, up models.Upload) (*models.File, error) {
	const op = "service.files.UploadFile"

	name := filepath.Base(strings.TrimSpace(up.Filename))
	if name == "" || name == "." || name == "/" {
		return nil, fmt.Errorf("%s: filename is required: %w", op, ErrInvalidArgument)
	}
	up.Filename = name

	url, err := s.upload(ctx, filesPrefix, up)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f, err := s.storage.SaveFile(ctx, models.File{Filename: name, FileURL: url})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("file_uploaded",
		slog.String("file_id", f.ID),
		slog.Int64("size", up.Size),
	)

	return f, nil
}

// upload — общий relay в объектное хранилище; отказ по типу/размеру — ErrInvalidArgument.
func (s *Service) upload(ctx context.Context, prefix string, up models.Upload) (string, error) {
	url, err := s.objects.Upload(ctx, prefix, up)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidArgument) {
			return "", fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}

		return "", err
	}

	return url, nil
}
