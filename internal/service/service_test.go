package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/pribylovaa/go-marketplace/internal/config"
	"github.com/pribylovaa/go-marketplace/internal/models"
	"github.com/pribylovaa/go-marketplace/internal/pkg/log"
	"github.com/pribylovaa/go-marketplace/mocks"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testCfg() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			AccessTokenSecret:  "access-secret",
			RefreshTokenSecret: "refresh-secret",
			AccessTokenTTL:     time.Hour,
			RefreshTokenTTL:    7 * 24 * time.Hour,
			Issuer:             "marketplace",
			BcryptCost:         bcrypt.MinCost,
		},
		Limits: config.LimitsConfig{Default: 20, Max: 100},
	}
}

func newSvc(t *testing.T) (*Service, *mocks.MockStorage, *mocks.MockObjectStorage) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	objs := mocks.NewMockObjectStorage(ctrl)
	return New(st, objs, testCfg()), st, objs
}

func mustHashPW(t *testing.T, svc *Service, pw string) string {
	t.Helper()
	h, err := svc.hasher.Hash(pw)
	require.NoError(t, err)
	return h
}

func newTestUser(t *testing.T, svc *Service, pw string) *models.User {
	t.Helper()
	now := time.Now().UTC()
	return &models.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@x.com",
		FullName:     "Alice",
		PhoneNumber:  "+10000000001",
		PasswordHash: mustHashPW(t, svc, pw),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// capLogger пишет логи в буфер и кладёт логгер в контекст.
func capLogger(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	lg := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return log.Into(context.Background(), lg), buf
}
