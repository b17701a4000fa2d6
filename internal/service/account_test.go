package service

import (
	"context"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/pribylovaa/go-marketplace/internal/models"
	"github.com/pribylovaa/go-marketplace/internal/storage"
	"github.com/stretchr/testify/require"
)

func validRegistration() models.Registration {
	return models.Registration{
		FullName:    " Alice Liddell ",
		PhoneNumber: "+10000000001",
		Email:       " Alice@X.com ",
		Username:    " Alice ",
		Password:    "secret1",
	}
}

func TestRegister_OK_NormalizesAndHashes(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)

	var saved *models.User
	st.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		})

	pub, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	require.Equal(t, "alice", pub.Username)
	require.Equal(t, "alice@x.com", pub.Email)
	require.Equal(t, "Alice Liddell", pub.FullName)
	require.NotEqual(t, uuid.Nil, pub.ID)

	require.NotEqual(t, "secret1", saved.PasswordHash)
	require.Empty(t, saved.RefreshToken)

	ok, err := svc.hasher.Verify("secret1", saved.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(r *models.Registration)
	}{
		{"no_full_name", func(r *models.Registration) { r.FullName = "  " }},
		{"no_phone", func(r *models.Registration) { r.PhoneNumber = "" }},
		{"no_email", func(r *models.Registration) { r.Email = "" }},
		{"bad_email", func(r *models.Registration) { r.Email = "not-an-email" }},
		{"no_username", func(r *models.Registration) { r.Username = " " }},
		{"short_username", func(r *models.Registration) { r.Username = "al" }},
		{"no_password", func(r *models.Registration) { r.Password = "" }},
		{"short_password", func(r *models.Registration) { r.Password = "12345" }},
		{"long_password", func(r *models.Registration) { r.Password = strings.Repeat("x", 73) }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, _, _ := newSvc(t)
			in := validRegistration()
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestRegister_Conflict(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)
	st.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(storage.ErrAlreadyExists)

	_, err := svc.Register(context.Background(), validRegistration())
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)
	user := newTestUser(t, svc, "secret1")

	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil)
	pub, err := svc.CurrentUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Public(), pub)

	missing := uuid.New()
	st.EXPECT().UserByID(gomock.Any(), missing).Return(nil, storage.ErrNotFound)
	_, err = svc.CurrentUser(context.Background(), missing)
	require.ErrorIs(t, err, ErrPrincipalNotFound)
}

func TestUpdateAccount(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)
	user := newTestUser(t, svc, "secret1")

	want := models.AccountUpdate{FullName: "Alice B", PhoneNumber: "+12", Email: "new@x.com"}
	updated := *user
	updated.FullName, updated.PhoneNumber, updated.Email = want.FullName, want.PhoneNumber, want.Email

	st.EXPECT().UpdateAccount(gomock.Any(), user.ID, want).Return(&updated, nil)

	pub, err := svc.UpdateAccount(context.Background(), user.ID, models.AccountUpdate{
		FullName:    " Alice B ",
		PhoneNumber: "+12",
		Email:       "NEW@x.com",
	})
	require.NoError(t, err)
	require.Equal(t, "new@x.com", pub.Email)

	_, err = svc.UpdateAccount(context.Background(), user.ID, models.AccountUpdate{FullName: "A", Email: "a@x.com"})
	require.ErrorIs(t, err, ErrInvalidArgument)

	st.EXPECT().UpdateAccount(gomock.Any(), user.ID, gomock.Any()).Return(nil, storage.ErrAlreadyExists)
	_, err = svc.UpdateAccount(context.Background(), user.ID, want)
	require.ErrorIs(t, err, ErrAlreadyExists)

	st.EXPECT().UpdateAccount(gomock.Any(), user.ID, gomock.Any()).Return(nil, storage.ErrNotFound)
	_, err = svc.UpdateAccount(context.Background(), user.ID, want)
	require.ErrorIs(t, err, ErrPrincipalNotFound)
}
