package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/pribylovaa/go-marketplace/internal/models"
	"github.com/pribylovaa/go-marketplace/internal/storage"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func validDraft() models.Product {
	return models.Product{
		Name:           " Vintage lamp ",
		Details:        "Brass, working",
		MinBidAmount:   10,
		BiddingEndDate: time.Now().Add(48 * time.Hour),
		Category:       "home",
		Quantity:       "1",
		Location:       "Riga, Latvia",
	}
}

func pngImage() *models.Upload {
	return &models.Upload{
		Filename:    "lamp.png",
		ContentType: "image/png",
		Size:        3,
		Body:        bytes.NewReader([]byte{1, 2, 3}),
	}
}

func TestCreateProduct_OK(t *testing.T) {
	t.Parallel()

	svc, st, objs := newSvc(t)
	seller := uuid.New()

	objs.EXPECT().Upload(gomock.Any(), "products", gomock.Any()).Return("http://cdn/products/1.png", nil)
	st.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p models.Product) (*models.Product, error) {
			require.Equal(t, "Vintage lamp", p.Name)
			require.Equal(t, seller, p.SellerID)
			require.Equal(t, "http://cdn/products/1.png", p.ImageURL)
			p.ID = "65f000000000000000000001"
			return &p, nil
		})

	p, err := svc.CreateProduct(context.Background(), seller, validDraft(), pngImage())
	require.NoError(t, err)
	require.Equal(t, "65f000000000000000000001", p.ID)
}

func TestCreateProduct_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(p *models.Product)
	}{
		{"short_name", func(p *models.Product) { p.Name = " a " }},
		{"long_name", func(p *models.Product) { p.Name = string(bytes.Repeat([]byte("n"), 101)) }},
		{"short_details", func(p *models.Product) { p.Details = "abcd" }},
		{"min_bid_lt_1", func(p *models.Product) { p.MinBidAmount = 0.5 }},
		{"max_bid_lt_1", func(p *models.Product) { p.MaxBidAmount = ptr(0.5) }},
		{"max_bid_lt_min", func(p *models.Product) { p.MaxBidAmount = ptr(5.0) }},
		{"no_end_date", func(p *models.Product) { p.BiddingEndDate = time.Time{} }},
		{"no_category", func(p *models.Product) { p.Category = " " }},
		{"no_quantity", func(p *models.Product) { p.Quantity = "" }},
		{"short_location", func(p *models.Product) { p.Location = "Riga" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, _, _ := newSvc(t)
			d := validDraft()
			tt.mutate(&d)

			_, err := svc.CreateProduct(context.Background(), uuid.New(), d, pngImage())
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestCreateProduct_ImageRequiredAndRejected(t *testing.T) {
	t.Parallel()

	svc, _, objs := newSvc(t)

	_, err := svc.CreateProduct(context.Background(), uuid.New(), validDraft(), nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	objs.EXPECT().Upload(gomock.Any(), "products", gomock.Any()).Return("", storage.ErrInvalidArgument)
	_, err = svc.CreateProduct(context.Background(), uuid.New(), validDraft(), pngImage())
	require.ErrorIs(t, err, ErrInvalidArgument)

	objs.EXPECT().Upload(gomock.Any(), "products", gomock.Any()).Return("", storage.ErrUnavailable)
	_, err = svc.CreateProduct(context.Background(), uuid.New(), validDraft(), pngImage())
	require.ErrorIs(t, err, storage.ErrUnavailable)
	require.NotErrorIs(t, err, ErrInvalidArgument)
}

func storedProduct(seller uuid.UUID) *models.Product {
	p := validDraft()
	p.ID = "65f000000000000000000001"
	p.Name = "Vintage lamp"
	p.SellerID = seller
	return &p
}

func TestUpdateProduct(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)
	seller := uuid.New()
	cur := storedProduct(seller)

	// Пустое обновление.
	_, err := svc.UpdateProduct(context.Background(), cur.ID, seller, models.ProductUpdate{})
	require.ErrorIs(t, err, ErrInvalidArgument)

	// Чужой лот неотличим от отсутствующего.
	st.EXPECT().ProductByID(gomock.Any(), cur.ID).Return(cur, nil)
	_, err = svc.UpdateProduct(context.Background(), cur.ID, uuid.New(), models.ProductUpdate{Name: ptr("New")})
	require.ErrorIs(t, err, ErrNotFound)

	st.EXPECT().ProductByID(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)
	_, err = svc.UpdateProduct(context.Background(), "missing", seller, models.ProductUpdate{Name: ptr("New")})
	require.ErrorIs(t, err, ErrNotFound)

	// Валидация после слияния: max < текущего min.
	st.EXPECT().ProductByID(gomock.Any(), cur.ID).Return(cur, nil)
	_, err = svc.UpdateProduct(context.Background(), cur.ID, seller, models.ProductUpdate{MaxBidAmount: ptr(5.0)})
	require.ErrorIs(t, err, ErrInvalidArgument)

	// OK, поля обрезаются.
	st.EXPECT().ProductByID(gomock.Any(), cur.ID).Return(cur, nil)
	st.EXPECT().UpdateProduct(gomock.Any(), cur.ID, seller, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ uuid.UUID, u models.ProductUpdate) (*models.Product, error) {
			require.Equal(t, "Lamp", *u.Name)
			out := *cur
			out.Name = *u.Name
			return &out, nil
		})
	p, err := svc.UpdateProduct(context.Background(), cur.ID, seller, models.ProductUpdate{Name: ptr(" Lamp ")})
	require.NoError(t, err)
	require.Equal(t, "Lamp", p.Name)
}

func TestUpdateProductImage_ForeignDoesNotUpload(t *testing.T) {
	t.Parallel()

	svc, st, objs := newSvc(t)
	seller := uuid.New()
	cur := storedProduct(seller)

	st.EXPECT().ProductByID(gomock.Any(), cur.ID).Return(cur, nil)
	objs.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.UpdateProductImage(context.Background(), cur.ID, uuid.New(), pngImage())
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateProductImage(context.Background(), cur.ID, seller, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestUpdateProductImage_OK(t *testing.T) {
	t.Parallel()

	svc, st, objs := newSvc(t)
	seller := uuid.New()
	cur := storedProduct(seller)

	st.EXPECT().ProductByID(gomock.Any(), cur.ID).Return(cur, nil)
	objs.EXPECT().Upload(gomock.Any(), "products", gomock.Any()).Return("http://cdn/products/2.png", nil)
	st.EXPECT().UpdateProductImage(gomock.Any(), cur.ID, seller, "http://cdn/products/2.png").
		DoAndReturn(func(_ context.Context, _ string, _ uuid.UUID, url string) (*models.Product, error) {
			out := *cur
			out.ImageURL = url
			return &out, nil
		})

	p, err := svc.UpdateProductImage(context.Background(), cur.ID, seller, pngImage())
	require.NoError(t, err)
	require.Equal(t, "http://cdn/products/2.png", p.ImageURL)
}

func TestDeleteProduct(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)
	seller := uuid.New()

	st.EXPECT().DeleteProduct(gomock.Any(), "id1", seller).Return(nil)
	require.NoError(t, svc.DeleteProduct(context.Background(), "id1", seller))

	st.EXPECT().DeleteProduct(gomock.Any(), "id2", seller).Return(storage.ErrNotFound)
	require.ErrorIs(t, svc.DeleteProduct(context.Background(), "id2", seller), ErrNotFound)
}

func TestListAndGetProducts(t *testing.T) {
	t.Parallel()

	svc, st, _ := newSvc(t)

	st.EXPECT().ListProducts(gomock.Any(), models.ListParams{PageSize: 5, Category: "home"}).
		Return(&models.ProductPage{Items: []models.Product{*storedProduct(uuid.New())}, NextPageToken: "n"}, nil)
	page, err := svc.ListProducts(context.Background(), models.ListParams{PageSize: 5, Category: " home "})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	st.EXPECT().ListProducts(gomock.Any(), gomock.Any()).Return(nil, storage.ErrInvalidCursor)
	_, err = svc.ListProducts(context.Background(), models.ListParams{PageToken: "bad"})
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.ListProducts(context.Background(), models.ListParams{PageSize: -1})
	require.ErrorIs(t, err, ErrInvalidArgument)

	st.EXPECT().ProductByID(gomock.Any(), "nope").Return(nil, storage.ErrNotFound)
	_, err = svc.ProductByID(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}
