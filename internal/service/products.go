package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-marketplace/internal/models"
	"github.com/pribylovaa/go-marketplace/internal/pkg/log"
	"github.com/pribylovaa/go-marketplace/internal/storage"
)

const productImagesPrefix = "products"

// ListProducts возвращает страницу лотов, сначала новые.
func (s *Service) ListProducts(ctx context.Context, params models.ListParams) (*models.ProductPage, error) {
	const op = "service.products.ListProducts"

	if params.PageSize < 0 {
		return nil, fmt.Errorf("%s: page_size must be >= 0: %w", op, ErrInvalidArgument)
	}

	params.Category = strings.TrimSpace(params.Category)

	page, err := s.storage.ListProducts(ctx, params)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCursor) {
			return nil, fmt.Errorf("%s: invalid page_token: %w", op, ErrInvalidArgument)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page, nil
}

// ProductByID возвращает лот по идентификатору.
func (s *Service) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	const op = "service.products.ProductByID"

	p, err := s.storage.ProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapProductErr(err))
	}

	return p, nil
}

// CreateProduct валидирует лот, передаёт изображение в объектное хранилище
// и сохраняет лот от имени продавца.
func (s *Service) CreateProduct(ctx context.Context, sellerID uuid.UUID, draft models.Product, image *models.Upload) (*models.Product, error) {
	const op = "service.products.CreateProduct"

	draft = trimProduct(draft)
	if err := validateProduct(draft); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if image == nil {
		return nil, fmt.Errorf("%s: product image is required: %w", op, ErrInvalidArgument)
	}

	url, err := s.upload(ctx, productImagesPrefix, *image)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	draft.ID = ""
	draft.SellerID = sellerID
	draft.ImageURL = url
	draft.LastBidAmount = 0

	p, err := s.storage.CreateProduct(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.From(ctx).Info("product_created",
		slog.String("product_id", p.ID),
		slog.String("seller_id", sellerID.String()),
	)

	return p, nil
}

// UpdateProduct частично обновляет лот. Изменять может только продавец;
// чужой лот неотличим от отсутствующего.
func (s *Service) UpdateProduct(ctx context.Context, id string, sellerID uuid.UUID, upd models.ProductUpdate) (*models.Product, error) {
	const op = "service.products.UpdateProduct"

	if upd.Empty() {
		return nil, fmt.Errorf("%s: nothing to update: %w", op, ErrInvalidArgument)
	}

	current, err := s.ownedProduct(ctx, id, sellerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	merged := trimProduct(applyUpdate(*current, upd))
	if err := validateProduct(merged); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.storage.UpdateProduct(ctx, id, sellerID, trimUpdate(upd))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapProductErr(err))
	}

	return p, nil
}

// UpdateProductImage заменяет изображение лота продавца.
func (s *Service) UpdateProductImage(ctx context.Context, id string, sellerID uuid.UUID, image *models.Upload) (*models.Product, error) {
	const op = "service.products.UpdateProductImage"

	if image == nil {
		return nil, fmt.Errorf("%s: product image is required: %w", op, ErrInvalidArgument)
	}

	// Проверяем владельца до загрузки, чтобы не плодить объекты-сироты.
	if _, err := s.ownedProduct(ctx, id, sellerID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	url, err := s.upload(ctx, productImagesPrefix, *image)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.storage.UpdateProductImage(ctx, id, sellerID, url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapProductErr(err))
	}

	return p, nil
}

// DeleteProduct удаляет лот продавца.
func (s *Service) DeleteProduct(ctx context.Context, id string, sellerID uuid.UUID) error {
	const op = "service.products.DeleteProduct"

	if err := s.storage.DeleteProduct(ctx, id, sellerID); err != nil {
		return fmt.Errorf("%s: %w", op, mapProductErr(err))
	}

	log.From(ctx).Info("product_deleted",
		slog.String("product_id", id),
		slog.String("seller_id", sellerID.String()),
	)

	return nil
}

func (s *Service) ownedProduct(ctx context.Context, id string, sellerID uuid.UUID) (*models.Product, error) {
	p, err := s.storage.ProductByID(ctx, id)
	if err != nil {
		return nil, mapProductErr(err)
	}

	if p.SellerID != sellerID {
		return nil, ErrNotFound
	}

	return p, nil
}

func mapProductErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}

	return err
}

func trimProduct(p models.Product) models.Product {
	p.Name = strings.TrimSpace(p.Name)
	p.Details = strings.TrimSpace(p.Details)
	p.Category = strings.TrimSpace(p.Category)
	p.Quantity = strings.TrimSpace(p.Quantity)
	p.Location = strings.TrimSpace(p.Location)
	return p
}

func trimUpdate(u models.ProductUpdate) models.ProductUpdate {
	trim := func(s *string) *string {
		if s == nil {
			return nil
		}
		v := strings.TrimSpace(*s)
		return &v
	}

	u.Name = trim(u.Name)
	u.Details = trim(u.Details)
	u.Category = trim(u.Category)
	u.Quantity = trim(u.Quantity)
	u.Location = trim(u.Location)
	return u
}

func applyUpdate(p models.Product, u models.ProductUpdate) models.Product {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Details != nil {
		p.Details = *u.Details
	}
	if u.MinBidAmount != nil {
		p.MinBidAmount = *u.MinBidAmount
	}
	if u.MaxBidAmount != nil {
		v := *u.MaxBidAmount
		p.MaxBidAmount = &v
	}
	if u.BiddingEndDate != nil {
		p.BiddingEndDate = *u.BiddingEndDate
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Quantity != nil {
		p.Quantity = *u.Quantity
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	return p
}

// validateProduct проверяет поля лота.
func validateProduct(p models.Product) error {
	invalid := func(msg string) error {
		return fmt.Errorf("%s: %w", msg, ErrInvalidArgument)
	}

	switch n := utf8.RuneCountInString(p.Name); {
	case n < 2:
		return invalid("name must be at least 2 characters")
	case n > 100:
		return invalid("name must be at most 100 characters")
	}

	if utf8.RuneCountInString(p.Details) < 5 {
		return invalid("details must be at least 5 characters")
	}

	if p.MinBidAmount < 1 {
		return invalid("minBidAmount must be >= 1")
	}

	if p.MaxBidAmount != nil {
		if *p.MaxBidAmount < 1 {
			return invalid("maxBidAmount must be >= 1")
		}
		if *p.MaxBidAmount < p.MinBidAmount {
			return invalid("maxBidAmount must be >= minBidAmount")
		}
	}

	if p.BiddingEndDate.IsZero() {
		return invalid("biddingEndDate is required")
	}

	if p.Category == "" {
		return invalid("category is required")
	}

	if p.Quantity == "" {
		return invalid("quantity is required")
	}

	if utf8.RuneCountInString(p.Location) < 5 {
		return invalid("location must be at least 5 characters")
	}

	return nil
}
