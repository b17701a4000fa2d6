package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	apierrors "github.com/pribylovaa/go-marketplace/internal/http/errors"
	"github.com/pribylovaa/go-marketplace/internal/models"
)

const productImageField = "productImage"

func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var params models.ListParams
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			apierrors.WriteError(w, r, invalidArgument("bad page_size"))
			return
		}

		params.PageSize = int32(n)
	}

	params.PageToken = q.Get("page_token")
	params.Category = q.Get("category")

	page, err := h.svc.ListProducts(r.Context(), params)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, productPageFromModel(page))
}

func (h *Handlers) ProductByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.ProductByID(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, productFromModel(p))
}

// CreateProduct принимает multipart-форму с полями лота и изображением productImage.
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	cleanup, err := h.parseForm(w, r)
	defer cleanup()
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	draft, err := productFromForm(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	image, closer, err := formUpload(r, productImageField)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	p, err := h.svc.CreateProduct(r.Context(), id.UserID, draft, image)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, productFromModel(p))
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in productPatchRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, invalidArgument("bad json"))
		return
	}

	p, err := h.svc.UpdateProduct(r.Context(), chi.URLParam(r, "productId"), id.UserID, in.toModel())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, productFromModel(p))
}

func (h *Handlers) UpdateProductImage(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	cleanup, err := h.parseForm(w, r)
	defer cleanup()
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	image, closer, err := formUpload(r, productImageField)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	p, err := h.svc.UpdateProductImage(r.Context(), chi.URLParam(r, "productId"), id.UserID, image)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, productFromModel(p))
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "productId"), id.UserID); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// productFromForm читает поля лота; числовые и даты разбираются здесь,
// остальная валидация — в сервисе.
func productFromForm(r *http.Request) (models.Product, error) {
	p := models.Product{
		Name:     r.FormValue("name"),
		Details:  r.FormValue("details"),
		Category: r.FormValue("category"),
		Quantity: r.FormValue("quantity"),
		Location: r.FormValue("location"),
	}

	minBid, err := strconv.ParseFloat(strings.TrimSpace(r.FormValue("min_bid_amount")), 64)
	if err != nil {
		return p, invalidArgument("bad min_bid_amount")
	}
	p.MinBidAmount = minBid

	if v := strings.TrimSpace(r.FormValue("max_bid_amount")); v != "" {
		maxBid, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, invalidArgument("bad max_bid_amount")
		}
		p.MaxBidAmount = &maxBid
	}

	end, err := parseDate(r.FormValue("bidding_end_date"))
	if err != nil {
		return p, invalidArgument("bad bidding_end_date")
	}
	p.BiddingEndDate = end

	return p, nil
}

// parseDate принимает RFC 3339 или голую дату YYYY-MM-DD (UTC).
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}

	return time.Parse(time.DateOnly, s)
}
