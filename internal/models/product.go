package models

import (
	"time"

	"github.com/google/uuid"
)

// Product — лот на площадке.
// ID — ObjectID MongoDB в hex-виде. MaxBidAmount опционален.
type Product struct {
	ID             string
	Name           string
	Details        string
	ImageURL       string
	MinBidAmount   float64
	MaxBidAmount   *float64
	LastBidAmount  float64
	BiddingEndDate time.Time
	Category       string
	SellerID       uuid.UUID
	Quantity       string
	Location       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProductUpdate — частичное обновление лота: nil-поля не меняются.
type ProductUpdate struct {
	Name           *string
	Details        *string
	MinBidAmount   *float64
	MaxBidAmount   *float64
	BiddingEndDate *time.Time
	Category       *string
	Quantity       *string
	Location       *string
}

// Empty сообщает, что в обновлении нет ни одного поля.
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Details == nil && u.MinBidAmount == nil && u.MaxBidAmount == nil &&
		u.BiddingEndDate == nil && u.Category == nil && u.Quantity == nil && u.Location == nil
}

// ListParams — параметры постраничной выдачи.
type ListParams struct {
	PageSize  int32
	PageToken string
	Category  string
}

// ProductPage — страница товаров.
type ProductPage struct {
	Items         []Product
	NextPageToken string
}
