package handlers

import (
	"time"

	"github.com/pribylovaa/go-marketplace/internal/models"
)

// Входные/выходные модели REST.

type registerRequest struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
}

func (r registerRequest) toModel() models.Registration {
	return models.Registration{
		FullName:    r.FullName,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
		Username:    r.Username,
		Password:    r.Password,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type updateAccountRequest struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

type okResponse struct {
	Ok bool `json:"ok"`
}

type userResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func userFromModel(u *models.PublicUser) userResponse {
	return userResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type tokensResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresAt  int64  `json:"access_expires_at"`  // Unix UTC
	RefreshExpiresAt int64  `json:"refresh_expires_at"` // Unix UTC
}

func tokensFromModel(p *models.TokenPair) tokensResponse {
	return tokensResponse{
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		AccessExpiresAt:  p.AccessExpiresAt.Unix(),
		RefreshExpiresAt: p.RefreshExpiresAt.Unix(),
	}
}

type sessionResponse struct {
	User userResponse `json:"user"`
	tokensResponse
}

type productPatchRequest struct {
	Name           *string    `json:"name"`
	Details        *string    `json:"details"`
	MinBidAmount   *float64   `json:"min_bid_amount"`
	MaxBidAmount   *float64   `json:"max_bid_amount"`
	BiddingEndDate *time.Time `json:"bidding_end_date"`
	Category       *string    `json:"category"`
	Quantity       *string    `json:"quantity"`
	Location       *string    `json:"location"`
}

func (p productPatchRequest) toModel() models.ProductUpdate {
	return models.ProductUpdate{
		Name:           p.Name,
		Details:        p.Details,
		MinBidAmount:   p.MinBidAmount,
		MaxBidAmount:   p.MaxBidAmount,
		BiddingEndDate: p.BiddingEndDate,
		Category:       p.Category,
		Quantity:       p.Quantity,
		Location:       p.Location,
	}
}

type productResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Details        string    `json:"details"`
	ImageURL       string    `json:"image_url"`
	MinBidAmount   float64   `json:"min_bid_amount"`
	MaxBidAmount   *float64  `json:"max_bid_amount,omitempty"`
	LastBidAmount  float64   `json:"last_bid_amount"`
	BiddingEndDate time.Time `json:"bidding_end_date"`
	Category       string    `json:"category"`
	SellerID       string    `json:"seller_id"`
	Quantity       string    `json:"quantity"`
	Location       string    `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func productFromModel(p *models.Product) productResponse {
	return productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Details:        p.Details,
		ImageURL:       p.ImageURL,
		MinBidAmount:   p.MinBidAmount,
		MaxBidAmount:   p.MaxBidAmount,
		LastBidAmount:  p.LastBidAmount,
		BiddingEndDate: p.BiddingEndDate,
		Category:       p.Category,
		SellerID:       p.SellerID.String(),
		Quantity:       p.Quantity,
		Location:       p.Location,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type productListResponse struct {
	Items         []productResponse `json:"items"`
	NextPageToken string            `json:"next_page_token,omitempty"`
}

func productPageFromModel(p *models.ProductPage) productListResponse {
	out := productListResponse{
		Items:         make([]productResponse, 0, len(p.Items)),
		NextPageToken: p.NextPageToken,
	}

	for i := range p.Items {
		out.Items = append(out.Items, productFromModel(&p.Items[i]))
	}

	return out
}

type fileResponse struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileURL    string    `json:"file_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func fileFromModel(f *models.File) fileResponse {
	return fileResponse{
		ID:         f.ID,
		Filename:   f.Filename,
		FileURL:    f.FileURL,
		UploadedAt: f.UploadedAt,
	}
}
