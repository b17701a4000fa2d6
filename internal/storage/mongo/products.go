package mongo

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-marketplace/internal/config"
	"github.com/pribylovaa/go-marketplace/internal/models"
	"github.com/pribylovaa/go-marketplace/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// productDoc — представление лота в коллекции products.
type productDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Details        string             `bson:"details"`
	ImageURL       string             `bson:"image_url"`
	MinBidAmount   float64            `bson:"min_bid_amount"`
	MaxBidAmount   *float64           `bson:"max_bid_amount,omitempty"`
	LastBidAmount  float64            `bson:"last_bid_amount"`
	BiddingEndDate time.Time          `bson:"bidding_end_date"`
	Category       string             `bson:"category"`
	SellerID       string             `bson:"seller_id"`
	Quantity       string             `bson:"quantity"`
	Location       string             `bson:"location"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func (d productDoc) model() models.Product {
	seller, _ := uuid.Parse(d.SellerID)

	return models.Product{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Details:        d.Details,
		ImageURL:       d.ImageURL,
		MinBidAmount:   d.MinBidAmount,
		MaxBidAmount:   d.MaxBidAmount,
		LastBidAmount:  d.LastBidAmount,
		BiddingEndDate: d.BiddingEndDate.UTC(),
		Category:       d.Category,
		SellerID:       seller,
		Quantity:       d.Quantity,
		Location:       d.Location,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

// encodeCursor кодирует пару (created_at, _id) в непрозрачный токен для клиента.
func encodeCursor(t time.Time, id primitive.ObjectID) string {
	raw := fmt.Sprintf("%d|%s", t.UTC().UnixNano(), id.Hex())

	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodeCursor декодирует токен обратно в пару ключей.
func decodeCursor(token string) (time.Time, primitive.ObjectID, error) {
	res, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return time.Time{}, primitive.NilObjectID, err
	}

	parts := strings.SplitN(string(res), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, primitive.NilObjectID, fmt.Errorf("bad parts")
	}

	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, primitive.NilObjectID, err
	}

	oid, err := primitive.ObjectIDFromHex(parts[1])
	if err != nil {
		return time.Time{}, primitive.NilObjectID, err
	}

	return time.Unix(0, nanos).UTC(), oid, nil
}

// limitOrDefault приводит запрошенный размер страницы к [Default, Max].
func limitOrDefault(cfg *config.Config, pageSize int32) int64 {
	lim := pageSize
	if lim <= 0 {
		lim = cfg.Limits.Default
	}

	if lim > cfg.Limits.Max {
		lim = cfg.Limits.Max
	}

	return int64(lim)
}

// ownedBy — фильтр «лот id принадлежит продавцу sellerID».
// Некорректный id трактуется как отсутствие записи.
func ownedBy(id string, sellerID uuid.UUID) (bson.D, bool) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, false
	}

	return bson.D{{Key: "_id", Value: oid}, {Key: "seller_id", Value: sellerID.String()}}, true
}

// CreateProduct вставляет лот; ID, CreatedAt и UpdatedAt проставляются здесь.
func (m *Mongo) CreateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	const op = "storage/mongo/CreateProduct"

	now := toMS(time.Now())

	doc := productDoc{
		ID:             primitive.NewObjectID(),
		Name:           p.Name,
		Details:        p.Details,
		ImageURL:       p.ImageURL,
		MinBidAmount:   p.MinBidAmount,
		MaxBidAmount:   p.MaxBidAmount,
		LastBidAmount:  p.LastBidAmount,
		BiddingEndDate: toMS(p.BiddingEndDate),
		Category:       p.Category,
		SellerID:       p.SellerID.String(),
		Quantity:       p.Quantity,
		Location:       p.Location,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := m.products.InsertOne(ctx, doc); err != nil {
		return nil, unavailable(op, err)
	}

	out := doc.model()
	return &out, nil
}

// ProductByID возвращает лот по hex-идентификатору.
func (m *Mongo) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	const op = "storage/mongo/ProductByID"

	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var doc productDoc
	if err := m.products.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, unavailable(op, err)
	}

	out := doc.model()
	return &out, nil
}

// ListProducts возвращает страницу лотов.
// Сортировка: created_at DESC, _id DESC; опционально фильтр по категории.
func (m *Mongo) ListProducts(ctx context.Context, params models.ListParams) (*models.ProductPage, error) {
	const op = "storage/mongo/ListProducts"

	limit := limitOrDefault(m.cfg, params.PageSize)

	filter := bson.D{}
	if c := strings.TrimSpace(params.Category); c != "" {
		filter = append(filter, bson.E{Key: "category", Value: c})
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	// Курсор "меньше" для DESC сортировки.
	if strings.TrimSpace(params.PageToken) != "" {
		t, oid, decErr := decodeCursor(params.PageToken)
		if decErr != nil {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidCursor)
		}

		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "created_at", Value: bson.D{{Key: "$lt", Value: t}}}},
			bson.D{
				{Key: "created_at", Value: t},
				{Key: "_id", Value: bson.D{{Key: "$lt", Value: oid}}},
			},
		}})
	}

	cur, err := m.products.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, unavailable(op, err)
	}
	defer cur.Close(ctx)

	var (
		items []models.Product
		last  productDoc
	)
	for cur.Next(ctx) {
		var doc productDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}

		items = append(items, doc.model())
		last = doc
	}

	if err := cur.Err(); err != nil {
		return nil, unavailable(op, err)
	}

	// Полная страница — возможно, есть продолжение.
	var next string
	if int64(len(items)) == limit {
		next = encodeCursor(last.CreatedAt, last.ID)
	}

	return &models.ProductPage{
		Items:         items,
		NextPageToken: next,
	}, nil
}

// UpdateProduct применяет непустые поля обновления к лоту продавца.
func (m *Mongo) UpdateProduct(ctx context.Context, id string, sellerID uuid.UUID, upd models.ProductUpdate) (*models.Product, error) {
	const op = "storage/mongo/UpdateProduct"

	set := bson.D{}
	if upd.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *upd.Name})
	}
	if upd.Details != nil {
		set = append(set, bson.E{Key: "details", Value: *upd.Details})
	}
	if upd.MinBidAmount != nil {
		set = append(set, bson.E{Key: "min_bid_amount", Value: *upd.MinBidAmount})
	}
	if upd.MaxBidAmount != nil {
		set = append(set, bson.E{Key: "max_bid_amount", Value: *upd.MaxBidAmount})
	}
	if upd.BiddingEndDate != nil {
		set = append(set, bson.E{Key: "bidding_end_date", Value: toMS(*upd.BiddingEndDate)})
	}
	if upd.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *upd.Category})
	}
	if upd.Quantity != nil {
		set = append(set, bson.E{Key: "quantity", Value: *upd.Quantity})
	}
	if upd.Location != nil {
		set = append(set, bson.E{Key: "location", Value: *upd.Location})
	}

	return m.updateProduct(ctx, op, id, sellerID, set)
}

// UpdateProductImage заменяет URL изображения лота продавца.
func (m *Mongo) UpdateProductImage(ctx context.Context, id string, sellerID uuid.UUID, imageURL string) (*models.Product, error) {
	const op = "storage/mongo/UpdateProductImage"

	return m.updateProduct(ctx, op, id, sellerID, bson.D{{Key: "image_url", Value: imageURL}})
}

func (m *Mongo) updateProduct(ctx context.Context, op, id string, sellerID uuid.UUID, set bson.D) (*models.Product, error) {
	filter, ok := ownedBy(id, sellerID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	set = append(set, bson.E{Key: "updated_at", Value: toMS(time.Now())})
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDoc
	if err := m.products.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, unavailable(op, err)
	}

	out := doc.model()
	return &out, nil
}

// DeleteProduct удаляет лот продавца.
func (m *Mongo) DeleteProduct(ctx context.Context, id string, sellerID uuid.UUID) error {
	const op = "storage/mongo/DeleteProduct"

	filter, ok := ownedBy(id, sellerID)
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	res, err := m.products.DeleteOne(ctx, filter)
	if err != nil {
		return unavailable(op, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
