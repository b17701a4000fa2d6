// Package mongo — реализация storage.Storage поверх MongoDB.
package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pribylovaa/go-marketplace/internal/config"
	"github.com/pribylovaa/go-marketplace/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
	filesCollection    = "files"
	defaultDBName      = "marketplace"
)

var _ storage.Storage = (*Mongo)(nil)

// Mongo - тонкий адаптер для подключения и коллекций MongoDB.
type Mongo struct {
	cfg      *config.Config
	client   *mongodriver.Client
	db       *mongodriver.Database
	users    *mongodriver.Collection
	products *mongodriver.Collection
	files    *mongodriver.Collection
}

// New подключается к MongoDB, проверяет соединение, подготавливает коллекции и индексы.
func New(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mongo: nil config")
	}

	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("mongo: empty cfg.DB.URL")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.DB.URL))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cli.Database(databaseFromURI(cfg.DB.URL))

	m := &Mongo{
		cfg:      cfg,
		client:   cli,
		db:       db,
		users:    db.Collection(usersCollection),
		products: db.Collection(productsCollection),
		files:    db.Collection(filesCollection),
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	return m, nil
}

// Ping проверяет доступность primary.
func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping: %w: %w", storage.ErrUnavailable, err)
	}

	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// ensureIndexes создаёт индексы:
// - users: уникальные username, email и phone_number;
// - products: лента (created_at desc, _id desc), фильтр по категории, выборка по продавцу.
func (m *Mongo) ensureIndexes(ctx context.Context) error {
	users := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("uniq_username").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "phone_number", Value: 1}},
			Options: options.Index().SetName("uniq_phone_number").SetUnique(true),
		},
	}

	if _, err := m.users.Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("mongo ensure users indexes: %w", err)
	}

	products := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("created_desc"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("category_created_desc"),
		},
		{
			Keys:    bson.D{{Key: "seller_id", Value: 1}},
			Options: options.Index().SetName("seller"),
		},
	}

	if _, err := m.products.Indexes().CreateMany(ctx, products); err != nil {
		return fmt.Errorf("mongo ensure products indexes: %w", err)
	}

	return nil
}

// databaseFromURI извлекает имя базы данных из пути mongodb URI.
// Если оно отсутствует или не разбирается, возвращает значение по умолчанию.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}

	return defaultDBName
}

// unavailable оборачивает ошибку драйвера в storage.ErrUnavailable, сохраняя исходную в цепочке.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, storage.ErrUnavailable, err)
}
