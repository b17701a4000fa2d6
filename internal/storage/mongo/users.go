package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-marketplace/internal/models"
	"github.com/pribylovaa/go-marketplace/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// userDoc — представление пользователя в коллекции users.
// _id хранится строкой UUID.
type userDoc struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email"`
	FullName     string    `bson:"full_name"`
	PhoneNumber  string    `bson:"phone_number"`
	PasswordHash string    `bson:"password_hash"`
	RefreshToken string    `bson:"refresh_token"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toUserDoc(u *models.User) userDoc {
	return userDoc{
		ID:           u.ID.String(),
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		PhoneNumber:  u.PhoneNumber,
		PasswordHash: u.PasswordHash,
		RefreshToken: u.RefreshToken,
		CreatedAt:    toMS(u.CreatedAt),
		UpdatedAt:    toMS(u.UpdatedAt),
	}
}

func (d userDoc) model() (*models.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("bad user id %q: %w", d.ID, err)
	}

	return &models.User{
		ID:           id,
		Username:     d.Username,
		Email:        d.Email,
		FullName:     d.FullName,
		PhoneNumber:  d.PhoneNumber,
		PasswordHash: d.PasswordHash,
		RefreshToken: d.RefreshToken,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}, nil
}

// toMS — MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// CreateUser вставляет пользователя. Нарушение уникального индекса — storage.ErrAlreadyExists.
func (m *Mongo) CreateUser(ctx context.Context, user *models.User) error {
	const op = "storage/mongo/CreateUser"

	if _, err := m.users.InsertOne(ctx, toUserDoc(user)); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return unavailable(op, err)
	}

	return nil
}

// UserByLogin ищет пользователя по username или email.
func (m *Mongo) UserByLogin(ctx context.Context, username, email string) (*models.User, error) {
	const op = "storage/mongo/UserByLogin"

	or := bson.A{}
	if username != "" {
		or = append(or, bson.D{{Key: "username", Value: username}})
	}
	if email != "" {
		or = append(or, bson.D{{Key: "email", Value: email}})
	}

	if len(or) == 0 {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return m.findUser(ctx, op, bson.D{{Key: "$or", Value: or}})
}

// UserByID возвращает пользователя по идентификатору.
func (m *Mongo) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage/mongo/UserByID"

	return m.findUser(ctx, op, bson.D{{Key: "_id", Value: id.String()}})
}

func (m *Mongo) findUser(ctx context.Context, op string, filter bson.D) (*models.User, error) {
	var doc userDoc
	if err := m.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, unavailable(op, err)
	}

	u, err := doc.model()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

// UpdateRefreshToken безусловно перезаписывает refresh-токен.
func (m *Mongo) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	const op = "storage/mongo/UpdateRefreshToken"

	return m.updateUser(ctx, op, bson.D{{Key: "_id", Value: id.String()}}, bson.D{
		{Key: "refresh_token", Value: token},
	})
}

// RotateRefreshToken — compare-and-swap: запись меняется, только если сохранённый токен равен old.
func (m *Mongo) RotateRefreshToken(ctx context.Context, id uuid.UUID, old, next string) error {
	const op = "storage/mongo/RotateRefreshToken"

	if old == "" {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return m.updateUser(ctx, op, bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "refresh_token", Value: old},
	}, bson.D{
		{Key: "refresh_token", Value: next},
	})
}

// UpdatePasswordHash меняет хэш пароля и в той же записи отзывает refresh-токен.
func (m *Mongo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	const op = "storage/mongo/UpdatePasswordHash"

	return m.updateUser(ctx, op, bson.D{{Key: "_id", Value: id.String()}}, bson.D{
		{Key: "password_hash", Value: hash},
		{Key: "refresh_token", Value: ""},
	})
}

func (m *Mongo) updateUser(ctx context.Context, op string, filter, set bson.D) error {
	set = append(set, bson.E{Key: "updated_at", Value: toMS(time.Now())})

	res, err := m.users.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return unavailable(op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// UpdateAccount меняет профильные поля и возвращает запись после обновления.
func (m *Mongo) UpdateAccount(ctx context.Context, id uuid.UUID, upd models.AccountUpdate) (*models.User, error) {
	const op = "storage/mongo/UpdateAccount"

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "full_name", Value: upd.FullName},
		{Key: "phone_number", Value: upd.PhoneNumber},
		{Key: "email", Value: upd.Email},
		{Key: "updated_at", Value: toMS(time.Now())},
	}}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	err := m.users.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id.String()}}, update, opts).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongodriver.ErrNoDocuments):
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		case mongodriver.IsDuplicateKeyError(err):
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		default:
			return nil, unavailable(op, err)
		}
	}

	u, err := doc.model()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}
