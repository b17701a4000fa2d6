package mongo

import (
	"context"
	"time"

	"github.com/pribylovaa/go-marketplace/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fileDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Filename   string             `bson:"filename"`
	FileURL    string             `bson:"file_url"`
	UploadedAt time.Time          `bson:"uploaded_at"`
}

// SaveFile сохраняет метаданные загруженного файла.
func (m *Mongo) SaveFile(ctx context.Context, f models.File) (*models.File, error) {
	const op = "storage/mongo/SaveFile"

	doc := fileDoc{
		ID:         primitive.NewObjectID(),
		Filename:   f.Filename,
		FileURL:    f.FileURL,
		UploadedAt: toMS(time.Now()),
	}

	if _, err := m.files.InsertOne(ctx, doc); err != nil {
		return nil, unavailable(op, err)
	}

	return &models.File{
		ID:         doc.ID.Hex(),
		Filename:   doc.Filename,
		FileURL:    doc.FileURL,
		UploadedAt: doc.UploadedAt,
	}, nil
}
