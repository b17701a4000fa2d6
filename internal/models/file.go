package models

import (
	"io"
	"time"
)

// File — метаданные загруженного файла.
type File struct {
	ID         string
	Filename   string
	FileURL    string
	UploadedAt time.Time
}

// Upload — входящий файл для передачи в объектное хранилище.
// Body читается ровно один раз.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
