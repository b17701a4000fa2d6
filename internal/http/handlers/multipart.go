package handlers

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/pribylovaa/go-marketplace/internal/models"
)

// Память под multipart; больший объём уходит во временные файлы.
const multipartMemory = 8 << 20

// parseForm ограничивает тело и разбирает multipart-форму.
// Вызывающий обязан вызвать cleanup.
func (h *Handlers) parseForm(w http.ResponseWriter, r *http.Request) (cleanup func(), err error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return func() {}, invalidArgument("bad multipart form")
	}

	return func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}, nil
}

// formUpload достаёт файл из поля формы. Отсутствие файла — (nil, nil).
// Content-Type берётся из части формы; пустой или octet-stream определяется по содержимому.
func formUpload(r *http.Request, field string) (*models.Upload, io.Closer, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}

		return nil, nil, invalidArgument("bad " + field)
	}

	ct, err := contentType(f, hdr)
	if err != nil {
		_ = f.Close()
		return nil, nil, invalidArgument("unreadable " + field)
	}

	return &models.Upload{
		Filename:    hdr.Filename,
		ContentType: ct,
		Size:        hdr.Size,
		Body:        f,
	}, f, nil
}

func contentType(f multipart.File, hdr *multipart.FileHeader) (string, error) {
	if mt, _, err := mime.ParseMediaType(hdr.Header.Get("Content-Type")); err == nil && mt != "application/octet-stream" {
		return strings.ToLower(mt), nil
	}

	var buf [512]byte
	n, err := io.ReadFull(f, buf[:])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	mt, _, err := mime.ParseMediaType(http.DetectContentType(buf[:n]))
	if err != nil {
		return "", err
	}

	return mt, nil
}
