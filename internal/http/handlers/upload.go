package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-marketplace/internal/http/errors"
)

const uploadField = "file"

// UploadFile принимает multipart-поле file и возвращает метаданные сохранённого файла.
func (h *Handlers) UploadFile(w http.ResponseWriter, r *http.Request) {
	cleanup, err := h.parseForm(w, r)
	defer cleanup()
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	up, closer, err := formUpload(r, uploadField)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	if up == nil {
		apierrors.WriteError(w, r, invalidArgument("file is required"))
		return
	}
	defer closer.Close()

	f, err := h.svc.UploadFile(r.Context(), *up)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, fileFromModel(f))
}
