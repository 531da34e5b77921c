package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/moiz862/backend/internal/domain"
	"github.com/moiz862/backend/internal/service"
)

type UploadHandler struct {
	uploadService *service.UploadService
}

func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Upload stages one multipart file and returns its descriptor. The caller
// embeds the descriptor in a message or item afterwards.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// One extra MB so the size check fails in the service, not mid-parse
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxAttachmentSize+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "A file form field is required")
		return
	}
	defer file.Close()

	attachment, err := h.uploadService.Stage(file, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyFile):
			writeError(w, http.StatusBadRequest, "File is empty")
		case errors.Is(err, service.ErrAttachmentTooLarge):
			writeError(w, http.StatusBadRequest, "File exceeds the 5MB limit")
		case errors.Is(err, service.ErrAttachmentTypeNotAllowed):
			writeError(w, http.StatusBadRequest, "File type is not allowed")
		default:
			log.Printf("ERROR upload: %v", err)
			writeError(w, http.StatusInternalServerError, "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, attachment)
}
