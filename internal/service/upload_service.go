package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/moiz862/backend/internal/domain"
)

var ErrEmptyFile = errors.New("file is empty")

// UploadService is the attachment store. It stages raw file bytes on disk
// and hands back descriptors; messages and items only ever reference the
// descriptor, never the bytes.
type UploadService struct {
	dir     string
	baseURL string
}

func NewUploadService(dir, baseURL string) *UploadService {
	return &UploadService{
		dir:     dir,
		baseURL: baseURL,
	}
}

// Stage validates and writes one uploaded file. The content type is sniffed
// from the bytes, not taken from the client.
func (s *UploadService) Stage(file io.Reader, originalName string) (*domain.Attachment, error) {
	data, err := io.ReadAll(io.LimitReader(file, domain.MaxAttachmentSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > domain.MaxAttachmentSize {
		return nil, ErrAttachmentTooLarge
	}

	mtype := mimetype.Detect(data)
	if !domain.AllowedAttachmentType(mtype.String()) {
		return nil, ErrAttachmentTypeNotAllowed
	}

	filename := uuid.New().String() + mtype.Extension()
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return nil, fmt.Errorf("writing upload: %w", err)
	}

	return &domain.Attachment{
		URL:          s.baseURL + "/" + filename,
		Filename:     filename,
		OriginalName: originalName,
		Size:         int64(len(data)),
		MimeType:     mtype.String(),
	}, nil
}
