package service

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moiz862/backend/internal/domain"
	"github.com/stretchr/testify/require"
)

// pngBytes is a tiny but real PNG header, enough for content sniffing.
var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
}

func TestStage(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	svc := NewUploadService(dir, "/uploads")

	att, err := svc.Stage(bytes.NewReader(pngBytes), "holiday.png")
	req.NoError(err)

	// The type comes from the bytes, not the client-supplied name
	req.Equal("image/png", att.MimeType)
	req.Equal("holiday.png", att.OriginalName)
	req.Equal(int64(len(pngBytes)), att.Size)
	req.True(strings.HasSuffix(att.Filename, ".png"))
	req.Equal("/uploads/"+att.Filename, att.URL)

	// The bytes landed on disk under the generated name
	stored, err := os.ReadFile(filepath.Join(dir, att.Filename))
	req.NoError(err)
	req.Equal(pngBytes, stored)
}

func TestStage_GeneratedNamesDoNotCollide(t *testing.T) {
	req := require.New(t)
	svc := NewUploadService(t.TempDir(), "/uploads")

	first, err := svc.Stage(bytes.NewReader(pngBytes), "a.png")
	req.NoError(err)
	second, err := svc.Stage(bytes.NewReader(pngBytes), "a.png")
	req.NoError(err)

	req.NotEqual(first.Filename, second.Filename)
}

func TestStage_RejectsDisallowedType(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	svc := NewUploadService(dir, "/uploads")

	_, err := svc.Stage(strings.NewReader("#!/bin/sh\necho hi\n"), "script.png")
	req.ErrorIs(err, ErrAttachmentTypeNotAllowed)

	// Nothing is written for rejected uploads
	entries, err := os.ReadDir(dir)
	req.NoError(err)
	req.Empty(entries)
}

func TestStage_RejectsEmptyAndOversize(t *testing.T) {
	req := require.New(t)
	svc := NewUploadService(t.TempDir(), "/uploads")

	_, err := svc.Stage(bytes.NewReader(nil), "nothing.png")
	req.ErrorIs(err, ErrEmptyFile)

	_, err = svc.Stage(bytes.NewReader(make([]byte, domain.MaxAttachmentSize+1)), "huge.bin")
	req.ErrorIs(err, ErrAttachmentTooLarge)
}
