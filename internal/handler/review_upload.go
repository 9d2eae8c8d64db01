package handler

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/noah-isme/gema-review-api/internal/dto"
	"github.com/noah-isme/gema-review-api/internal/service"
	"github.com/noah-isme/gema-review-api/pkg/ai"
)

var allowedExtensions = map[string]struct{}{
	".py":   {},
	".txt":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

var allowedImageTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
}

// decodeUpload reads an uploaded file and classifies it as text or image from its content.
func decodeUpload(file *multipart.FileHeader, maxBytes int64) (dto.ReviewUpload, error) {
	name := filepath.Base(file.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedExtensions[ext]; !ok {
		return dto.ReviewUpload{}, fmt.Errorf("%w: %q files are not accepted", service.ErrUnsupportedUpload, ext)
	}
	if maxBytes > 0 && file.Size > maxBytes {
		return dto.ReviewUpload{}, service.ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return dto.ReviewUpload{}, err
	}
	defer handle.Close()

	var reader io.Reader = handle
	if maxBytes > 0 {
		reader = io.LimitReader(handle, maxBytes+1)
	}
	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, reader); err != nil {
		return dto.ReviewUpload{}, err
	}
	if maxBytes > 0 && int64(buf.Len()) > maxBytes {
		return dto.ReviewUpload{}, service.ErrUploadTooLarge
	}

	upload := dto.ReviewUpload{FileName: name, Content: buf.Bytes()}
	if buf.Len() == 0 {
		upload.Kind = ai.ContentText
		upload.MIME = "text/plain"
		return upload, nil
	}

	detected := mimetype.Detect(upload.Content)
	upload.MIME = detected.String()
	switch {
	case isAllowedImage(detected):
		upload.Kind = ai.ContentImage
		upload.MIME = normalizeMime(detected.String())
	case isText(detected):
		upload.Kind = ai.ContentText
	default:
		return dto.ReviewUpload{}, fmt.Errorf("%w: detected %s", service.ErrUnsupportedUpload, normalizeMime(detected.String()))
	}

	return upload, nil
}

func isAllowedImage(detected *mimetype.MIME) bool {
	_, ok := allowedImageTypes[normalizeMime(detected.String())]
	return ok
}

func isText(detected *mimetype.MIME) bool {
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func normalizeMime(value string) string {
	if idx := strings.Index(value, ";"); idx >= 0 {
		value = value[:idx]
	}
	return strings.ToLower(strings.TrimSpace(value))
}
