package storage

import (
	"bytes"
	"errors"
	"image"
	"net/http"

	// Decoders registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// MaxImageSize is the largest upload accepted (10 MB).
const MaxImageSize = 10 << 20

// Upload validation errors. Messages are safe to show to admins.
var (
	ErrImageTooLarge  = errors.New("image exceeds the 10 MB limit")
	ErrImageType      = errors.New("only JPEG, PNG, GIF and WebP images are allowed")
	ErrImageCorrupted = errors.New("image could not be decoded")
)

// allowedImageTypes maps sniffed MIME types to the stored file extension.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectImage checks that data is one of the allowed image formats and
// actually decodes. It returns the content type and file extension.
func DetectImage(data []byte) (contentType, ext string, err error) {
	if len(data) > MaxImageSize {
		return "", "", ErrImageTooLarge
	}

	contentType = http.DetectContentType(data)
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", "", ErrImageType
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", "", ErrImageCorrupted
	}
	return contentType, ext, nil
}

// ObjectKey builds a collision-free key such as "projects/<uuid>.jpg".
func ObjectKey(folder, ext string) string {
	return folder + "/" + uuid.NewString() + ext
}
