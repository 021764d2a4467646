package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// thumbnailWidth bounds the width of receipt previews; height keeps the
// aspect ratio.
const thumbnailWidth = 480

// ImageService builds preview thumbnails for uploaded receipt images
type ImageService struct{}

func NewImageService() *ImageService {
	return &ImageService{}
}

// IsImage reports whether a stored file is a processable image. Receipts may
// also be PDFs, which are stored verbatim.
func (s *ImageService) IsImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// CreateThumbnail writes a scaled-down copy next to the original and returns
// its path.
func (s *ImageService) CreateThumbnail(fullPath string) (string, error) {
	img, err := imaging.Open(fullPath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("error al decodificar imagen: %w", err)
	}

	thumb := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)

	thumbPath := s.ThumbnailPath(fullPath)
	if err := imaging.Save(thumb, thumbPath); err != nil {
		return "", fmt.Errorf("error al guardar miniatura: %w", err)
	}
	return thumbPath, nil
}

// ThumbnailPath returns the path a thumbnail lives at, without creating it
func (s *ImageService) ThumbnailPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_thumb" + ext
}
