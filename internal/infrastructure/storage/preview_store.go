package storage

import (
	"context"
	"path/filepath"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
)

const previewDir = "previews"

// PreviewStore materializes a viewable copy of each uploaded document so the
// UI can render it while the record lives, and releases it on delete.
type PreviewStore struct {
	files *LocalFileStorage
}

func NewPreviewStore(files *LocalFileStorage) *PreviewStore {
	return &PreviewStore{files: files}
}

func (s *PreviewStore) WritePreview(ctx context.Context, recordID string, file *entity.LiveFile) (string, error) {
	path := filepath.Join(previewDir, recordID+extensionFor(file.ContentType))
	if err := s.files.Save(ctx, path, file.Data); err != nil {
		return "", err
	}
	return path, nil
}

func (s *PreviewStore) RemovePreview(ctx context.Context, previewPath string) error {
	return s.files.Delete(ctx, previewPath)
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
