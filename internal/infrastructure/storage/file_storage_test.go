package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
)

func TestLocalFileStorage_RoundTrip(t *testing.T) {
	s := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a/b/file.txt", []byte("content")))
	assert.True(t, s.Exists(ctx, "a/b/file.txt"))

	content, err := s.Read(ctx, "a/b/file.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), content)

	require.NoError(t, s.Delete(ctx, "a/b/file.txt"))
	assert.False(t, s.Exists(ctx, "a/b/file.txt"))

	// Deleting again is a no-op
	require.NoError(t, s.Delete(ctx, "a/b/file.txt"))
}

func TestLocalFileStorage_RejectsEscapingPaths(t *testing.T) {
	s := NewLocalFileStorage(t.TempDir(), zap.NewNop())

	err := s.Save(context.Background(), "../outside.txt", []byte("nope"))

	assert.Error(t, err)
}

func TestPreviewStore_WriteAndRemove(t *testing.T) {
	files := NewLocalFileStorage(t.TempDir(), zap.NewNop())
	previews := NewPreviewStore(files)
	ctx := context.Background()

	path, err := previews.WritePreview(ctx, "rec-1", &entity.LiveFile{
		FileName:    "scan.png",
		ContentType: "image/png",
		Data:        []byte{0x89, 0x50, 0x4e, 0x47},
	})

	require.NoError(t, err)
	assert.Equal(t, "previews/rec-1.png", path)
	assert.True(t, files.Exists(ctx, path))

	require.NoError(t, previews.RemovePreview(ctx, path))
	assert.False(t, files.Exists(ctx, path))
}
