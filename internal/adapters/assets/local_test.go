package assets

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/displaywall/backend/internal/domain"
)

func TestStoreAndDeleteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	desc, err := s.Store(ctx, []byte("fake png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, domain.KindImage, desc.Kind)
	assert.Contains(t, desc.URL, "http://localhost:8080/uploads/")
	assert.Equal(t, ".png", path.Ext(desc.URL))

	data, err := os.ReadFile(filepath.Join(dir, path.Base(desc.URL)))
	require.NoError(t, err)
	assert.Equal(t, []byte("fake png"), data)

	require.NoError(t, s.Delete(ctx, desc.URL))
	_, err = os.Stat(filepath.Join(dir, path.Base(desc.URL)))
	assert.True(t, os.IsNotExist(err))

	// Deleting an already-gone asset is not an error.
	assert.NoError(t, s.Delete(ctx, desc.URL))
}

func TestStoreVideoKind(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "http://x/uploads")
	require.NoError(t, err)

	desc, err := s.Store(context.Background(), []byte("mp4"), "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, domain.KindVideo, desc.Kind)
	assert.Equal(t, ".mp4", path.Ext(desc.URL))
}

func TestUnknownContentTypeFallsBack(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "http://x/uploads")
	require.NoError(t, err)

	desc, err := s.Store(context.Background(), []byte("?"), "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, domain.KindImage, desc.Kind)
	assert.Equal(t, ".bin", path.Ext(desc.URL))
}

func TestDeleteRejectsMalformedURL(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "http://x/uploads")
	require.NoError(t, err)
	assert.Error(t, s.Delete(context.Background(), ""))
}
