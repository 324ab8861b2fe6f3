// Package assets stores uploaded binaries on local disk and serves them by
// URL under the configured public base.
package assets

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/displaywall/backend/internal/core"
	"github.com/displaywall/backend/internal/domain"
)

type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func kindFor(contentType string) domain.MediaKind {
	if strings.HasPrefix(contentType, "video/") {
		return domain.KindVideo
	}
	return domain.KindImage
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"video/mp4":  ".mp4",
	"video/webm": ".webm",
}

func extensionFor(contentType string) string {
	if ext, ok := extensions[contentType]; ok {
		return ext
	}
	return ".bin"
}

func (s *DiskStore) Store(ctx context.Context, data []byte, contentType string) (core.AssetDescriptor, error) {
	name := uuid.NewString() + extensionFor(contentType)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return core.AssetDescriptor{}, fmt.Errorf("write asset: %w", err)
	}
	log.Info().Str("module", "adapters.assets").Str("name", name).Int("size", len(data)).Msg("stored asset")
	return core.AssetDescriptor{
		Kind: kindFor(contentType),
		URL:  s.baseURL + "/" + name,
	}, nil
}

// Delete removes the file a previously returned URL points at. A URL whose
// file is already gone is not an error.
func (s *DiskStore) Delete(ctx context.Context, url string) error {
	name := path.Base(url)
	if name == "." || name == "/" || name == "" {
		return fmt.Errorf("malformed asset url: %q", url)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove asset: %w", err)
	}
	return nil
}
