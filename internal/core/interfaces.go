package core

import (
	"context"

	"github.com/displaywall/backend/internal/domain"
)

// Frame is a raw JSON payload ready for the wire.
type Frame []byte

type SessionID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// CategoryOptions maps a category to its known non-empty subcategories.
// Derived from the catalog on demand, never cached.
type CategoryOptions map[string][]string

// AssetDescriptor is what the asset store hands back for stored bytes.
type AssetDescriptor struct {
	Kind domain.MediaKind
	URL  string
}

// CatalogStore holds the media catalog. It is the sole source of truth;
// concurrent mutations serialize at the store.
type CatalogStore interface {
	Insert(ctx context.Context, item *domain.MediaItem) error
	Get(ctx context.Context, id domain.MediaID) (*domain.MediaItem, error)
	// All returns the full catalog, newest first.
	All(ctx context.Context) ([]*domain.MediaItem, error)
	Save(ctx context.Context, item *domain.MediaItem) error
	Delete(ctx context.Context, id domain.MediaID) error
	Options(ctx context.Context) (CategoryOptions, error)
	// FindOne matches category and subcategory exactly, including an
	// absent subcategory (empty string).
	FindOne(ctx context.Context, category, subcategory string) (*domain.MediaItem, error)
}

// AssetStore persists uploaded binaries and deletes them by URL.
type AssetStore interface {
	Store(ctx context.Context, data []byte, contentType string) (AssetDescriptor, error)
	Delete(ctx context.Context, url string) error
}

// Publisher fans events out to connected display clients. Delivery to a
// single session is best-effort; failures never reach the caller.
type Publisher interface {
	Publish(v any)
	// Snapshot pushes the full catalog to every session.
	Snapshot(ctx context.Context)
	// SnapshotTo pushes the full catalog to one session only.
	SnapshotTo(ctx context.Context, sid SessionID)
}
