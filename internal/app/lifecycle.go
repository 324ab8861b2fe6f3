package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/displaywall/backend/internal/core"
	"github.com/displaywall/backend/internal/domain"
)

// Upload is raw bytes received for one asset slot.
type Upload struct {
	Data        []byte
	ContentType string
}

// Uploads carries the zero-to-three files a mutation request may attach.
type Uploads struct {
	MediaEN  *Upload
	MediaAR  *Upload
	Pinpoint *Upload
}

// Fields are the non-file mutation inputs. Empty Category/Subcategory mean
// "not supplied" and leave the existing value untouched on update; clearing
// a field to empty is not expressible. Nil pinpoint axes mean "not supplied".
type Fields struct {
	Category    string
	Subcategory string
	PinpointX   *float64
	PinpointY   *float64
}

// Lifecycle maintains the create/update/delete invariants for catalog items,
// including asset upload, replacement and cleanup ordering. Per call: uploads
// complete before the item persists, persistence completes before the
// snapshot broadcast fires.
type Lifecycle struct {
	catalog  core.CatalogStore
	assets   core.AssetStore
	events   core.Publisher
	deletion DeletionPolicy

	mu    sync.Mutex
	locks map[domain.MediaID]*sync.Mutex
}

func NewLifecycle(catalog core.CatalogStore, assets core.AssetStore, events core.Publisher) *Lifecycle {
	return &Lifecycle{
		catalog:  catalog,
		assets:   assets,
		events:   events,
		deletion: DeleteBestEffort,
		locks:    make(map[domain.MediaID]*sync.Mutex),
	}
}

// lock serializes mutations per item id so overlapping read-modify-persist
// sequences cannot lose each other's writes.
func (m *Lifecycle) lock(id domain.MediaID) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	m.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (m *Lifecycle) Create(ctx context.Context, in Fields, uploads Uploads) (*domain.MediaItem, error) {
	if in.Category == "" {
		return nil, domain.ErrCategoryRequired
	}
	pos := domain.Position{X: axis(in.PinpointX, 0), Y: axis(in.PinpointY, 0)}
	if err := pos.Validate(); err != nil {
		return nil, err
	}

	item := &domain.MediaItem{
		ID:          domain.MediaID(uuid.NewString()),
		Category:    in.Category,
		Subcategory: in.Subcategory,
		Media:       make(map[domain.Language]*domain.MediaSlot),
	}
	if err := m.storeSlot(ctx, item, domain.LangEN, uploads.MediaEN); err != nil {
		return nil, err
	}
	if err := m.storeSlot(ctx, item, domain.LangAR, uploads.MediaAR); err != nil {
		return nil, err
	}
	if uploads.Pinpoint != nil {
		desc, err := m.assets.Store(ctx, uploads.Pinpoint.Data, uploads.Pinpoint.ContentType)
		if err != nil {
			return nil, fmt.Errorf("store pinpoint asset: %w", err)
		}
		item.Pinpoint = &domain.Pinpoint{
			File:     domain.PinpointFile{Kind: domain.KindImage, URL: desc.URL},
			Position: pos,
		}
	}

	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	if err := m.catalog.Insert(ctx, item); err != nil {
		return nil, fmt.Errorf("persist media: %w", err)
	}
	log.Info().Str("module", "app.lifecycle").Str("id", string(item.ID)).Str("category", item.Category).Msg("media created")
	m.events.Snapshot(ctx)
	return item, nil
}

func (m *Lifecycle) Update(ctx context.Context, id domain.MediaID, in Fields, uploads Uploads) (*domain.MediaItem, error) {
	unlock := m.lock(id)
	defer unlock()

	item, err := m.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Media == nil {
		item.Media = make(map[domain.Language]*domain.MediaSlot)
	}
	if in.Category != "" {
		item.Category = in.Category
	}
	if in.Subcategory != "" {
		item.Subcategory = in.Subcategory
	}
	if err := m.validateAxes(in); err != nil {
		return nil, err
	}

	if err := m.replaceSlot(ctx, item, domain.LangEN, uploads.MediaEN); err != nil {
		return nil, err
	}
	if err := m.replaceSlot(ctx, item, domain.LangAR, uploads.MediaAR); err != nil {
		return nil, err
	}

	switch {
	case uploads.Pinpoint != nil:
		// New pinpoint file: drop the old one, position keeps existing
		// values for axes not supplied (0 when there was no pinpoint).
		if item.Pinpoint != nil && item.Pinpoint.File.URL != "" {
			if err := m.removeAsset(ctx, item.Pinpoint.File.URL); err != nil {
				return nil, err
			}
		}
		desc, err := m.assets.Store(ctx, uploads.Pinpoint.Data, uploads.Pinpoint.ContentType)
		if err != nil {
			return nil, fmt.Errorf("store pinpoint asset: %w", err)
		}
		var prevX, prevY float64
		if item.Pinpoint != nil {
			prevX, prevY = item.Pinpoint.Position.X, item.Pinpoint.Position.Y
		}
		item.Pinpoint = &domain.Pinpoint{
			File:     domain.PinpointFile{Kind: domain.KindImage, URL: desc.URL},
			Position: domain.Position{X: axis(in.PinpointX, prevX), Y: axis(in.PinpointY, prevY)},
		}
	case in.PinpointX != nil || in.PinpointY != nil:
		// Position-only update; a placeholder pinpoint with an empty file
		// URL is created when none exists yet.
		if item.Pinpoint == nil {
			item.Pinpoint = &domain.Pinpoint{
				File:     domain.PinpointFile{Kind: domain.KindImage, URL: ""},
				Position: domain.Position{X: axis(in.PinpointX, 0), Y: axis(in.PinpointY, 0)},
			}
		} else {
			if in.PinpointX != nil {
				item.Pinpoint.Position.X = *in.PinpointX
			}
			if in.PinpointY != nil {
				item.Pinpoint.Position.Y = *in.PinpointY
			}
		}
	}

	item.UpdatedAt = time.Now().UTC()
	if err := m.catalog.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("persist media: %w", err)
	}
	log.Info().Str("module", "app.lifecycle").Str("id", string(item.ID)).Msg("media updated")
	m.events.Snapshot(ctx)
	return item, nil
}

func (m *Lifecycle) Delete(ctx context.Context, id domain.MediaID) error {
	unlock := m.lock(id)
	defer unlock()

	item, err := m.catalog.Get(ctx, id)
	if err != nil {
		return err
	}
	// Each asset deletion is independent; one failure must not block the
	// others or the record removal.
	for _, url := range item.AssetURLs() {
		if err := m.removeAsset(ctx, url); err != nil {
			return err
		}
	}
	if err := m.catalog.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	log.Info().Str("module", "app.lifecycle").Str("id", string(id)).Msg("media deleted")
	m.events.Snapshot(ctx)
	return nil
}

func (m *Lifecycle) storeSlot(ctx context.Context, item *domain.MediaItem, lang domain.Language, up *Upload) error {
	if up == nil {
		return nil
	}
	desc, err := m.assets.Store(ctx, up.Data, up.ContentType)
	if err != nil {
		return fmt.Errorf("store %s media: %w", lang, err)
	}
	item.Media[lang] = &domain.MediaSlot{Kind: desc.Kind, URL: desc.URL}
	return nil
}

func (m *Lifecycle) replaceSlot(ctx context.Context, item *domain.MediaItem, lang domain.Language, up *Upload) error {
	if up == nil {
		return nil
	}
	if old := item.Media[lang]; old != nil && old.URL != "" {
		if err := m.removeAsset(ctx, old.URL); err != nil {
			return err
		}
	}
	return m.storeSlot(ctx, item, lang, up)
}

func (m *Lifecycle) removeAsset(ctx context.Context, url string) error {
	err := m.assets.Delete(ctx, url)
	if err == nil {
		return nil
	}
	if m.deletion == DeleteBestEffort {
		log.Warn().Err(err).Str("module", "app.lifecycle").Str("url", url).Msg("asset delete failed")
		return nil
	}
	return fmt.Errorf("delete asset %s: %w", url, err)
}

func (m *Lifecycle) validateAxes(in Fields) error {
	pos := domain.Position{X: axis(in.PinpointX, 0), Y: axis(in.PinpointY, 0)}
	return pos.Validate()
}

func axis(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}
