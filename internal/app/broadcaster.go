package app

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/displaywall/backend/internal/core"
	"github.com/displaywall/backend/internal/domain"
)

// Broadcaster is the single fan-out point for catalog snapshots and protocol
// events. Every collaborator that publishes gets one injected at construction;
// there is no process-global channel to check at call time.
type Broadcaster struct {
	catalog  core.CatalogStore
	registry *Registry
}

func NewBroadcaster(catalog core.CatalogStore, registry *Registry) *Broadcaster {
	return &Broadcaster{catalog: catalog, registry: registry}
}

type mediaUpdateEvent struct {
	Type  string              `json:"type"`
	Items []*domain.MediaItem `json:"items"`
}

// Publish marshals v once and pushes it to every connected session.
// A delivery failure to one session is logged and isolated.
func (b *Broadcaster) Publish(v any) {
	frame, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Msg("marshal event")
		return
	}
	for _, s := range b.registry.All() {
		if err := s.Conn.TrySend(core.Frame(frame)); err != nil {
			log.Warn().Err(err).Str("module", "app.broadcast").Str("sid", string(s.SID)).Msg("dropped frame")
		}
	}
}

// Snapshot pushes the full catalog, newest first, to every session. Clients
// replace their state wholesale on receipt; there are no deltas.
func (b *Broadcaster) Snapshot(ctx context.Context) {
	items, err := b.catalog.All(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Msg("fetch catalog for snapshot")
		return
	}
	b.Publish(mediaUpdateEvent{Type: "mediaUpdate", Items: items})
}

// SnapshotTo resends the full catalog privately to one session.
func (b *Broadcaster) SnapshotTo(ctx context.Context, sid core.SessionID) {
	conn, ok := b.registry.Get(sid)
	if !ok {
		return
	}
	items, err := b.catalog.All(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Str("sid", string(sid)).Msg("fetch catalog for resync")
		return
	}
	frame, err := json.Marshal(mediaUpdateEvent{Type: "mediaUpdate", Items: items})
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Msg("marshal snapshot")
		return
	}
	if err := conn.TrySend(core.Frame(frame)); err != nil {
		log.Warn().Err(err).Str("module", "app.broadcast").Str("sid", string(sid)).Msg("dropped snapshot frame")
	}
}
