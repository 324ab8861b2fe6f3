package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/displaywall/backend/internal/core"
	"github.com/displaywall/backend/internal/domain"
)

const DefaultRevealDelay = time.Second

// Selection is one category pick from a controller client.
type Selection struct {
	Category    string
	Subcategory string
	Language    domain.Language
}

// ResolvedMedia is what display clients render after a selection. Only the
// requested language slot is exposed, never the whole language map, and a
// missing slot stays nil rather than falling back to another language.
type ResolvedMedia struct {
	ID          domain.MediaID    `json:"id"`
	Category    string            `json:"category"`
	Subcategory string            `json:"subcategory,omitempty"`
	Media       *domain.MediaSlot `json:"media"`
	Pinpoint    *domain.Pinpoint  `json:"pinpoint,omitempty"`
}

type loadingEvent struct {
	Type string `json:"type"`
}

type displayMediaEvent struct {
	Type  string         `json:"type"`
	Media *ResolvedMedia `json:"media"`
}

// Selector drives the category-selection protocol: decide whether a loading
// transition is shown, then resolve the matching media after a delay. It
// keeps no state across selections beyond a monotonic sequence number used
// to discard resolutions that a newer selection has superseded.
type Selector struct {
	catalog core.CatalogStore
	events  core.Publisher
	delay   time.Duration
	seq     atomic.Uint64
}

func NewSelector(catalog core.CatalogStore, events core.Publisher, delay time.Duration) *Selector {
	if delay <= 0 {
		delay = DefaultRevealDelay
	}
	return &Selector{catalog: catalog, events: events, delay: delay}
}

// Select handles one selection event. A category with known subcategories
// only shows the loading transition once a specific subcategory is chosen;
// a category without any always shows it before revealing its sole content.
// Failures degrade to a null displayMedia broadcast, never an error.
func (s *Selector) Select(ctx context.Context, sel Selection) {
	seq := s.seq.Add(1)
	log.Info().Str("module", "app.selector").
		Str("category", sel.Category).Str("subcategory", sel.Subcategory).
		Str("language", string(sel.Language)).Msg("category selected")

	opts, err := s.catalog.Options(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "app.selector").Msg("fetch category options")
		s.events.Publish(displayMediaEvent{Type: "displayMedia"})
		return
	}

	showLoading := true
	if len(opts[sel.Category]) > 0 {
		showLoading = sel.Subcategory != ""
	}

	delay := time.Duration(0)
	if showLoading {
		s.events.Publish(loadingEvent{Type: "categorySelected"})
		delay = s.delay
	}

	// The resolution outlives the selecting client's connection; every
	// connected display gets the result regardless of who asked.
	go s.resolve(context.WithoutCancel(ctx), sel, seq, delay)
}

func (s *Selector) resolve(ctx context.Context, sel Selection, seq uint64, delay time.Duration) {
	if delay > 0 {
		time.Sleep(delay)
	}
	if s.seq.Load() != seq {
		log.Debug().Str("module", "app.selector").Uint64("seq", seq).Msg("selection superseded, dropping result")
		return
	}

	item, err := s.catalog.FindOne(ctx, sel.Category, sel.Subcategory)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Info().Str("module", "app.selector").Str("category", sel.Category).Msg("no media for selection")
		} else {
			log.Error().Err(err).Str("module", "app.selector").Msg("fetch media for selection")
		}
		s.events.Publish(displayMediaEvent{Type: "displayMedia"})
		return
	}

	s.events.Publish(displayMediaEvent{
		Type: "displayMedia",
		Media: &ResolvedMedia{
			ID:          item.ID,
			Category:    item.Category,
			Subcategory: item.Subcategory,
			Media:       item.SlotFor(sel.Language),
			Pinpoint:    item.Pinpoint,
		},
	})
}
