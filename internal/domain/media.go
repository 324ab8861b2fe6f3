// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Language string

const (
	LangEN Language = "en"
	LangAR Language = "ar"
)

type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
)

var (
	ErrNotFound         = errors.New("media item not found")
	ErrCategoryRequired = errors.New("category is required")
)

// ValidationError reports a rejected field on a mutation request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type MediaID string

// MediaSlot is one localized piece of content.
type MediaSlot struct {
	Kind MediaKind `json:"type"`
	URL  string    `json:"url"`
}

type PinpointFile struct {
	Kind MediaKind `json:"type"`
	URL  string    `json:"url"`
}

// Position is a percentage-based coordinate on the display plane.
type Position struct {
	X float64 `json:"x" validate:"gte=0,lte=100"`
	Y float64 `json:"y" validate:"gte=0,lte=100"`
}

// Pinpoint is an overlay marker. File.URL may be empty when only the
// position has been set so far.
type Pinpoint struct {
	File     PinpointFile `json:"file"`
	Position Position     `json:"position"`
}

// MediaItem is one catalog record. A language slot is present independently
// per language; absence of a slot is represented by a missing map entry.
type MediaItem struct {
	ID          MediaID                 `json:"id"`
	Category    string                  `json:"category"`
	Subcategory string                  `json:"subcategory,omitempty"`
	Media       map[Language]*MediaSlot `json:"media"`
	Pinpoint    *Pinpoint               `json:"pinpoint,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

var validate = validator.New()

// Validate rejects coordinates outside [0,100] on either axis.
func (p Position) Validate() error {
	if err := validate.Struct(p); err != nil {
		return &ValidationError{Field: "position", Reason: "x and y must be within [0,100]"}
	}
	return nil
}

// SlotFor returns the slot for lang, defaulting to English when lang is
// empty. A missing slot yields nil; there is no fallback between languages.
func (m *MediaItem) SlotFor(lang Language) *MediaSlot {
	if lang == "" {
		lang = LangEN
	}
	return m.Media[lang]
}

// AssetURLs lists every stored asset the item references.
func (m *MediaItem) AssetURLs() []string {
	var urls []string
	for _, lang := range []Language{LangEN, LangAR} {
		if slot := m.Media[lang]; slot != nil && slot.URL != "" {
			urls = append(urls, slot.URL)
		}
	}
	if m.Pinpoint != nil && m.Pinpoint.File.URL != "" {
		urls = append(urls, m.Pinpoint.File.URL)
	}
	return urls
}
