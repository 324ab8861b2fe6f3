package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/displaywall/backend/internal/app"
	"github.com/displaywall/backend/internal/core"
	"github.com/displaywall/backend/internal/domain"
)

func (ctl *Controller) sendOptions(ctx context.Context, conn *WsConn) {
	opts, err := ctl.Catalog.Options(ctx)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("fetch category options")
		return
	}
	resp := struct {
		Type    string               `json:"type"`
		Options core.CategoryOptions `json:"options"`
	}{
		Type:    "categoryOptions",
		Options: opts,
	}
	ctl.sendJSON(conn, resp)
}

func (ctl *Controller) handleRegister(
	ctx context.Context,
	sid core.SessionID,
	conn *WsConn,
	data []byte,
) {
	type registerPayload struct {
		Type string `json:"type"`
		Role string `json:"role"`
	}
	var p registerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad register payload")
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "bad_payload",
		})
		return
	}
	if p.Role == "" {
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "empty role",
		})
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("role", p.Role).Msg("client registered")
	ctl.Registry.SetRole(sid, p.Role)

	// Registration doubles as a resync request for late-joining displays.
	ctl.Events.SnapshotTo(ctx, sid)
}

func (ctl *Controller) handleChangeLanguage(conn *WsConn, data []byte) {
	type languagePayload struct {
		Type     string `json:"type"`
		Language string `json:"language"`
	}
	var p languagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad changeLanguage payload")
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "bad_payload",
		})
		return
	}

	// Pure pass-through, no state kept server-side.
	log.Info().Str("module", "signal").Str("language", p.Language).Msg("language changed")
	ctl.Events.Publish(struct {
		Type     string `json:"type"`
		Language string `json:"language"`
	}{
		Type:     "languageChanged",
		Language: p.Language,
	})
}

func (ctl *Controller) handleSelectCategory(
	ctx context.Context,
	sid core.SessionID,
	conn *WsConn,
	data []byte,
) {
	type selectPayload struct {
		Type        string `json:"type"`
		Category    string `json:"category"`
		Subcategory string `json:"subcategory"`
		Language    string `json:"language"`
	}
	var p selectPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad selectCategory payload")
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "bad_payload",
		})
		return
	}
	if !ctl.limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("selectCategory rate limited")
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "too_many_selections",
		})
		return
	}

	ctl.Selector.Select(ctx, app.Selection{
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Language:    domain.Language(p.Language),
	})
}

func (ctl *Controller) handleToggleCarbonMode(conn *WsConn, data []byte) {
	type carbonPayload struct {
		Type   string `json:"type"`
		Active bool   `json:"active"`
		Value  any    `json:"value"`
	}
	var p carbonPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad toggleCarbonMode payload")
		ctl.sendJSON(conn, map[string]any{
			"type":  "error",
			"error": "bad_payload",
		})
		return
	}

	log.Info().Str("module", "signal").Bool("active", p.Active).Msg("carbon mode toggled")
	ctl.Events.Publish(struct {
		Type   string `json:"type"`
		Active bool   `json:"active"`
		Value  any    `json:"value"`
	}{
		Type:   "carbonMode",
		Active: p.Active,
		Value:  p.Value,
	})
}

func (ctl *Controller) handlePing(c *WsConn) {
	ctl.sendJSON(c, map[string]any{"type": "pong"})
}
