// Zaparoo AltScraper
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo AltScraper.
//
// Zaparoo AltScraper is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo AltScraper is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo AltScraper.  If not, see <http://www.gnu.org/licenses/>.

package hfsdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/ZaparooProject/altscraper/pkg/config"
	"github.com/ZaparooProject/altscraper/pkg/helpers/syncutil"
	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/ZaparooProject/altscraper/pkg/shared/httpclient"
	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog/log"
)

const (
	// ServiceURL is the address credentials are looked up for in auth.toml.
	ServiceURL = "https://db.hfsplay.fr"

	baseURL = ServiceURL + "/api/v1"

	// maxPages bounds the systems listing in case the service loops.
	maxPages = 100
)

// CredentialEnv names the environment variables overriding auth.toml.
var CredentialEnv = config.CredentialEnv{
	Username: "HFSDB_USER",
	Password: "HFSDB_PASSWD",
}

// MediaVocabulary maps HFSDB media types to assets. Covers and screenshots
// are qualified by the first value of their metadata, e.g. "cover2d:front".
var MediaVocabulary = scraper.Vocabulary{
	scraper.AssetScreenshot:  {"screenshot:in game", "screenshot"},
	scraper.AssetVideo:       {"video"},
	scraper.AssetBox2D:       {"cover2d:full", "cover2d"},
	scraper.AssetBox3D:       {"cover3d"},
	scraper.AssetBoxFront:    {"cover2d:front"},
	scraper.AssetBoxBack:     {"cover2d:back"},
	scraper.AssetMarquee:     {"logo"},
	scraper.AssetTitleScreen: {"screenshot:title"},
	scraper.AssetWheel:       {"wheel"},
}

// regionTags translates HFSDB release regions to region tags.
var regionTags = map[string]string{
	"PAL":   "eu",
	"US":    "us",
	"JPN":   "jp",
	"WORLD": "wor",
}

// HFSDB implements the Scraper interface for the HFS database.
type HFSDB struct {
	client   *httpclient.Client
	creds    config.CredentialEntry
	baseURL  string
	token    string
	regions  scraper.RegionOrder
	mu       syncutil.Mutex
	loggedIn bool
}

// Option configures an HFSDB scraper.
type Option func(*HFSDB)

// WithBaseURL points the scraper at another API root.
func WithBaseURL(u string) Option {
	return func(h *HFSDB) {
		h.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithRegionOrder sets the regions localized fields are read for.
func WithRegionOrder(order scraper.RegionOrder) Option {
	return func(h *HFSDB) {
		h.regions = order
	}
}

// NewHFSDB creates an HFSDB scraper. Logging in is deferred to the first
// request.
func NewHFSDB(client *httpclient.Client, creds config.CredentialEntry, opts ...Option) *HFSDB {
	h := &HFSDB{
		client:  client,
		creds:   creds,
		baseURL: baseURL,
		regions: scraper.Regions,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetInfo returns scraper information
func (*HFSDB) GetInfo() scraper.ScraperInfo {
	return scraper.ScraperInfo{
		Name:         config.ScraperHFSDB,
		Version:      "1",
		Description:  "HFS database API with MD5 based matching",
		Website:      ServiceURL,
		RequiresAuth: false,
	}
}

// Vocabulary returns the HFSDB media type table.
func (*HFSDB) Vocabulary() scraper.Vocabulary {
	return MediaVocabulary
}

// login fetches an API token once. Without credentials, or when the
// service refuses them, requests are sent anonymously.
func (h *HFSDB) login(ctx context.Context) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loggedIn {
		return h.token
	}
	if h.creds.Username == "" || h.creds.Password == "" {
		h.loggedIn = true
		return ""
	}

	body, err := h.client.PostForm(ctx, h.baseURL+"/auth/token", url.Values{
		"username": {h.creds.Username},
		"password": {h.creds.Password},
	})
	if err != nil {
		if ctx.Err() == nil {
			h.loggedIn = true
		}
		log.Warn().Err(err).Msg("HFSDB login failed, continuing anonymously")
		return ""
	}
	h.loggedIn = true

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Token == "" {
		log.Warn().Msg("HFSDB did not return a token, continuing anonymously")
		return ""
	}
	h.token = resp.Token
	log.Debug().Str("user", h.creds.Username).Msg("logged in to HFSDB")
	return h.token
}

func (h *HFSDB) get(ctx context.Context, reqURL string) ([]byte, error) {
	var header http.Header
	if token := h.login(ctx); token != "" {
		header = http.Header{"Authorization": {"Token " + token}}
	}
	return h.client.Get(ctx, reqURL, header)
}

// Lookup finds a game by the MD5 of the ROM, or for arcade systems by the
// ROM set name.
func (h *HFSDB) Lookup(ctx context.Context, keys scraper.IdentityKeys, system string) (*scraper.GameInfo, error) {
	query := url.Values{}
	switch {
	case scraper.IsArcadeSystem(system):
		if keys.Name == "" {
			return nil, scraper.ErrNotFound
		}
		query.Set("medias__description", keys.Name)
	case keys.MD5 != "":
		query.Set("medias__md5", keys.MD5)
	default:
		return nil, scraper.ErrNotFound
	}

	body, err := h.get(ctx, h.baseURL+"/games?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var p page
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to decode games response: %w", err)
	}
	switch {
	case p.Count > 1:
		return nil, fmt.Errorf("%w: %d HFSDB games for %s", scraper.ErrAmbiguousMatch, p.Count, keys.FileName)
	case p.Count == 0 || len(p.Results) == 0:
		return nil, scraper.ErrNotFound
	}

	game, err := decodeGame(p.Results[0])
	if err != nil {
		return nil, err
	}
	return h.convertGame(game), nil
}

func decodeGame(raw json.RawMessage) (*Game, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode game: %w", err)
	}

	var game Game
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &game,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(fields); err != nil {
		return nil, fmt.Errorf("failed to decode game: %w", err)
	}
	return &game, nil
}

func (h *HFSDB) convertGame(game *Game) *scraper.GameInfo {
	info := scraper.NewGameInfo()

	for _, region := range h.regions.Tags() {
		info.Title.Set(region, extraString(game.Extra, "name_"+region))
		info.Description.Set(region, extraString(game.Extra, "description_"+region))
	}
	for hfsRegion, region := range regionTags {
		info.ReleaseDate.Set(region, extraString(game.Extra, "released_at_"+hfsRegion))
	}

	// Genres are only given in French.
	info.Category.Set("fr", metadataValue(game.Metadata, "genre"))
	info.Developer = metadataValue(game.Metadata, "developer")
	info.Publisher = metadataValue(game.Metadata, "editor")
	info.Players = metadataValue(game.Metadata, "players")
	info.CloneOf = game.CloneOf

	raw := make([]scraper.RawMedia, 0, len(game.Medias))
	for _, m := range game.Medias {
		if m.Type == "" {
			continue
		}
		raw = append(raw, scraper.RawMedia{
			Type:   rawType(m),
			URL:    m.File,
			Format: m.Extension,
			Region: regionTag(m.Region),
			Hashes: scraper.Hashes{CRC32: m.CRC32, MD5: m.MD5, SHA1: m.SHA1},
		})
	}
	info.Medias = scraper.Normalize(raw, MediaVocabulary, h.regions)

	log.Debug().Int("id", game.ID).Int("medias", len(info.Medias)).Msg("HFSDB game converted")
	return info
}

func extraString(extra map[string]any, key string) string {
	v, ok := extra[key].(string)
	if !ok {
		return ""
	}
	return html.UnescapeString(strings.TrimSpace(v))
}

func metadataValue(metadata []Metadata, name string) string {
	for _, m := range metadata {
		if m.Name == name {
			return html.UnescapeString(m.Value)
		}
	}
	return ""
}

// rawType qualifies covers and screenshots with their kind so the
// vocabulary can tell a box front from a full box. Kinds the vocabulary
// doesn't know keep the bare type.
func rawType(m GameMedia) string {
	if m.Type != "cover2d" && m.Type != "screenshot" {
		return m.Type
	}
	if len(m.Metadata) == 0 || m.Metadata[0].Value == "" {
		return m.Type
	}
	qualified := m.Type + ":" + m.Metadata[0].Value
	if _, _, ok := MediaVocabulary.Lookup(qualified); !ok {
		return m.Type
	}
	return qualified
}

func regionTag(hfsRegion string) string {
	if tag, ok := regionTags[hfsRegion]; ok {
		return tag
	}
	return strings.ToLower(hfsRegion)
}

// Platforms lists the systems known by HFSDB, following the listing's
// pages.
func (h *HFSDB) Platforms(ctx context.Context) ([]scraper.Platform, error) {
	var platforms []scraper.Platform
	next := h.baseURL + "/systems"

	for pages := 0; next != ""; pages++ {
		if pages == maxPages {
			return nil, errors.New("HFSDB systems listing has too many pages")
		}

		body, err := h.get(ctx, next)
		if err != nil {
			return nil, err
		}

		var p page
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("failed to decode systems response: %w", err)
		}
		for _, r := range p.Results {
			var s System
			if err := json.Unmarshal(r, &s); err != nil {
				return nil, fmt.Errorf("failed to decode system: %w", err)
			}
			platforms = append(platforms, scraper.Platform{
				ID:   s.ID.String(),
				Name: html.UnescapeString(s.Name),
			})
		}

		next = ""
		if p.Next != nil {
			next = *p.Next
		}
	}

	return platforms, nil
}
