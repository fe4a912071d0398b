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

package screenscraper

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"slices"
	"strings"

	"github.com/ZaparooProject/altscraper/pkg/config"
	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/ZaparooProject/altscraper/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
)

const (
	// ServiceURL is the address credentials are looked up for in auth.toml.
	ServiceURL = "https://www.screenscraper.fr"

	baseURL  = ServiceURL + "/api2"
	softName = "altscraper"

	// arcadeSystemID is the ScreenScraper platform holding every MAME set.
	arcadeSystemID = "75"
)

// CredentialEnv names the environment variables overriding auth.toml.
var CredentialEnv = config.CredentialEnv{
	Username:    "SS_USER",
	Password:    "SS_PASSWD",
	DevID:       "SS_DEVUSER",
	DevPassword: "SS_DEVPASSWD",
}

// MediaVocabulary maps ScreenScraper media types to assets. Some assets
// accept several types, most preferred first.
var MediaVocabulary = scraper.Vocabulary{
	scraper.AssetScreenshot:  {"ss"},
	scraper.AssetVideo:       {"video-normalized", "video"},
	scraper.AssetBox2D:       {"box-texture"},
	scraper.AssetBox3D:       {"box-3D"},
	scraper.AssetBoxFront:    {"box-2D"},
	scraper.AssetBoxSide:     {"box-2D-side"},
	scraper.AssetBoxBack:     {"box-2D-back"},
	scraper.AssetMarquee:     {"screenmarquee-hd", "screenmarquee", "screenmarqueesmall"},
	scraper.AssetTitleScreen: {"sstitle"},
	scraper.AssetWheel:       {"wheel-hd", "wheel", "wheel-carbon", "wheel-steel"},
}

// ScreenScraper implements the Scraper interface for ScreenScraper.fr API
type ScreenScraper struct {
	client  *httpclient.Client
	creds   config.CredentialEntry
	baseURL string
	regions scraper.RegionOrder
}

// Option configures a ScreenScraper.
type Option func(*ScreenScraper)

// WithBaseURL points the scraper at another API root.
func WithBaseURL(u string) Option {
	return func(ss *ScreenScraper) {
		ss.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithRegionOrder sets the regions media are accepted for.
func WithRegionOrder(order scraper.RegionOrder) Option {
	return func(ss *ScreenScraper) {
		ss.regions = order
	}
}

// NewScreenScraper creates a new ScreenScraper instance
func NewScreenScraper(client *httpclient.Client, creds config.CredentialEntry, opts ...Option) *ScreenScraper {
	ss := &ScreenScraper{
		client:  client,
		creds:   creds,
		baseURL: baseURL,
		regions: scraper.Regions,
	}
	for _, opt := range opts {
		opt(ss)
	}
	return ss
}

// GetInfo returns scraper information
func (*ScreenScraper) GetInfo() scraper.ScraperInfo {
	return scraper.ScraperInfo{
		Name:         config.ScraperScreenScraper,
		Version:      "2",
		Description:  "ScreenScraper.fr API with checksum based matching",
		Website:      ServiceURL,
		RequiresAuth: true,
	}
}

// Vocabulary returns the ScreenScraper media type table.
func (*ScreenScraper) Vocabulary() scraper.Vocabulary {
	return MediaVocabulary
}

// Lookup finds a game by CRC, then MD5, then ROM file name. Arcade systems
// are looked up by ROM name on the arcade platform only.
func (ss *ScreenScraper) Lookup(
	ctx context.Context,
	keys scraper.IdentityKeys,
	system string,
) (*scraper.GameInfo, error) {
	if scraper.IsArcadeSystem(system) {
		return ss.gameInfo(ctx, url.Values{
			"systemid": {arcadeSystemID},
			"romnom":   {keys.FileName},
		})
	}

	return scraper.LookupByKeys(ctx, keys, func(ctx context.Context, kind scraper.KeyKind, value string) (*scraper.GameInfo, error) {
		return ss.gameInfo(ctx, url.Values{string(kind): {value}})
	})
}

// Platforms lists the systems known by ScreenScraper.
func (ss *ScreenScraper) Platforms(ctx context.Context) ([]scraper.Platform, error) {
	apiResp, err := ss.get(ctx, "systemesListe.php", nil)
	if err != nil {
		return nil, err
	}

	platforms := make([]scraper.Platform, 0, len(apiResp.Response.Systems))
	for _, s := range apiResp.Response.Systems {
		platforms = append(platforms, scraper.Platform{
			ID:   s.ID.String(),
			Name: systemName(s.Names),
		})
	}
	return platforms, nil
}

func systemName(names map[string]string) string {
	for _, key := range preferredSystemNames {
		if n := names[key]; n != "" {
			return html.UnescapeString(n)
		}
	}
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	slices.Sort(keys)
	return html.UnescapeString(names[keys[0]])
}

func (ss *ScreenScraper) gameInfo(ctx context.Context, query url.Values) (*scraper.GameInfo, error) {
	apiResp, err := ss.get(ctx, "jeuInfos.php", query)
	if err != nil {
		return nil, err
	}
	if apiResp.Response.Game == nil {
		return nil, scraper.ErrNotFound
	}
	return ss.convertGame(apiResp.Response.Game), nil
}

// buildURL adds the API parameters shared by every endpoint.
func (ss *ScreenScraper) buildURL(endpoint string, query url.Values) (string, error) {
	u, err := url.Parse(ss.baseURL + "/" + endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to parse ScreenScraper URL: %w", err)
	}

	params := url.Values{}
	params.Set("output", "json")
	params.Set("softname", softName)
	if ss.creds.DevID != "" && ss.creds.DevPassword != "" {
		params.Set("devid", ss.creds.DevID)
		params.Set("devpassword", ss.creds.DevPassword)
	}
	if ss.creds.Username != "" && ss.creds.Password != "" {
		params.Set("ssid", ss.creds.Username)
		params.Set("sspassword", ss.creds.Password)
	}
	for k, v := range query {
		params[k] = v
	}

	u.RawQuery = params.Encode()
	return u.String(), nil
}

func (ss *ScreenScraper) get(ctx context.Context, endpoint string, query url.Values) (*APIResponse, error) {
	reqURL, err := ss.buildURL(endpoint, query)
	if err != nil {
		return nil, err
	}

	body, err := ss.client.Get(ctx, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	if apiResp.Header.Error != "" {
		return nil, fmt.Errorf("ScreenScraper API error: %s", apiResp.Header.Error)
	}
	return &apiResp, nil
}

func (ss *ScreenScraper) convertGame(game *Game) *scraper.GameInfo {
	info := scraper.NewGameInfo()

	for _, n := range game.Names {
		info.Title.Set(n.Region, html.UnescapeString(n.Text))
	}
	for _, d := range game.Dates {
		info.ReleaseDate.Set(d.Region, d.Text)
	}
	for _, s := range game.Synopsis {
		info.Description.Set(s.Language, html.UnescapeString(s.Text))
	}
	for lang, names := range genreNames(game.Genres) {
		info.Category.Set(lang, strings.Join(names, ", "))
	}

	if game.Publisher != nil {
		info.Publisher = html.UnescapeString(game.Publisher.Text)
	}
	if game.Developer != nil {
		info.Developer = html.UnescapeString(game.Developer.Text)
	}
	if game.Players != nil {
		info.Players = game.Players.Text
	}
	if game.CloneOf != "0" {
		info.CloneOf = game.CloneOf
	}
	info.Rotation = game.Rotation
	info.Resolution = game.Resolution

	raw := make([]scraper.RawMedia, 0, len(game.Medias))
	for _, m := range game.Medias {
		raw = append(raw, scraper.RawMedia{
			Type:   m.Type,
			URL:    m.URL,
			Format: m.Format,
			Region: m.Region,
			Hashes: scraper.Hashes{CRC32: m.CRC32, MD5: m.MD5, SHA1: m.SHA1},
		})
	}
	info.Medias = scraper.Normalize(raw, MediaVocabulary, ss.regions)

	log.Debug().
		Str("id", game.ID.String()).
		Int("medias", len(info.Medias)).
		Msg("ScreenScraper game converted")
	return info
}

// genreNames groups genre names by language, keeping the order genres are
// listed in.
func genreNames(genres []Genre) map[string][]string {
	byLang := make(map[string][]string)
	for _, g := range genres {
		for _, n := range g.Names {
			if n.Text == "" {
				continue
			}
			byLang[n.Language] = append(byLang[n.Language], html.UnescapeString(n.Text))
		}
	}
	return byLang
}
