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

package thegamesdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/ZaparooProject/altscraper/pkg/config"
	"github.com/ZaparooProject/altscraper/pkg/helpers/syncutil"
	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/ZaparooProject/altscraper/pkg/scraper/systems"
	"github.com/ZaparooProject/altscraper/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
)

const (
	// ServiceURL is the address credentials are looked up for in auth.toml.
	ServiceURL = "https://api.thegamesdb.net"

	baseURL = ServiceURL + "/v1"

	// region is the tag TheGamesDB data is reported under, the service
	// doesn't track regions. Orders without it use their first tag.
	region = "wor"
	// language of descriptions and genres.
	language = "en"

	gameFields = "players,publishers,genres,overview,rating,alternates"
)

// CredentialEnv names the environment variable overriding auth.toml.
var CredentialEnv = config.CredentialEnv{
	APIKey: "TGDB_APIKEY",
}

// MediaVocabulary maps TheGamesDB image types to assets. Box art is
// qualified by its side.
var MediaVocabulary = scraper.Vocabulary{
	scraper.AssetScreenshot:  {"screenshot"},
	scraper.AssetBoxFront:    {"boxart-front"},
	scraper.AssetBoxBack:     {"boxart-back"},
	scraper.AssetMarquee:     {"banner"},
	scraper.AssetTitleScreen: {"titlescreen"},
	scraper.AssetWheel:       {"clearlogo"},
}

// TheGamesDB implements the Scraper interface for TheGamesDB API
type TheGamesDB struct {
	client  *httpclient.Client
	systems *systems.Table
	names   map[string]map[string]Named
	creds   config.CredentialEntry
	baseURL string
	regions scraper.RegionOrder
	mu      syncutil.Mutex
}

// Option configures a TheGamesDB scraper.
type Option func(*TheGamesDB)

// WithBaseURL points the scraper at another API root.
func WithBaseURL(u string) Option {
	return func(tgdb *TheGamesDB) {
		tgdb.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithRegionOrder sets the regions media are normalized against. An empty
// order keeps the default one.
func WithRegionOrder(order scraper.RegionOrder) Option {
	return func(tgdb *TheGamesDB) {
		if len(order) > 0 {
			tgdb.regions = order
		}
	}
}

// NewTheGamesDB creates a new TheGamesDB instance. The systems table gives
// the platform a ROM is searched on.
func NewTheGamesDB(
	client *httpclient.Client,
	creds config.CredentialEntry,
	table *systems.Table,
	opts ...Option,
) *TheGamesDB {
	tgdb := &TheGamesDB{
		client:  client,
		systems: table,
		creds:   creds,
		baseURL: baseURL,
		regions: scraper.Regions,
		names:   make(map[string]map[string]Named),
	}
	for _, opt := range opts {
		opt(tgdb)
	}
	return tgdb
}

// GetInfo returns scraper information
func (*TheGamesDB) GetInfo() scraper.ScraperInfo {
	return scraper.ScraperInfo{
		Name:         config.ScraperTheGamesDB,
		Version:      "1",
		Description:  "TheGamesDB.net API with name based searching",
		Website:      "https://thegamesdb.net",
		RequiresAuth: true,
	}
}

// Vocabulary returns the TheGamesDB image type table.
func (*TheGamesDB) Vocabulary() scraper.Vocabulary {
	return MediaVocabulary
}

func (tgdb *TheGamesDB) buildURL(endpoint string, query url.Values) string {
	params := url.Values{}
	if tgdb.creds.APIKey != "" {
		params.Set("apikey", tgdb.creds.APIKey)
	}
	for k, v := range query {
		params[k] = v
	}
	return tgdb.baseURL + "/" + endpoint + "?" + params.Encode()
}

func get[T any](ctx context.Context, tgdb *TheGamesDB, endpoint string, query url.Values) (T, error) {
	var apiResp APIResponse[T]
	body, err := tgdb.client.Get(ctx, tgdb.buildURL(endpoint, query), nil)
	if err != nil {
		return apiResp.Data, err
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return apiResp.Data, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	if apiResp.Code != 200 {
		return apiResp.Data, fmt.Errorf("TheGamesDB API error: %s (code %d)", apiResp.Status, apiResp.Code)
	}
	log.Debug().Int("remaining", apiResp.RemainingRequests).Str("endpoint", endpoint).Msg("TheGamesDB allowance")
	return apiResp.Data, nil
}

// Lookup searches the game by ROM name on the system's platform. TheGamesDB
// has no checksums so the search result is checked against the name.
func (tgdb *TheGamesDB) Lookup(ctx context.Context, keys scraper.IdentityKeys, system string) (*scraper.GameInfo, error) {
	platformID, err := tgdb.systems.PlatformID(system, config.ScraperTheGamesDB)
	if err != nil {
		return nil, err
	}

	name := SearchName(keys.Name)
	if name == "" {
		return nil, scraper.ErrNotFound
	}

	data, err := get[GamesData](ctx, tgdb, "Games/ByGameName", url.Values{
		"name":             {name},
		"filter[platform]": {platformID},
		"fields":           {gameFields},
	})
	if err != nil {
		return nil, err
	}

	game, err := matchGame(name, data.Games)
	if err != nil {
		return nil, err
	}

	images, err := get[ImagesData](ctx, tgdb, "Games/Images", url.Values{
		"games_id": {strconv.Itoa(game.ID)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get images of game %d: %w", game.ID, err)
	}

	return tgdb.convertGame(ctx, game, &images), nil
}

func (tgdb *TheGamesDB) convertGame(ctx context.Context, game *Game, images *ImagesData) *scraper.GameInfo {
	dataRegion, dataLanguage := tgdb.tag(region), tgdb.tag(language)

	info := scraper.NewGameInfo()
	info.Title.Set(dataRegion, game.GameTitle)
	info.ReleaseDate.Set(dataRegion, game.ReleaseDate)
	info.Description.Set(dataLanguage, game.Overview)
	info.Category.Set(dataLanguage, tgdb.resolveNames(ctx, "Genres", game.Genres))
	info.Developer = tgdb.resolveNames(ctx, "Developers", game.Developers)
	info.Publisher = tgdb.resolveNames(ctx, "Publishers", game.Publishers)
	if game.Players > 0 {
		info.Players = strconv.Itoa(game.Players)
	}

	var raw []scraper.RawMedia
	for _, img := range images.Images[strconv.Itoa(game.ID)] {
		rawType := img.Type
		if img.Side != "" {
			rawType += "-" + img.Side
		}
		raw = append(raw, scraper.RawMedia{
			Type:   rawType,
			URL:    images.BaseURL.Original + img.Filename,
			Format: strings.TrimPrefix(path.Ext(img.Filename), "."),
			Region: dataRegion,
		})
	}
	info.Medias = scraper.Normalize(raw, MediaVocabulary, tgdb.regions)

	return info
}

// tag returns preferred when the region order knows it, else the first tag
// of the order, so the data stays reachable when projecting.
func (tgdb *TheGamesDB) tag(preferred string) string {
	if tgdb.regions.Known(preferred) {
		return preferred
	}
	return tgdb.regions[0]
}

// resolveNames turns genre, developer or publisher ids into a comma
// separated list of names. Listings are fetched once; failures only lose the
// names.
func (tgdb *TheGamesDB) resolveNames(ctx context.Context, endpoint string, ids []int) string {
	if len(ids) == 0 {
		return ""
	}

	tgdb.mu.Lock()
	defer tgdb.mu.Unlock()

	table, ok := tgdb.names[endpoint]
	if !ok {
		data, err := get[NamedData](ctx, tgdb, endpoint, nil)
		if err != nil {
			log.Warn().Err(err).Str("endpoint", endpoint).Msg("failed to list TheGamesDB names")
			return ""
		}
		switch endpoint {
		case "Genres":
			table = data.Genres
		case "Developers":
			table = data.Developers
		case "Publishers":
			table = data.Publishers
		}
		tgdb.names[endpoint] = table
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if n, ok := table[strconv.Itoa(id)]; ok {
			names = append(names, n.Name)
		}
	}
	return strings.Join(names, ", ")
}

// Platforms lists the platforms known by TheGamesDB, ordered by id.
func (tgdb *TheGamesDB) Platforms(ctx context.Context) ([]scraper.Platform, error) {
	data, err := get[PlatformsData](ctx, tgdb, "Platforms", nil)
	if err != nil {
		return nil, err
	}

	list := make([]Platform, 0, len(data.Platforms))
	for _, p := range data.Platforms {
		list = append(list, p)
	}
	slices.SortFunc(list, func(a, b Platform) int { return a.ID - b.ID })

	platforms := make([]scraper.Platform, len(list))
	for i, p := range list {
		platforms[i] = scraper.Platform{ID: strconv.Itoa(p.ID), Name: p.Name}
	}
	return platforms, nil
}
