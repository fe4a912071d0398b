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
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ZaparooProject/altscraper/pkg/config"
	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/ZaparooProject/altscraper/pkg/shared/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gameResponse = `{
  "count": 1,
  "next": null,
  "results": [{
    "id": 1234,
    "name_fr": "Street Fighter II&#039;",
    "name_en": "Street Fighter II'",
    "name_jp": "",
    "description_fr": "Un jeu de combat",
    "released_at_PAL": "1992-06-01",
    "released_at_US": null,
    "released_at_JPN": "1991-03-01",
    "released_at_WORLD": "",
    "clone_of": null,
    "metadata": [
      {"name": "genre", "value": "Combat"},
      {"name": "developer", "value": "Capcom"},
      {"name": "editor", "value": "Capcom"},
      {"name": "players", "value": 2}
    ],
    "medias": [
      {"type": "cover2d", "file": "https://h/front.jpg", "extension": "jpg", "region": "PAL",
       "crc32": "01", "md5": "02", "sha1": "03", "metadata": [{"name": "kind", "value": "front"}]},
      {"type": "cover2d", "file": "https://h/full.jpg", "extension": "jpg", "region": "PAL",
       "metadata": [{"name": "kind", "value": "full"}]},
      {"type": "cover2d", "file": "https://h/back.jpg", "extension": "jpg", "region": "US",
       "metadata": [{"name": "kind", "value": "back"}]},
      {"type": "screenshot", "file": "https://h/title.png", "extension": "png", "region": "WORLD",
       "metadata": [{"name": "kind", "value": "title"}]},
      {"type": "screenshot", "file": "https://h/ingame.png", "extension": "png", "region": "WORLD",
       "metadata": [{"name": "kind", "value": "in game"}]},
      {"type": "screenshot", "file": "https://h/plain.png", "extension": "png", "region": "WORLD", "metadata": []},
      {"type": "video", "file": "https://h/video.mp4", "extension": "mp4", "region": ""},
      {"type": "logo", "file": "https://h/logo.png", "extension": "png", "region": "JPN"},
      {"type": "manual", "file": "https://h/manual.pdf", "extension": "pdf", "region": "PAL"},
      {"type": "", "file": "https://h/none.png", "extension": "png", "region": "PAL"}
    ]
  }]
}`

func newTestHFSDB(t *testing.T, creds config.CredentialEntry, handler http.HandlerFunc) *HFSDB {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHFSDB(httpclient.NewClient(), creds, WithBaseURL(server.URL))
}

func TestHFSDBImplementsScraper(t *testing.T) {
	t.Parallel()

	var _ scraper.Scraper = &HFSDB{}

	h := NewHFSDB(httpclient.NewClient(), config.CredentialEntry{})
	assert.Equal(t, config.ScraperHFSDB, h.GetInfo().Name)
	assert.Equal(t, MediaVocabulary, h.Vocabulary())
}

func TestLookupLogsInAndConvertsGame(t *testing.T) {
	t.Parallel()

	var logins atomic.Int32
	h := newTestHFSDB(t, config.CredentialEntry{Username: "user", Password: "pass"},
		func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/auth/token":
				logins.Add(1)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "user", r.FormValue("username"))
				assert.Equal(t, "pass", r.FormValue("password"))
				_, _ = w.Write([]byte(`{"token": "t0k3n"}`))
			case "/games":
				assert.Equal(t, "Token t0k3n", r.Header.Get("Authorization"))
				assert.Equal(t, "0a1b", r.URL.Query().Get("medias__md5"))
				_, _ = w.Write([]byte(gameResponse))
			default:
				http.NotFound(w, r)
			}
		})

	keys := scraper.IdentityKeys{MD5: "0a1b", FileName: "sf2.md", Name: "sf2"}
	info, err := h.Lookup(context.Background(), keys, "megadrive")
	require.NoError(t, err)
	_, err = h.Lookup(context.Background(), keys, "megadrive")
	require.NoError(t, err)
	assert.Equal(t, int32(1), logins.Load())

	assert.Equal(t, scraper.Localized{"fr": "Street Fighter II'", "en": "Street Fighter II'"}, info.Title)
	assert.Equal(t, scraper.Localized{"fr": "Un jeu de combat"}, info.Description)
	assert.Equal(t, scraper.Localized{"eu": "1992-06-01", "jp": "1991-03-01"}, info.ReleaseDate)
	assert.Equal(t, scraper.Localized{"fr": "Combat"}, info.Category)
	assert.Equal(t, "Capcom", info.Developer)
	assert.Equal(t, "Capcom", info.Publisher)
	assert.Equal(t, "2", info.Players)
	assert.Empty(t, info.CloneOf)

	byAsset := make(map[scraper.Asset]scraper.Media)
	for _, m := range info.Medias {
		_, dup := byAsset[m.Asset]
		require.False(t, dup, "duplicate %s", m.Asset)
		byAsset[m.Asset] = m
	}
	assert.Len(t, byAsset, 7)
	assert.Equal(t, "https://h/front.jpg", byAsset[scraper.AssetBoxFront].URL)
	assert.Equal(t, "eu", byAsset[scraper.AssetBoxFront].Region)
	assert.Equal(t, scraper.Hashes{CRC32: "01", MD5: "02", SHA1: "03"}, byAsset[scraper.AssetBoxFront].Hashes)
	assert.Equal(t, "https://h/full.jpg", byAsset[scraper.AssetBox2D].URL)
	assert.Equal(t, "https://h/back.jpg", byAsset[scraper.AssetBoxBack].URL)
	assert.Equal(t, "us", byAsset[scraper.AssetBoxBack].Region)
	assert.Equal(t, "https://h/title.png", byAsset[scraper.AssetTitleScreen].URL)
	assert.Equal(t, "https://h/ingame.png", byAsset[scraper.AssetScreenshot].URL)
	assert.Equal(t, "screenshot:in game", byAsset[scraper.AssetScreenshot].RawType)
	assert.Equal(t, "https://h/video.mp4", byAsset[scraper.AssetVideo].URL)
	assert.Equal(t, "https://h/logo.png", byAsset[scraper.AssetMarquee].URL)
	assert.Equal(t, "jp", byAsset[scraper.AssetMarquee].Region)
}

func TestLookupArcadeUsesSetName(t *testing.T) {
	t.Parallel()

	h := newTestHFSDB(t, config.CredentialEntry{}, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "sf2", r.URL.Query().Get("medias__description"))
		assert.Empty(t, r.URL.Query().Get("medias__md5"))
		_, _ = w.Write([]byte(gameResponse))
	})

	_, err := h.Lookup(context.Background(), scraper.IdentityKeys{MD5: "0a1b", FileName: "sf2.zip", Name: "sf2"}, "arcade")
	require.NoError(t, err)
}

func TestLookupResultCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr error
		body    string
		name    string
	}{
		{name: "no result", body: `{"count": 0, "results": []}`, wantErr: scraper.ErrNotFound},
		{name: "several results", body: `{"count": 3, "results": [{}, {}, {}]}`, wantErr: scraper.ErrAmbiguousMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newTestHFSDB(t, config.CredentialEntry{}, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := h.Lookup(context.Background(), scraper.IdentityKeys{MD5: "0a1b"}, "snes")
			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, scraper.IsNoMatch(err))
		})
	}
}

func TestLookupWithoutMD5(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	h := newTestHFSDB(t, config.CredentialEntry{}, func(_ http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	})

	_, err := h.Lookup(context.Background(), scraper.IdentityKeys{CRC32: "1234", FileName: "x.sfc"}, "snes")
	require.ErrorIs(t, err, scraper.ErrNotFound)
	assert.Zero(t, calls.Load())
}

func TestLoginRefusedContinuesAnonymously(t *testing.T) {
	t.Parallel()

	h := newTestHFSDB(t, config.CredentialEntry{Username: "user", Password: "wrong"},
		func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/auth/token" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"non_field_errors": ["Unable to log in"]}`))
				return
			}
			assert.Empty(t, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(gameResponse))
		})

	info, err := h.Lookup(context.Background(), scraper.IdentityKeys{MD5: "0a1b"}, "snes")
	require.NoError(t, err)
	assert.NotEmpty(t, info.Title)
}

func TestPlatformsFollowsPages(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/systems", r.URL.Path)
		switch r.URL.Query().Get("page") {
		case "":
			_, _ = w.Write([]byte(`{"count": 3, "next": "http://` + r.Host + `/systems?page=2",
				"results": [{"id": 1, "name": "Super Nintendo"}, {"id": 2, "name": "Mega Drive"}]}`))
		case "2":
			_, _ = w.Write([]byte(`{"count": 3, "next": null, "results": [{"id": 3, "name": "Neo&#183;Geo"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	h := NewHFSDB(httpclient.NewClient(), config.CredentialEntry{}, WithBaseURL(server.URL))
	platforms, err := h.Platforms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []scraper.Platform{
		{ID: "1", Name: "Super Nintendo"},
		{ID: "2", Name: "Mega Drive"},
		{ID: "3", Name: "Neo·Geo"},
	}, platforms)
}

func TestRawType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want  string
		media GameMedia
	}{
		{want: "cover2d:front", media: GameMedia{Type: "cover2d", Metadata: []Metadata{{Value: "front"}}}},
		{want: "cover2d", media: GameMedia{Type: "cover2d"}},
		{want: "screenshot:title", media: GameMedia{Type: "screenshot", Metadata: []Metadata{{Value: "title"}}}},
		{want: "wheel", media: GameMedia{Type: "wheel", Metadata: []Metadata{{Value: "hd"}}}},
		{want: "screenshot", media: GameMedia{Type: "screenshot", Metadata: []Metadata{{Value: "gameplay"}}}},
		{want: "cover2d", media: GameMedia{Type: "cover2d", Metadata: []Metadata{{Value: "spine"}}}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, rawType(tt.media))
	}
}

func TestConvertGameKeepsUnknownMediaKinds(t *testing.T) {
	t.Parallel()

	h := NewHFSDB(httpclient.NewClient(), config.CredentialEntry{})
	info := h.convertGame(&Game{Medias: []GameMedia{
		{Type: "screenshot", File: "https://h/gameplay.png", Extension: "png", Region: "US",
			Metadata: []Metadata{{Name: "kind", Value: "gameplay"}}},
		{Type: "cover2d", File: "https://h/spine.jpg", Extension: "jpg", Region: "US",
			Metadata: []Metadata{{Name: "kind", Value: "spine"}}},
	}})

	require.Len(t, info.Medias, 2)
	assert.Equal(t, scraper.AssetScreenshot, info.Medias[0].Asset)
	assert.Equal(t, "us", info.Medias[0].Region)
	assert.Equal(t, scraper.AssetBox2D, info.Medias[1].Asset)
	assert.Equal(t, "https://h/spine.jpg", info.Medias[1].URL)
}
