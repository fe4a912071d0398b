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

package scraper

import (
	"fmt"
)

// Hashes holds the optional content hashes a service reports for a file.
type Hashes struct {
	CRC32 string
	MD5   string
	SHA1  string
}

// Media is one downloadable asset of a game.
type Media struct {
	Hashes    Hashes
	URL       string
	Extension string // png, jpg, mp4 ...
	Region    string // empty when the service gave none
	RawType   string // the service's own media type name
	Asset     Asset
}

func (m Media) String() string {
	return fmt.Sprintf("%s[%s] %s (%s)", m.Asset, m.Region, m.URL, m.RawType)
}

// GameInfo is one scraped game, before filtering on a language.
type GameInfo struct {
	Title       Localized
	Description Localized
	ReleaseDate Localized
	Category    Localized
	CloneOf     string
	Developer   string
	Publisher   string
	Players     string
	Rotation    string
	Resolution  string
	Medias      []Media
}

// NewGameInfo returns a GameInfo with its localized fields allocated.
func NewGameInfo() *GameInfo {
	return &GameInfo{
		Title:       Localized{},
		Description: Localized{},
		ReleaseDate: Localized{},
		Category:    Localized{},
	}
}

// FilteredGameInfo is a GameInfo resolved for a single language. A nil
// localized field means the game had no data for it in any region.
type FilteredGameInfo struct {
	Title       *string
	Description *string
	ReleaseDate *string
	Category    *string
	CloneOf     string
	Developer   string
	Publisher   string
	Players     string
	Resolution  string
	Missing     []string
	Medias      []Media
	Rotation    int
}

// Media returns the media selected for an asset kind, if any.
func (f *FilteredGameInfo) Media(asset Asset) (Media, bool) {
	for _, m := range f.Medias {
		if m.Asset == asset {
			return m, true
		}
	}
	return Media{}, false
}

// Year returns the first four characters of the release date, which is the
// format frontends expect in game lists.
func (f *FilteredGameInfo) Year() string {
	if f.ReleaseDate == nil || len(*f.ReleaseDate) < 4 {
		return ""
	}
	return (*f.ReleaseDate)[:4]
}

// IdentityKeys are the keys a scraper can use to look up a ROM.
type IdentityKeys struct {
	CRC32    string
	MD5      string
	SHA1     string
	FileName string // base name including extension
	Name     string // base name without extension
	Size     int64
}

// ScraperProgress represents the current scraping progress.
type ScraperProgress struct {
	CurrentGame     string `json:"currentGame"`
	Status          string `json:"status"` // "idle", "running", "completed", "failed", "cancelled"
	LastError       string `json:"lastError"`
	ProcessedGames  int    `json:"processedGames"`
	TotalGames      int    `json:"totalGames"`
	FoundGames      int    `json:"foundGames"`
	DownloadedFiles int    `json:"downloadedFiles"`
	SkippedFiles    int    `json:"skippedFiles"`
	ErrorCount      int    `json:"errorCount"`
}
