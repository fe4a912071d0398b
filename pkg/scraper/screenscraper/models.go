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
	"encoding/json"
)

// APIResponse represents the top-level ScreenScraper API response
type APIResponse struct {
	Response Response `json:"response"`
	Header   Header   `json:"header"`
}

// Header contains API response metadata
type Header struct {
	APIVersion   string `json:"APIversion"` //nolint:tagliatelle // External API format
	DateTime     string `json:"dateTime"`
	CommandAsked string `json:"commandAsked"`
	Success      string `json:"success"`
	Error        string `json:"error"`
}

// Response contains the actual game data
type Response struct {
	Game    *Game    `json:"jeu,omitempty"`
	Systems []System `json:"systemes,omitempty"`
}

// Game represents a game in the ScreenScraper database
type Game struct {
	ID          json.Number    `json:"id"`
	CloneOf     string         `json:"cloneof,omitempty"`
	Rotation    string         `json:"rotation,omitempty"`
	Resolution  string         `json:"resolution,omitempty"`
	Publisher   *IDText        `json:"editeur,omitempty"`
	Developer   *IDText        `json:"developpeur,omitempty"`
	Players     *IDText        `json:"joueurs,omitempty"`
	Names       []RegionText   `json:"noms,omitempty"`
	Dates       []RegionText   `json:"dates,omitempty"`
	Synopsis    []LanguageText `json:"synopsis,omitempty"`
	Genres      []Genre        `json:"genres,omitempty"`
	Medias      []Media        `json:"medias,omitempty"`
}

// IDText is a referenced value such as a publisher.
type IDText struct {
	ID   json.Number `json:"id,omitempty"`
	Text string      `json:"text"`
}

// RegionText is a value for one region.
type RegionText struct {
	Region string `json:"region"`
	Text   string `json:"text"`
}

// LanguageText is a value for one language.
type LanguageText struct {
	Language string `json:"langue"`
	Text     string `json:"text"`
}

// Genre is a game category, named in several languages.
type Genre struct {
	ID    json.Number    `json:"id,omitempty"`
	Names []LanguageText `json:"noms"`
}

// Media represents game media (images, videos, etc.)
type Media struct {
	Type   string `json:"type"`
	Parent string `json:"parent,omitempty"`
	URL    string `json:"url"`
	Region string `json:"region,omitempty"`
	Format string `json:"format,omitempty"`
	CRC32  string `json:"crc,omitempty"`
	MD5    string `json:"md5,omitempty"`
	SHA1   string `json:"sha1,omitempty"`
}

// System represents a gaming system/platform
type System struct {
	ID    json.Number       `json:"id"`
	Names map[string]string `json:"noms"`
}

// preferredSystemNames are tried in order when naming a system.
var preferredSystemNames = []string{"nom_eu", "nom_us", "nom_recalbox", "nom_retropie", "nom_launchbox"}
