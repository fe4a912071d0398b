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
	"encoding/json"
)

type tokenResponse struct {
	Token string `json:"token"`
}

// page is one page of a paginated listing. Results are decoded later since
// games carry one field per language.
type page struct {
	Next    *string           `json:"next"`
	Results []json.RawMessage `json:"results"`
	Count   int               `json:"count"`
}

// Game is a game record. Localized names, descriptions and release dates
// are suffixed with a language or region code and collected in Extra.
type Game struct {
	Extra    map[string]any `mapstructure:",remain"`
	CloneOf  string         `mapstructure:"clone_of"`
	Metadata []Metadata     `mapstructure:"metadata"`
	Medias   []GameMedia    `mapstructure:"medias"`
	ID       int            `mapstructure:"id"`
}

// Metadata is a free form name/value pair attached to games and medias.
type Metadata struct {
	Name  string `mapstructure:"name"`
	Value string `mapstructure:"value"`
}

// GameMedia is a file attached to a game.
type GameMedia struct {
	Type        string     `mapstructure:"type"`
	File        string     `mapstructure:"file"`
	Extension   string     `mapstructure:"extension"`
	Region      string     `mapstructure:"region"`
	Description string     `mapstructure:"description"`
	CRC32       string     `mapstructure:"crc32"`
	MD5         string     `mapstructure:"md5"`
	SHA1        string     `mapstructure:"sha1"`
	Metadata    []Metadata `mapstructure:"metadata"`
}

// System is an entry of the systems listing.
type System struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}
