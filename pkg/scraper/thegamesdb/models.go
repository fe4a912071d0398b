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

// APIResponse represents the root response structure from TheGamesDB API
type APIResponse[T any] struct {
	Data              T      `json:"data"`
	Status            string `json:"status"`
	Code              int    `json:"code"`
	RemainingRequests int    `json:"remaining_monthly_allowance"`
}

// GamesData contains the games matched by a search.
type GamesData struct {
	Games []Game `json:"games"`
	Count int    `json:"count"`
}

// ImagesData contains the images of games, keyed by game id.
type ImagesData struct {
	Images  map[string][]Image `json:"images"`
	BaseURL BaseURL            `json:"base_url"`
	Count   int                `json:"count"`
}

// BaseURL holds the URL prefixes of each image size.
type BaseURL struct {
	Original string `json:"original"`
	Large    string `json:"large"`
	Medium   string `json:"medium"`
	Thumb    string `json:"thumb"`
}

// PlatformsData contains the platform listing.
type PlatformsData struct {
	Platforms map[string]Platform `json:"platforms"`
	Count     int                 `json:"count"`
}

// NamedData contains a genre, developer or publisher listing.
type NamedData struct {
	Genres     map[string]Named `json:"genres"`
	Developers map[string]Named `json:"developers"`
	Publishers map[string]Named `json:"publishers"`
}

// Game represents a game from TheGamesDB
type Game struct {
	ReleaseDate    string   `json:"release_date"`
	Overview       string   `json:"overview"`
	GameTitle      string   `json:"game_title"`
	Rating         string   `json:"rating"`
	AlternateNames []string `json:"alternates,omitempty"`
	Genres         []int    `json:"genres,omitempty"`
	Developers     []int    `json:"developers,omitempty"`
	Publishers     []int    `json:"publishers,omitempty"`
	Platform       int      `json:"platform"`
	Players        int      `json:"players"`
	ID             int      `json:"id"`
}

// Image represents an image of a game.
type Image struct {
	Type       string `json:"type"`
	Side       string `json:"side"`
	Filename   string `json:"filename"`
	Resolution string `json:"resolution"`
	ID         int    `json:"id"`
}

// Platform represents a gaming platform
type Platform struct {
	Name  string `json:"name"`
	Alias string `json:"alias"`
	ID    int    `json:"id"`
}

// Named is a genre, developer or publisher.
type Named struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}
