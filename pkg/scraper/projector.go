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
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Project resolves every localized field of info for the requested region
// and selects at most one media per asset kind.
//
// Fields with no data in any region are left nil and named in Missing.
// Media in the requested region are kept first; any other asset kind present
// in info is then filled from the first region of o that has it, each kind
// resolved on its own. Media without a region (videos) are used last.
func (o RegionOrder) Project(info *GameInfo, requested string) (*FilteredGameInfo, error) {
	if !o.Known(requested) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLocale, requested)
	}

	filtered := &FilteredGameInfo{
		CloneOf:    info.CloneOf,
		Developer:  info.Developer,
		Publisher:  info.Publisher,
		Players:    info.Players,
		Resolution: info.Resolution,
		Rotation:   parseRotation(info.Rotation),
	}

	fields := []struct {
		dest  **string
		data  Localized
		field string
	}{
		{dest: &filtered.Title, data: info.Title, field: "title"},
		{dest: &filtered.Description, data: info.Description, field: "description"},
		{dest: &filtered.ReleaseDate, data: info.ReleaseDate, field: "date"},
		{dest: &filtered.Category, data: info.Category, field: "category"},
	}
	for _, f := range fields {
		v, err := o.Resolve(requested, f.data)
		switch {
		case errors.Is(err, ErrNoDataForLocale):
			filtered.Missing = append(filtered.Missing, f.field)
		case err != nil:
			return nil, fmt.Errorf("failed to resolve %s: %w", f.field, err)
		default:
			*f.dest = &v
		}
	}

	filtered.Medias = o.filterMedias(info.Medias, requested)
	return filtered, nil
}

// Project is RegionOrder.Project using the default Regions order.
func Project(info *GameInfo, requested string) (*FilteredGameInfo, error) {
	return Regions.Project(info, requested)
}

// FilterOnLang returns the game resolved for a language using the default
// region order.
func (g *GameInfo) FilterOnLang(lang string) (*FilteredGameInfo, error) {
	return Project(g, lang)
}

func (o RegionOrder) filterMedias(medias []Media, requested string) []Media {
	var result []Media
	have := make(map[Asset]bool)

	for _, m := range medias {
		if m.Region == requested && !have[m.Asset] {
			result = append(result, m)
			have[m.Asset] = true
		}
	}

	present := make(map[Asset]bool)
	for _, m := range medias {
		present[m.Asset] = true
	}

	for _, asset := range AllAssets() {
		if !present[asset] || have[asset] {
			continue
		}
		if m, ok := o.findMedia(medias, asset); ok {
			result = append(result, m)
			have[asset] = true
		}
	}

	return result
}

func (o RegionOrder) findMedia(medias []Media, asset Asset) (Media, bool) {
	for _, region := range o {
		for _, m := range medias {
			if m.Asset == asset && m.Region == region {
				return m, true
			}
		}
	}
	for _, m := range medias {
		if m.Asset == asset && m.Region == "" {
			return m, true
		}
	}
	return Media{}, false
}

func parseRotation(s string) int {
	rotation, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return rotation
}
