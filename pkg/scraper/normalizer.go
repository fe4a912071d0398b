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
	"github.com/rs/zerolog/log"
)

// Vocabulary translates a service's media type names to assets. When an
// asset lists several raw types they are interchangeable candidates for it,
// most preferred first.
type Vocabulary map[Asset][]string

// Lookup returns the asset a raw type maps to and its priority within that
// asset's candidate list (0 is the most preferred). A raw type listed under
// several assets maps to the first one in asset declaration order.
func (v Vocabulary) Lookup(rawType string) (asset Asset, priority int, ok bool) {
	for _, a := range AllAssets() {
		for i, t := range v[a] {
			if t == rawType {
				return a, i, true
			}
		}
	}
	return 0, 0, false
}

// Assets returns the asset kinds the vocabulary can produce.
func (v Vocabulary) Assets() []Asset {
	var assets []Asset
	for _, a := range AllAssets() {
		if len(v[a]) > 0 {
			assets = append(assets, a)
		}
	}
	return assets
}

// RawMedia is a media record decoded from a service response, before its
// type is translated.
type RawMedia struct {
	Hashes Hashes
	Type   string
	URL    string
	Format string
	Region string
}

type mediaKey struct {
	region string
	asset  Asset
}

type candidate struct {
	media    Media
	priority int
}

// Normalize translates raw media records to assets and keeps a single
// record per (asset, region).
//
// Records with an unmapped type are dropped, as are records without a region
// unless they are videos, and records with a region outside order. When
// several records compete for the same (asset, region) the one whose raw type
// has the lowest priority in the vocabulary wins, ties going to the first
// one seen. Output order follows the first appearance of each pair so the
// result is stable for identical input.
func Normalize(raw []RawMedia, vocab Vocabulary, order RegionOrder) []Media {
	var winners []candidate
	index := make(map[mediaKey]int)

	for i := range raw {
		r := &raw[i]
		asset, priority, ok := vocab.Lookup(r.Type)
		if !ok {
			continue
		}

		if r.Region == "" && asset != AssetVideo {
			log.Debug().Str("type", r.Type).Str("url", r.URL).Msg("media has no region, skipping")
			continue
		}
		if r.Region != "" && !order.Known(r.Region) {
			log.Debug().Str("type", r.Type).Str("region", r.Region).Msg("unknown media region, skipping")
			continue
		}

		c := candidate{
			media: Media{
				Asset:     asset,
				Hashes:    r.Hashes,
				URL:       r.URL,
				Extension: r.Format,
				Region:    r.Region,
				RawType:   r.Type,
			},
			priority: priority,
		}

		key := mediaKey{asset: asset, region: r.Region}
		if at, seen := index[key]; seen {
			if c.priority < winners[at].priority {
				winners[at] = c
			}
			continue
		}
		index[key] = len(winners)
		winners = append(winners, c)
	}

	medias := make([]Media, len(winners))
	for i, w := range winners {
		medias[i] = w.media
	}
	return medias
}
