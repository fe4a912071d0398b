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
	"strings"
)

// Asset is a canonical kind of media a frontend can use. Each scraper owns
// a Vocabulary translating its own media type names to these values.
type Asset int

const (
	AssetScreenshot Asset = iota
	AssetVideo
	AssetBox2D // full box: back + side + front
	AssetBox3D
	AssetBoxFront
	AssetBoxSide
	AssetBoxBack
	AssetMarquee
	AssetTitleScreen
	AssetWheel
)

var assetNames = [...]string{
	AssetScreenshot:  "screenshot",
	AssetVideo:       "video",
	AssetBox2D:       "box2d",
	AssetBox3D:       "box3d",
	AssetBoxFront:    "box-front",
	AssetBoxSide:     "box-side",
	AssetBoxBack:     "box-back",
	AssetMarquee:     "marquee",
	AssetTitleScreen: "title",
	AssetWheel:       "wheel",
}

// AllAssets returns every asset kind in declaration order.
func AllAssets() []Asset {
	assets := make([]Asset, len(assetNames))
	for i := range assetNames {
		assets[i] = Asset(i)
	}
	return assets
}

func (a Asset) String() string {
	if !a.Valid() {
		return fmt.Sprintf("Asset(%d)", int(a))
	}
	return assetNames[a]
}

// Valid reports whether a is one of the declared asset kinds.
func (a Asset) Valid() bool {
	return a >= AssetScreenshot && int(a) < len(assetNames)
}

// ParseAsset returns the asset kind for a name as printed by String.
func ParseAsset(name string) (Asset, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range assetNames {
		if n == name {
			return Asset(i), nil
		}
	}
	return 0, fmt.Errorf("unknown asset: %q", name)
}

// MarshalText implements encoding.TextMarshaler so assets can be used in
// TOML config lists.
func (a Asset) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid asset: %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Asset) UnmarshalText(text []byte) error {
	parsed, err := ParseAsset(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
