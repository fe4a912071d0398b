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
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

// Scraper is the interface implemented once per scraping service.
type Scraper interface {
	// Lookup finds a game using the ROM's identity keys. system is the
	// frontend system name, used to pick the service's platform and to switch
	// arcade systems to name based lookups.
	Lookup(ctx context.Context, keys IdentityKeys, system string) (*GameInfo, error)

	// Platforms lists the systems known by the service.
	Platforms(ctx context.Context) ([]Platform, error)

	// Vocabulary returns the media type translation table of the service.
	Vocabulary() Vocabulary

	// GetInfo returns scraper name and version.
	GetInfo() ScraperInfo
}

// ScraperInfo contains scraper metadata
type ScraperInfo struct {
	Name         string
	Version      string
	Description  string
	Website      string
	RequiresAuth bool
}

// Platform is a system as listed by a scraping service.
type Platform struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// arcadeSystems can't be matched reliably by checksum on some services, a
// name based lookup against the service's arcade platform is used instead.
var arcadeSystems = []string{"mame", "arcade", "mame-libretro", "mame4all", "fba"}

// IsArcadeSystem reports whether system belongs to the arcade family.
func IsArcadeSystem(system string) bool {
	return slices.Contains(arcadeSystems, strings.ToLower(system))
}

// KeyKind names a lookup key.
type KeyKind string

const (
	KeyCRC32 KeyKind = "crc"
	KeyMD5   KeyKind = "md5"
	KeyName  KeyKind = "romnom"
)

// KeyLookupFunc performs a single lookup with one key.
type KeyLookupFunc func(ctx context.Context, kind KeyKind, value string) (*GameInfo, error)

// LookupByKeys tries the CRC32, the MD5 and finally the file name of a ROM
// until one of them finds the game. ErrNotFound moves on to the next key,
// any other error stops the chain and is returned as is.
func LookupByKeys(ctx context.Context, keys IdentityKeys, lookup KeyLookupFunc) (*GameInfo, error) {
	chain := []struct {
		kind  KeyKind
		value string
	}{
		{kind: KeyCRC32, value: keys.CRC32},
		{kind: KeyMD5, value: keys.MD5},
		{kind: KeyName, value: keys.FileName},
	}

	for _, k := range chain {
		if k.value == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := lookup(ctx, k.kind, k.value)
		switch {
		case err == nil:
			log.Debug().Str("key", string(k.kind)).Str("rom", keys.FileName).Msg("lookup matched")
			return info, nil
		case errors.Is(err, ErrNotFound):
			log.Debug().Str("key", string(k.kind)).Str("rom", keys.FileName).Msg("lookup inconclusive")
			continue
		default:
			return nil, err
		}
	}

	return nil, ErrNotFound
}
