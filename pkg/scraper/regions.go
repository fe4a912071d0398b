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
	"slices"
)

// RegionOrder is the fallback search order used when data for a requested
// region doesn't exist. Duplicates are tolerated.
type RegionOrder []string

// Regions is the default search order, shared by every scraper. Services
// that don't support regions report their data under one of these tags.
var Regions = RegionOrder{
	"wor", "jp", "eu", "us", "en", "ss", "fr", "de", "it", "es", "pt", "au", "br", "asi", "kr", "ss",
}

// Known reports whether region is one of the tags in the order.
func (o RegionOrder) Known(region string) bool {
	return slices.Contains(o, region)
}

// Tags returns the region tags without duplicates, in order.
func (o RegionOrder) Tags() []string {
	tags := make([]string, 0, len(o))
	for _, r := range o {
		if !slices.Contains(tags, r) {
			tags = append(tags, r)
		}
	}
	return tags
}

// Localized maps a region tag to a value, e.g. a title in several languages.
type Localized map[string]string

// Set stores value for region, ignoring empty values.
func (l Localized) Set(region, value string) {
	if value == "" {
		return
	}
	l[region] = value
}

// firstKey returns the lexically smallest key so the last resort fallback
// is stable between runs.
func (l Localized) firstKey() string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys[0]
}

// Resolve picks the best value in m for the requested region using o.
//
// An exact match always wins, even when requested isn't part of the order.
// Otherwise the first region of the order present in m is used. If none
// match but m isn't empty, a single arbitrary entry is returned because some
// services report ungrouped data under a single unknown tag. An empty m
// returns ErrNoDataForLocale.
func (o RegionOrder) Resolve(requested string, m Localized) (string, error) {
	if len(m) == 0 {
		return "", ErrNoDataForLocale
	}
	if v, ok := m[requested]; ok {
		return v, nil
	}
	for _, r := range o {
		if v, ok := m[r]; ok {
			return v, nil
		}
	}
	return m[m.firstKey()], nil
}

// Resolve is RegionOrder.Resolve using the default Regions order.
func Resolve(requested string, m Localized) (string, error) {
	return Regions.Resolve(requested, m)
}
