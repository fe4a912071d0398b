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

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minSimilarity is the Jaro-Winkler score a title needs to be considered
// the same game as the ROM name.
const minSimilarity float32 = 0.9

// romTags matches the (USA), [!] style tags of ROM file names.
var romTags = regexp.MustCompile(`\s*[\(\[][^\)\]]*[\)\]]`)

// SearchName strips ROM tags from a file name so it can be used as a search
// query.
func SearchName(name string) string {
	return strings.TrimSpace(romTags.ReplaceAllString(name, ""))
}

func removeDiacritics(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	if normalized, _, err := transform.String(t, s); err == nil {
		return normalized
	}
	return s
}

// normalizeTitle folds a title to lower case ASCII-ish words so that
// punctuation and accents don't affect comparison.
func normalizeTitle(s string) string {
	s = strings.ToLower(removeDiacritics(SearchName(s)))
	s = strings.ReplaceAll(s, "&", " and ")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return strings.Join(fields, " ")
}

// titleSimilarity compares query with the title and alternate names of g.
func titleSimilarity(query string, g *Game) (score float32, exact bool) {
	for _, title := range append([]string{g.GameTitle}, g.AlternateNames...) {
		normalized := normalizeTitle(title)
		if normalized == query {
			return 1, true
		}
		if s := edlib.JaroWinklerSimilarity(query, normalized); s > score {
			score = s
		}
	}
	return score, false
}

// matchGame picks the game whose title matches name. An exact match after
// normalization wins; otherwise exactly one title must be similar enough,
// several close titles being ambiguous.
func matchGame(name string, games []Game) (*Game, error) {
	query := normalizeTitle(name)
	if query == "" || len(games) == 0 {
		return nil, scraper.ErrNotFound
	}

	var exact, near []*Game
	for i := range games {
		g := &games[i]
		score, isExact := titleSimilarity(query, g)
		log.Debug().
			Str("query", query).
			Str("title", g.GameTitle).
			Float32("similarity", score).
			Msg("TheGamesDB candidate")
		switch {
		case isExact:
			exact = append(exact, g)
		case score >= minSimilarity:
			near = append(near, g)
		}
	}

	switch {
	case len(exact) == 1:
		return exact[0], nil
	case len(exact) > 1:
		return nil, fmt.Errorf("%w: %d TheGamesDB games titled %q", scraper.ErrAmbiguousMatch, len(exact), name)
	case len(near) == 1:
		return near[0], nil
	case len(near) > 1:
		return nil, fmt.Errorf("%w: %d TheGamesDB games close to %q", scraper.ErrAmbiguousMatch, len(near), name)
	default:
		return nil, scraper.ErrNotFound
	}
}
