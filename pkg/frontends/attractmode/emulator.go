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

package attractmode

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/ZaparooProject/altscraper/pkg/scraper/systems"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	ArtworkFlyer   = "flyer"
	ArtworkMarquee = "marquee"
	ArtworkSnap    = "snap"
	ArtworkWheel   = "wheel"
)

// artworkAssets lists the asset kinds stored in each AttractMode artwork
// label. Boxes share the flyer directory and videos live next to snaps.
var artworkAssets = map[string][]scraper.Asset{
	ArtworkFlyer: {
		scraper.AssetBox2D,
		scraper.AssetBox3D,
		scraper.AssetBoxFront,
		scraper.AssetBoxSide,
		scraper.AssetBoxBack,
	},
	ArtworkMarquee: {scraper.AssetMarquee},
	ArtworkSnap:    {scraper.AssetScreenshot, scraper.AssetTitleScreen, scraper.AssetVideo},
	ArtworkWheel:   {scraper.AssetWheel},
}

// Emulator is the part of an AttractMode emulator .cfg file the scraper
// needs.
type Emulator struct {
	// Artwork maps an artwork label to its directories.
	Artwork map[string][]string
	// Name is the cfg file base name, which is also the default romlist name.
	Name       string
	Systems    []string
	RomPaths   []string
	Extensions []string // without the leading dot
}

// ReadEmulator parses an emulator .cfg file. Environment variables in
// values are expanded.
func ReadEmulator(fs afero.Fs, path string) (*Emulator, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open emulator config: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing emulator config")
		}
	}()

	emu := &Emulator{
		Name:    strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Artwork: make(map[string][]string),
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value := splitParam(scanner.Text())
		if key == "" || strings.HasPrefix(key, "#") {
			continue
		}
		value = os.ExpandEnv(value)

		switch key {
		case "system":
			emu.Systems = splitList(value)
		case "rompath":
			emu.RomPaths = splitList(value)
		case "romext":
			for _, ext := range splitList(value) {
				emu.Extensions = append(emu.Extensions, strings.TrimPrefix(ext, "."))
			}
		case "artwork":
			label, dirs := splitParam(value)
			if label == "" {
				continue
			}
			emu.Artwork[label] = splitList(dirs)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read emulator config: %w", err)
	}

	log.Debug().
		Str("emulator", emu.Name).
		Strs("systems", emu.Systems).
		Strs("rompaths", emu.RomPaths).
		Strs("extensions", emu.Extensions).
		Msg("read emulator config")

	if len(emu.RomPaths) == 0 {
		return nil, fmt.Errorf("emulator config %s has no rompath", path)
	}
	return emu, nil
}

// NewEmulator describes an emulator given on the command line instead of a
// cfg file. Artwork goes to the AttractMode scraper layout,
// <scraperDir>/<system>/<label>.
func NewEmulator(system string, romPaths, extensions []string, scraperDir string) *Emulator {
	emu := &Emulator{
		Name:       system,
		Systems:    []string{system},
		RomPaths:   romPaths,
		Extensions: extensions,
		Artwork:    make(map[string][]string),
	}
	if scraperDir != "" {
		for label := range artworkAssets {
			emu.Artwork[label] = []string{filepath.Join(scraperDir, system, label)}
		}
	}
	return emu
}

// ArtworkDirs maps every asset kind to the directories of the artwork
// label storing it. Labels the scraper doesn't know are ignored.
func (e *Emulator) ArtworkDirs() map[scraper.Asset][]string {
	dirs := make(map[scraper.Asset][]string)
	for label, paths := range e.Artwork {
		assets, ok := artworkAssets[label]
		if !ok {
			log.Debug().Str("label", label).Msg("ignoring unknown artwork label")
			continue
		}
		for _, a := range assets {
			dirs[a] = paths
		}
	}
	return dirs
}

// ResolveSystem returns the first system of the emulator known by the
// systems table, falling back on the emulator name.
func (e *Emulator) ResolveSystem(table *systems.Table) (systems.System, error) {
	candidates := append([]string{}, e.Systems...)
	candidates = append(candidates, e.Name)
	for _, name := range candidates {
		if s, ok := table.Lookup(name); ok {
			return s, nil
		}
	}
	return systems.System{}, fmt.Errorf("%w: %s", scraper.ErrUnsupportedSystem, strings.Join(candidates, ", "))
}

// splitParam splits "key   value" at the first run of blanks.
func splitParam(line string) (key, value string) {
	line = strings.TrimSpace(line)
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ";") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
