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
	"strings"
	"testing"

	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func TestNewEntry(t *testing.T) {
	t.Parallel()

	info := &scraper.FilteredGameInfo{
		Title:       strPtr("Sonic; the \"Hedgehog\""),
		ReleaseDate: strPtr("1991-06-23"),
		Category:    strPtr("Platform,\nAction"),
		Developer:   "Sonic Team",
		Players:     "1",
		Rotation:    0,
	}

	e := NewEntry("Sonic the Hedgehog (USA, Europe)", "Sega Mega Drive", info)
	assert.Equal(t, Entry{
		Name:         "Sonic the Hedgehog (USA, Europe)",
		Title:        "Sonic, the 'Hedgehog'",
		Emulator:     "Sega Mega Drive",
		Year:         "1991",
		Manufacturer: "Sonic Team",
		Category:     "Platform, Action",
		Players:      "1",
		Rotation:     "0",
	}, e)

	info.Publisher = "Sega"
	info.Rotation = 270
	info.Title = nil
	e = NewEntry("sonic", "md", info)
	assert.Equal(t, "Sega", e.Manufacturer)
	assert.Equal(t, "270", e.Rotation)
	assert.Equal(t, "sonic", e.Title)

	assert.Equal(t, MinimalEntry("rom", "emu"), NewEntry("rom", "emu", nil))
}

func TestRomlist(t *testing.T) {
	t.Parallel()

	list := NewRomlist(MinimalEntry("b", "emu"), MinimalEntry("a", "emu"))
	assert.True(t, list.Has("a"))
	assert.False(t, list.Has("c"))

	list.Put(Entry{Name: "b", Title: "Bee", Emulator: "emu"})
	list.Put(MinimalEntry("c", "emu"))
	assert.Equal(t, 3, list.Len())

	b, ok := list.Get("b")
	require.True(t, ok)
	assert.Equal(t, "Bee", b.Title)

	names := func(entries []Entry) []string {
		out := make([]string, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.Name)
		}
		return out
	}
	assert.Equal(t, []string{"b", "a", "c"}, names(list.Entries()))
	assert.Equal(t, []string{"a", "b", "c"}, names(list.Sorted()))
}

func TestWriteReadRomlist(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	path := RomlistPath("/romlists", "Sega Mega Drive")
	assert.Equal(t, "/romlists/Sega Mega Drive.txt", path)

	entries := []Entry{
		{Name: "sonic", Title: "Sonic the Hedgehog", Emulator: "Sega Mega Drive", Year: "1991", Rotation: "0"},
		MinimalEntry("unknown", "Sega Mega Drive"),
	}
	require.NoError(t, WriteRomlist(fs, path, entries))

	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(Header(), ";"), lines[0])
	assert.Equal(t, "sonic;Sonic the Hedgehog;Sega Mega Drive;;1991;;;;0;;;;;;;;", lines[1])
	assert.Equal(t, "unknown;unknown;Sega Mega Drive;;;;;;;;;;;;;;", lines[2])

	exists, err := afero.Exists(fs, path+".tmp")
	require.NoError(t, err)
	assert.False(t, exists)

	list, err := ReadRomlist(fs, path)
	require.NoError(t, err)
	assert.Equal(t, entries, list.Entries())
}

func TestReadRomlistFormats(t *testing.T) {
	t.Parallel()

	const romlist = "#Name;Title;Emulator;CloneOf;Year;Manufacturer;Category;Players;Rotation;Control;" +
		"Status;DisplayCount;DisplayType;AltRomname;AltTitle;Extra;Buttons;Series;Language;Region;Rating\n" +
		"1942;1942 (Revision B);mame;;1984;Capcom;Shooter;2;270;joystick;good;1;raster;;;;;;;;\n" +
		"# a comment\n" +
		"galaga;Galaga;mame\n" +
		";;;\n"

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/mame.txt", []byte(romlist), 0o644))

	list, err := ReadRomlist(fs, "/mame.txt")
	require.NoError(t, err)
	require.Equal(t, 2, list.Len())

	e, ok := list.Get("1942")
	require.True(t, ok)
	assert.Equal(t, "Capcom", e.Manufacturer)
	assert.Equal(t, "270", e.Rotation)
	assert.Equal(t, "joystick", e.Control)

	e, ok = list.Get("galaga")
	require.True(t, ok)
	assert.Equal(t, "Galaga", e.Title)
	assert.Empty(t, e.Year)
}

func TestReadRomlistMissingOrEmpty(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	_, err := ReadRomlist(fs, "/none.txt")
	require.ErrorIs(t, err, ErrNoRomlist)

	require.NoError(t, afero.WriteFile(fs, "/empty.txt", nil, 0o644))
	list, err := ReadRomlist(fs, "/empty.txt")
	require.NoError(t, err)
	assert.Equal(t, 0, list.Len())
}
