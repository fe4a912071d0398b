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
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDirs() map[Asset][]string {
	flyer := []string{"/am/flyer"}
	snap := []string{"/am/snap"}
	return map[Asset][]string{
		AssetBox2D:       flyer,
		AssetBox3D:       flyer,
		AssetBoxFront:    flyer,
		AssetBoxSide:     flyer,
		AssetBoxBack:     flyer,
		AssetScreenshot:  snap,
		AssetTitleScreen: snap,
		AssetVideo:       snap,
		AssetWheel:       {"/am/wheel", "/other/wheel"},
	}
}

func TestGetMediaPath(t *testing.T) {
	t.Parallel()

	ms := NewMediaStorage(afero.NewMemMapFs(), testDirs())

	tests := []struct {
		name      string
		romPath   string
		extension string
		expected  string
		asset     Asset
	}{
		{
			name:      "2D box",
			romPath:   "/roms/snes/Super Mario World.zip",
			asset:     AssetBox2D,
			extension: "png",
			expected:  "/am/flyer/Super Mario World.png",
		},
		{
			name:      "3D box shares flyer directory",
			romPath:   "/roms/snes/Super Mario World.zip",
			asset:     AssetBox3D,
			extension: "png",
			expected:  "/am/flyer/Super Mario World-3d.png",
		},
		{
			name:      "box side",
			romPath:   "/roms/md/Sonic.md",
			asset:     AssetBoxSide,
			extension: "jpg",
			expected:  "/am/flyer/Sonic-side.jpg",
		},
		{
			name:      "video keeps plain name",
			romPath:   "/roms/arcade/pacman.zip",
			asset:     AssetVideo,
			extension: ".mp4",
			expected:  "/am/snap/pacman.mp4",
		},
		{
			name:      "title screen",
			romPath:   "pacman.zip",
			asset:     AssetTitleScreen,
			extension: "png",
			expected:  "/am/snap/pacman-title.png",
		},
		{
			name:      "first directory wins",
			romPath:   "/roms/arcade/pacman.zip",
			asset:     AssetWheel,
			extension: "png",
			expected:  "/am/wheel/pacman.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path, err := ms.GetMediaPath(tt.romPath, tt.asset, tt.extension)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.expected), path)
		})
	}
}

func TestGetMediaPath_NoDirectory(t *testing.T) {
	t.Parallel()

	ms := NewMediaStorage(afero.NewMemMapFs(), testDirs())

	assert.False(t, ms.HasDir(AssetMarquee))
	_, err := ms.GetMediaPath("/roms/pacman.zip", AssetMarquee, "png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marquee")
}

func TestMediaExists(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	ms := NewMediaStorage(fs, testDirs())

	path, err := ms.GetMediaPath("/roms/snes/game.sfc", AssetBox2D, "png")
	require.NoError(t, err)

	exists, err := ms.MediaExists(path)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, ms.EnsureMediaDirectory(path))
	require.NoError(t, afero.WriteFile(fs, path, []byte("png"), 0o600))

	exists, err = ms.MediaExists(path)
	require.NoError(t, err)
	assert.True(t, exists)
}
