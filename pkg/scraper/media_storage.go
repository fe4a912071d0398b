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
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// assetSuffixes distinguishes assets sharing a directory with another kind,
// e.g. 3D boxes stored next to 2D boxes in a frontend's flyer directory.
var assetSuffixes = map[Asset]string{
	AssetBox3D:       "-3d",
	AssetBoxFront:    "-front",
	AssetBoxSide:     "-side",
	AssetBoxBack:     "-back",
	AssetTitleScreen: "-title",
}

// MediaStorage decides where downloaded media files go, using the artwork
// directories configured in the frontend for each asset kind.
type MediaStorage struct {
	fs   afero.Fs
	dirs map[Asset][]string
}

// NewMediaStorage creates a new media storage instance
func NewMediaStorage(fs afero.Fs, dirs map[Asset][]string) *MediaStorage {
	return &MediaStorage{
		fs:   fs,
		dirs: dirs,
	}
}

// HasDir reports whether the frontend has a directory for the asset kind.
func (ms *MediaStorage) HasDir(asset Asset) bool {
	return len(ms.dirs[asset]) > 0 && ms.dirs[asset][0] != ""
}

// GetMediaPath returns the full path where a media file should be stored:
// the first artwork directory of the asset kind, the ROM's base name, an
// optional suffix and the media extension.
func (ms *MediaStorage) GetMediaPath(romPath string, asset Asset, extension string) (string, error) {
	if !ms.HasDir(asset) {
		return "", fmt.Errorf("no artwork directory for media %s", asset)
	}

	base := filepath.Base(romPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	if extension != "" && !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}

	filename := stem + assetSuffixes[asset] + extension
	return filepath.Join(ms.dirs[asset][0], filename), nil
}

// EnsureMediaDirectory creates the directory a media file will be written to.
func (ms *MediaStorage) EnsureMediaDirectory(mediaPath string) error {
	dir := filepath.Dir(mediaPath)
	if err := ms.fs.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create media directory %s: %w", dir, err)
	}
	return nil
}

// MediaExists checks if a media file already exists
func (ms *MediaStorage) MediaExists(mediaPath string) (bool, error) {
	_, err := ms.fs.Stat(mediaPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat media file: %w", err)
	}
	return true, nil
}
