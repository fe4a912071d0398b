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

package helpers

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName names the per-user directories of the tool.
const AppName = "altscraper"

// ConfigDir is where scraper.toml and auth.toml live.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DataDir holds persistent state such as logs.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// LogDir is where the rotating log file is written.
func LogDir() string {
	return filepath.Join(DataDir(), "logs")
}

// CacheFile returns the path of a cache file, creating its directory.
func CacheFile(name string) (string, error) {
	path, err := xdg.CacheFile(filepath.Join(AppName, name))
	if err != nil {
		return "", fmt.Errorf("failed to resolve cache file %s: %w", name, err)
	}
	return path, nil
}
