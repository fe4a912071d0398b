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

// Package romscan lists the ROM files of a system.
package romscan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ZaparooProject/altscraper/pkg/helpers/syncutil"
	"github.com/charlievieth/fastwalk"
	"github.com/rs/zerolog/log"
)

// Scan returns the files directly inside dirs whose extension is one of
// exts, sorted by path. Sub-directories aren't visited. Missing
// directories are skipped with a warning.
func Scan(dirs, exts []string) ([]string, error) {
	wanted := make(map[string]bool, len(exts))
	for _, ext := range exts {
		wanted["."+strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	var (
		mu    syncutil.Mutex
		files []string
	)
	conf := fastwalk.Config{Follow: true, MaxDepth: 1}

	for _, dir := range dirs {
		root := filepath.Clean(dir)
		if _, err := os.Stat(root); errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("dir", root).Msg("rom directory doesn't exist")
			continue
		}

		log.Debug().Str("dir", root).Strs("extensions", exts).Msg("scanning rom directory")
		err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("error walking rom directory")
				return nil
			}
			if d.IsDir() {
				if path == root {
					return nil
				}
				return fastwalk.SkipDir
			}
			if !wanted[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			mu.Lock()
			files = append(files, path)
			mu.Unlock()
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", root, err)
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

// Find looks for the file of a ROM listed by name, trying every directory
// and extension in order.
func Find(dirs, exts []string, name string) (string, bool) {
	for _, dir := range dirs {
		for _, ext := range exts {
			path := filepath.Join(dir, name+"."+strings.TrimPrefix(ext, "."))
			if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
				return path, true
			}
		}
	}
	return "", false
}

// Name is the ROM name used in romlists: the base name without extension.
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
