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
	"slices"
	"strings"

	"github.com/spf13/afero"
)

// FSHelper builds AttractMode and ROM trees for tests.
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// NewOSFS uses the real filesystem, for code walking directories itself.
func NewOSFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewOsFs(),
	}
}

// EmulatorCfg is the content of an AttractMode emulator file.
type EmulatorCfg struct {
	// Artwork maps a label to its directories.
	Artwork    map[string][]string
	System     []string
	RomPaths   []string
	Extensions []string
}

func (c *EmulatorCfg) String() string {
	var b strings.Builder
	b.WriteString("# Generated by Attract-Mode\n")
	b.WriteString("executable           retroarch\n")
	fmt.Fprintf(&b, "rompath              %s\n", strings.Join(c.RomPaths, ";"))
	exts := make([]string, len(c.Extensions))
	for i, e := range c.Extensions {
		exts[i] = "." + strings.TrimPrefix(e, ".")
	}
	fmt.Fprintf(&b, "romext               %s\n", strings.Join(exts, ";"))
	if len(c.System) > 0 {
		fmt.Fprintf(&b, "system               %s\n", strings.Join(c.System, ";"))
	}

	labels := make([]string, 0, len(c.Artwork))
	for label := range c.Artwork {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	for _, label := range labels {
		fmt.Fprintf(&b, "artwork    %-12s %s\n", label, strings.Join(c.Artwork[label], ";"))
	}
	return b.String()
}

// CreateEmulatorCfg writes an emulator file.
func (h *FSHelper) CreateEmulatorCfg(path string, cfg *EmulatorCfg) error {
	return h.WriteFile(path, []byte(cfg.String()))
}

// CreateRoms writes one small file per name in dir and returns their
// paths. The content of each file is its name so hashes differ.
func (h *FSHelper) CreateRoms(dir string, names ...string) ([]string, error) {
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := h.WriteFile(path, []byte("rom:"+name)); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// CreateDirectoryStructure creates the tree described by structure under
// basePath. Values are file contents (string or []byte), nested maps for
// directories or nil for empty directories.
func (h *FSHelper) CreateDirectoryStructure(basePath string, structure map[string]any) error {
	for name, content := range structure {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			if err := h.WriteFile(fullPath, []byte(v)); err != nil {
				return err
			}
		case []byte:
			if err := h.WriteFile(fullPath, v); err != nil {
				return err
			}
		case map[string]any:
			if err := h.Fs.MkdirAll(fullPath, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", fullPath, err)
			}
			if err := h.CreateDirectoryStructure(fullPath, v); err != nil {
				return err
			}
		case nil:
			if err := h.Fs.MkdirAll(fullPath, 0o755); err != nil {
				return fmt.Errorf("failed to create empty directory %s: %w", fullPath, err)
			}
		default:
			return fmt.Errorf("unsupported content %T for %s", content, fullPath)
		}
	}
	return nil
}

// AttractModeStructure is an AttractMode home with a NES emulator, its
// roms and empty artwork directories. Use with CreateDirectoryStructure.
func AttractModeStructure(root string) map[string]any {
	scraper := filepath.Join(root, "scraper", "nes")
	cfg := &EmulatorCfg{
		RomPaths:   []string{filepath.Join(root, "roms", "nes")},
		Extensions: []string{"nes", "zip"},
		System:     []string{"NES"},
		Artwork: map[string][]string{
			"flyer": {filepath.Join(scraper, "flyer")},
			"snap":  {filepath.Join(scraper, "snap")},
			"wheel": {filepath.Join(scraper, "wheel")},
		},
	}
	return map[string]any{
		"emulators": map[string]any{
			"Nintendo NES.cfg": cfg.String(),
		},
		"roms": map[string]any{
			"nes": map[string]any{
				"Super Mario Bros. (World).nes": "rom:mario",
				"Zelda (USA).zip":               []byte{0x50, 0x4B},
				"readme.txt":                    "not a rom",
			},
		},
		"romlists": nil,
		"scraper": map[string]any{
			"nes": map[string]any{"flyer": nil, "snap": nil, "wheel": nil},
		},
	}
}

// FileExists checks if a file exists
func (h *FSHelper) FileExists(path string) bool {
	exists, err := afero.Exists(h.Fs, path)
	if err != nil {
		return false
	}
	return exists
}

// ReadFile reads a file and returns its content
func (h *FSHelper) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(h.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}

// WriteFile writes content to a file, creating its directory.
func (h *FSHelper) WriteFile(path string, content []byte) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for file %s: %w", path, err)
	}
	if err := afero.WriteFile(h.Fs, path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// ListFiles lists the names in a directory.
func (h *FSHelper) ListFiles(path string) ([]string, error) {
	files, err := afero.ReadDir(h.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	fileNames := make([]string, len(files))
	for i, file := range files {
		fileNames[i] = file.Name()
	}

	return fileNames, nil
}
