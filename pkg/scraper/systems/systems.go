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

package systems

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

//go:embed systems.yaml
var defaultsFS embed.FS

// System is a frontend system and the ids scraping services know it by.
type System struct {
	Platforms  map[string]string `yaml:"platforms"`
	ID         string            `yaml:"id"`
	Name       string            `yaml:"name"`
	Aliases    []string          `yaml:"aliases"`
	Extensions []string          `yaml:"extensions"`
}

// PlatformID returns the id the named service uses for the system.
func (s *System) PlatformID(service string) (string, bool) {
	id, ok := s.Platforms[service]
	return id, ok && id != ""
}

// Matches reports whether name is the system id or one of its aliases.
func (s *System) Matches(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if strings.EqualFold(s.ID, name) {
		return true
	}
	return slices.ContainsFunc(s.Aliases, func(a string) bool {
		return strings.EqualFold(a, name)
	})
}

type document struct {
	Systems []System `yaml:"systems"`
}

// Table is an ordered set of systems.
type Table struct {
	systems []System
}

// Parse decodes a systems table from YAML.
func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse systems table: %w", err)
	}
	for i := range doc.Systems {
		if doc.Systems[i].ID == "" {
			return nil, fmt.Errorf("system %d has no id", i)
		}
		doc.Systems[i].ID = strings.ToLower(doc.Systems[i].ID)
	}
	return &Table{systems: doc.Systems}, nil
}

var (
	defaultTable     *Table
	defaultTableErr  error
	defaultTableOnce sync.Once
)

// Default returns the built-in systems table.
func Default() (*Table, error) {
	defaultTableOnce.Do(func() {
		data, err := defaultsFS.ReadFile("systems.yaml")
		if err != nil {
			defaultTableErr = fmt.Errorf("failed to read embedded systems: %w", err)
			return
		}
		defaultTable, defaultTableErr = Parse(data)
	})
	if defaultTableErr != nil {
		return nil, defaultTableErr
	}
	return defaultTable.clone(), nil
}

// Load returns the built-in table with the entries of path merged on top.
// A missing file is not an error.
func Load(fs afero.Fs, path string) (*Table, error) {
	table, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(fs, path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		return table, nil
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	overrides, err := Parse(data)
	if err != nil {
		return nil, err
	}
	table.Merge(overrides)
	return table, nil
}

func (t *Table) clone() *Table {
	systems := make([]System, len(t.systems))
	for i, s := range t.systems {
		s.Aliases = slices.Clone(s.Aliases)
		s.Extensions = slices.Clone(s.Extensions)
		platforms := make(map[string]string, len(s.Platforms))
		for k, v := range s.Platforms {
			platforms[k] = v
		}
		s.Platforms = platforms
		systems[i] = s
	}
	return &Table{systems: systems}
}

// Merge adds the systems of other to t. A system with an id already in t
// replaces the fields other sets and keeps the rest.
func (t *Table) Merge(other *Table) {
	for _, o := range other.systems {
		i := slices.IndexFunc(t.systems, func(s System) bool { return s.ID == o.ID })
		if i < 0 {
			t.systems = append(t.systems, o)
			continue
		}
		s := &t.systems[i]
		if o.Name != "" {
			s.Name = o.Name
		}
		if len(o.Aliases) > 0 {
			s.Aliases = o.Aliases
		}
		if len(o.Extensions) > 0 {
			s.Extensions = o.Extensions
		}
		if s.Platforms == nil {
			s.Platforms = make(map[string]string, len(o.Platforms))
		}
		for k, v := range o.Platforms {
			s.Platforms[k] = v
		}
	}
}

// Lookup finds a system by id or alias.
func (t *Table) Lookup(name string) (System, bool) {
	for i := range t.systems {
		if t.systems[i].Matches(name) {
			return t.systems[i], true
		}
	}
	return System{}, false
}

// List returns every system sorted by id.
func (t *Table) List() []System {
	list := slices.Clone(t.systems)
	slices.SortFunc(list, func(a, b System) int {
		return strings.Compare(a.ID, b.ID)
	})
	return list
}

// PlatformID returns the platform id service uses for the named system.
func (t *Table) PlatformID(name, service string) (string, error) {
	s, ok := t.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", scraper.ErrUnsupportedSystem, name)
	}
	id, ok := s.PlatformID(service)
	if !ok {
		return "", fmt.Errorf("%w: %s has no %s platform", scraper.ErrUnsupportedSystem, name, service)
	}
	return id, nil
}
