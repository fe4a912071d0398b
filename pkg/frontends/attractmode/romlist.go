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
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const romlistDelimiter = ';'

// Entry is one line of an AttractMode romlist.
type Entry struct {
	Name         string `csv:"#Name"`
	Title        string `csv:"Title"`
	Emulator     string `csv:"Emulator"`
	CloneOf      string `csv:"CloneOf"`
	Year         string `csv:"Year"`
	Manufacturer string `csv:"Manufacturer"`
	Category     string `csv:"Category"`
	Players      string `csv:"Players"`
	Rotation     string `csv:"Rotation"`
	Control      string `csv:"Control"`
	Status       string `csv:"Status"`
	DisplayCount string `csv:"DisplayCount"`
	DisplayType  string `csv:"DisplayType"`
	AltRomname   string `csv:"AltRomname"`
	AltTitle     string `csv:"AltTitle"`
	Extra        string `csv:"Extra"`
	Buttons      string `csv:"Buttons"`
}

// NewEntry builds the romlist line of a scraped game. The title falls back
// on the ROM name when the game has none.
func NewEntry(name, emulator string, info *scraper.FilteredGameInfo) Entry {
	e := MinimalEntry(name, emulator)
	if info == nil {
		return e
	}

	if info.Title != nil && *info.Title != "" {
		e.Title = clean(*info.Title)
	}
	if info.Category != nil {
		e.Category = clean(*info.Category)
	}
	e.CloneOf = clean(info.CloneOf)
	e.Year = info.Year()
	e.Manufacturer = clean(info.Publisher)
	if e.Manufacturer == "" {
		e.Manufacturer = clean(info.Developer)
	}
	e.Players = clean(info.Players)
	e.Rotation = strconv.Itoa(info.Rotation)
	return e
}

// MinimalEntry is the line written for a ROM that couldn't be scraped.
func MinimalEntry(name, emulator string) Entry {
	return Entry{Name: name, Title: name, Emulator: emulator}
}

// clean keeps values on one line and free of characters AttractMode can't
// read back, as it doesn't understand CSV quoting.
func clean(s string) string {
	s = strings.NewReplacer(";", ",", "\"", "'", "\r", " ", "\n", " ").Replace(s)
	return strings.TrimSpace(s)
}

// Romlist is an ordered set of entries keyed by ROM name.
type Romlist struct {
	index   map[string]int
	entries []Entry
}

func NewRomlist(entries ...Entry) *Romlist {
	r := &Romlist{index: make(map[string]int)}
	for _, e := range entries {
		r.Put(e)
	}
	return r
}

// Has reports whether a ROM is already listed.
func (r *Romlist) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

func (r *Romlist) Get(name string) (Entry, bool) {
	i, ok := r.index[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Put adds an entry or replaces the one with the same name.
func (r *Romlist) Put(e Entry) {
	if i, ok := r.index[e.Name]; ok {
		r.entries[i] = e
		return
	}
	r.index[e.Name] = len(r.entries)
	r.entries = append(r.entries, e)
}

func (r *Romlist) Len() int {
	return len(r.entries)
}

// Entries returns the entries in insertion order.
func (r *Romlist) Entries() []Entry {
	return slices.Clone(r.entries)
}

// Sorted returns the entries ordered by ROM name.
func (r *Romlist) Sorted() []Entry {
	sorted := r.Entries()
	slices.SortFunc(sorted, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return sorted
}

// RomlistPath returns the default romlist of an emulator.
func RomlistPath(romlistsDir, emulator string) string {
	return filepath.Join(romlistsDir, emulator+".txt")
}

// commentSkipper drops comment lines following the header, which starts
// with '#' itself.
type commentSkipper struct {
	r          *csv.Reader
	headerRead bool
}

func (c *commentSkipper) Read() ([]string, error) {
	for {
		row, err := c.r.Read()
		if err != nil {
			return nil, err //nolint:wrapcheck // io.EOF must reach gocsv as is
		}
		if !c.headerRead {
			c.headerRead = true
			return row, nil
		}
		if len(row) > 0 && strings.HasPrefix(row[0], "#") {
			continue
		}
		return row, nil
	}
}

func (c *commentSkipper) ReadAll() ([][]string, error) {
	var rows [][]string
	for {
		row, err := c.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

func newReader(in io.Reader) *commentSkipper {
	r := csv.NewReader(in)
	r.Comma = romlistDelimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = false
	return &commentSkipper{r: r}
}

// ReadRomlist reads an AttractMode romlist. Lines with more or fewer
// columns than the current format are accepted. ErrNoRomlist is returned
// when the file doesn't exist.
func ReadRomlist(fs afero.Fs, path string) (*Romlist, error) {
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoRomlist, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read romlist: %w", err)
	}

	var entries []Entry
	err = gocsv.UnmarshalCSV(newReader(bytes.NewReader(data)), &entries)
	if errors.Is(err, gocsv.ErrEmptyCSVFile) {
		return NewRomlist(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse romlist %s: %w", path, err)
	}

	list := NewRomlist()
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		list.Put(e)
	}
	log.Debug().Str("path", path).Int("entries", list.Len()).Msg("read romlist")
	return list, nil
}

// WriteRomlist replaces the romlist at path with entries, header first.
// The file is written next to its destination then renamed.
func WriteRomlist(fs afero.Fs, path string, entries []Entry) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = romlistDelimiter
	if err := gocsv.MarshalCSV(entries, gocsv.NewSafeCSVWriter(w)); err != nil {
		return fmt.Errorf("failed to marshal romlist: %w", err)
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create romlist dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, buf.Bytes(), 0o644); err != nil { //nolint:gosec // read by the frontend
		return fmt.Errorf("failed to write romlist: %w", err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace romlist: %w", err)
	}
	log.Info().Str("path", path).Int("entries", len(entries)).Msg("romlist written")
	return nil
}

// Header returns the romlist column names.
func Header() []string {
	return []string{
		"#Name", "Title", "Emulator", "CloneOf", "Year", "Manufacturer", "Category", "Players",
		"Rotation", "Control", "Status", "DisplayCount", "DisplayType", "AltRomname", "AltTitle",
		"Extra", "Buttons",
	}
}

// ErrNoRomlist means the romlist file doesn't exist yet.
var ErrNoRomlist = errors.New("romlist not found")
