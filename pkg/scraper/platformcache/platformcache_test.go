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

package platformcache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/ZaparooProject/altscraper/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T, clock clockwork.Clock) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", FileName), clock)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, c.Close())
	})
	return c
}

func TestPutGet(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	c := openTestCache(t, clock)

	_, ok, err := c.Get("screenscraper")
	require.NoError(t, err)
	assert.False(t, ok)

	platforms := []scraper.Platform{{ID: "1", Name: "Megadrive"}, {ID: "75", Name: "Mame"}}
	require.NoError(t, c.Put("screenscraper", platforms))

	entry, ok, err := c.Get("screenscraper")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, platforms, entry.Platforms)
	assert.True(t, entry.Updated.Equal(clock.Now()))

	_, ok, err = c.Get("hfsdb")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPersistsAcrossOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	c, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, c.Put("hfsdb", []scraper.Platform{{ID: "3", Name: "Neo Geo"}}))
	require.NoError(t, c.Close())

	c, err = Open(path, nil)
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close()) }()

	entry, ok, err := c.Get("hfsdb")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Neo Geo", entry.Platforms[0].Name)
}

func TestPlatformsUsesCacheUnlessRefreshed(t *testing.T) {
	t.Parallel()

	c := openTestCache(t, clockwork.NewFakeClock())
	s := mocks.NewMockScraper("screenscraper")
	s.On("Platforms", mock.Anything).Return([]scraper.Platform{{ID: "1", Name: "Megadrive"}}, nil).Twice()

	first, err := c.Platforms(context.Background(), s, false)
	require.NoError(t, err)
	second, err := c.Platforms(context.Background(), s, false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	s.AssertNumberOfCalls(t, "Platforms", 1)

	_, err = c.Platforms(context.Background(), s, true)
	require.NoError(t, err)
	s.AssertNumberOfCalls(t, "Platforms", 2)
}

func TestPlatformsServiceError(t *testing.T) {
	t.Parallel()

	c := openTestCache(t, clockwork.NewFakeClock())
	s := mocks.NewMockScraper("thegamesdb")
	s.On("Platforms", mock.Anything).Return(nil, errors.New("boom"))

	_, err := c.Platforms(context.Background(), s, false)
	require.ErrorContains(t, err, "boom")

	_, ok, err := c.Get("thegamesdb")
	require.NoError(t, err)
	assert.False(t, ok)
}
