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

package mocks

import (
	"context"

	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/stretchr/testify/mock"
)

// MockScraper is a mock implementation of scraper.Scraper for testing.
type MockScraper struct {
	mock.Mock
}

// NewMockScraper creates a mock scraper reporting the given name.
func NewMockScraper(name string) *MockScraper {
	m := &MockScraper{}
	m.On("GetInfo").Return(scraper.ScraperInfo{Name: name}).Maybe()
	m.On("Vocabulary").Return(scraper.Vocabulary{}).Maybe()
	return m
}

// Lookup mocks a game lookup.
func (m *MockScraper) Lookup(ctx context.Context, keys scraper.IdentityKeys, system string) (*scraper.GameInfo, error) {
	args := m.Called(ctx, keys, system)
	if info, ok := args.Get(0).(*scraper.GameInfo); ok {
		return info, args.Error(1)
	}
	return nil, args.Error(1)
}

// Platforms mocks the platform listing.
func (m *MockScraper) Platforms(ctx context.Context) ([]scraper.Platform, error) {
	args := m.Called(ctx)
	if platforms, ok := args.Get(0).([]scraper.Platform); ok {
		return platforms, args.Error(1)
	}
	return nil, args.Error(1)
}

// Vocabulary mocks the media type table.
func (m *MockScraper) Vocabulary() scraper.Vocabulary {
	args := m.Called()
	if v, ok := args.Get(0).(scraper.Vocabulary); ok {
		return v
	}
	return nil
}

// GetInfo mocks the scraper metadata.
func (m *MockScraper) GetInfo() scraper.ScraperInfo {
	args := m.Called()
	if info, ok := args.Get(0).(scraper.ScraperInfo); ok {
		return info
	}
	return scraper.ScraperInfo{}
}

// SetupLookup makes Lookup return info for a ROM file name.
func (m *MockScraper) SetupLookup(fileName string, info *scraper.GameInfo) {
	m.On("Lookup", mock.Anything, mock.MatchedBy(func(k scraper.IdentityKeys) bool {
		return k.FileName == fileName
	}), mock.Anything).Return(info, nil)
}

// SetupLookupError makes Lookup fail for a ROM file name.
func (m *MockScraper) SetupLookupError(fileName string, err error) {
	m.On("Lookup", mock.Anything, mock.MatchedBy(func(k scraper.IdentityKeys) bool {
		return k.FileName == fileName
	}), mock.Anything).Return(nil, err)
}
