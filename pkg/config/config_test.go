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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFromString(t *testing.T, content string) *Instance {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), CfgFile)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg := &Instance{
		cfgPath:  cfgPath,
		authPath: filepath.Join(filepath.Dir(cfgPath), AuthFile),
		vals:     BaseDefaults,
		defaults: BaseDefaults,
	}
	require.NoError(t, cfg.Load())
	return cfg
}

func TestLoad_PreservesDefaultsForMissingFields(t *testing.T) {
	t.Parallel()

	cfg := loadFromString(t, fmt.Sprintf("config_schema = %d\n", SchemaVersion))

	assert.Equal(t, ScraperScreenScraper, cfg.ScraperName())
	assert.Equal(t, "us", cfg.Language())
	assert.Equal(t, scraper.Regions, cfg.RegionOrder())
	assert.Equal(t, []scraper.Asset{scraper.AssetScreenshot}, cfg.Assets())
	assert.Equal(t, 1, cfg.ParallelDownloads())
	assert.Equal(t, DefaultTimeoutSeconds*time.Second, cfg.Timeout())
	require.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()

	cfg := loadFromString(t, fmt.Sprintf(`config_schema = %d
debug_logging = true

[scraper]
name = "hfsdb"
language = "fr"
region_order = ["fr", "eu", "wor"]
requests_per_second = 0.5
timeout_seconds = 10

[download]
assets = ["screenshot", "wheel", "box3d"]
parallel_downloads = 4
verify_hashes = true

[romlist]
dir = "/home/user/.attract/romlists"
update = true
`, SchemaVersion))

	assert.True(t, cfg.DebugLogging())
	assert.Equal(t, ScraperHFSDB, cfg.ScraperName())
	assert.Equal(t, "fr", cfg.Language())
	assert.Equal(t, scraper.RegionOrder{"fr", "eu", "wor"}, cfg.RegionOrder())
	assert.InDelta(t, 0.5, cfg.RequestsPerSecond(), 0.001)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, []scraper.Asset{scraper.AssetScreenshot, scraper.AssetWheel, scraper.AssetBox3D}, cfg.Assets())
	assert.Equal(t, 4, cfg.ParallelDownloads())
	assert.True(t, cfg.VerifyHashes())
	assert.Equal(t, "/home/user/.attract/romlists", cfg.RomlistDir())
	assert.True(t, cfg.RomlistUpdate())
	require.NoError(t, cfg.Validate())
}

func TestLoad_UnknownAsset(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), CfgFile)
	content := fmt.Sprintf("config_schema = %d\n[download]\nassets = [\"fanart\"]\n", SchemaVersion)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	cfg := &Instance{cfgPath: cfgPath, vals: BaseDefaults, defaults: BaseDefaults}
	require.Error(t, cfg.Load())
}

func TestLoad_SchemaMismatch(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), CfgFile)
	require.NoError(t, os.WriteFile(cfgPath, []byte("config_schema = 99\n"), 0o600))

	cfg := &Instance{cfgPath: cfgPath, vals: BaseDefaults, defaults: BaseDefaults}
	err := cfg.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version mismatch")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown scraper",
			content: "[scraper]\nname = \"igdb\"\n",
			wantErr: "Name",
		},
		{
			name:    "unknown language",
			content: "[scraper]\nlanguage = \"klingon\"\n",
			wantErr: "Language",
		},
		{
			name:    "language outside custom order",
			content: "[scraper]\nlanguage = \"us\"\nregion_order = [\"fr\", \"eu\"]\n",
			wantErr: "Language",
		},
		{
			name:    "too many downloads",
			content: "[download]\nparallel_downloads = 64\n",
			wantErr: "ParallelDownloads",
		},
		{
			name:    "negative rate",
			content: "[scraper]\nrequests_per_second = -1.0\n",
			wantErr: "RequestsPerSecond",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := loadFromString(t, fmt.Sprintf("config_schema = %d\n%s", SchemaVersion, tt.content))
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	cfg := loadFromString(t, fmt.Sprintf("config_schema = %d\n", SchemaVersion))

	name := ScraperTheGamesDB
	lang := "eu"
	force := true
	cfg.Apply(Overrides{
		ScraperName: &name,
		Language:    &lang,
		Force:       &force,
		Assets:      []scraper.Asset{scraper.AssetWheel, scraper.AssetScreenshot},
	})

	assert.Equal(t, ScraperTheGamesDB, cfg.ScraperName())
	assert.Equal(t, "eu", cfg.Language())
	assert.True(t, cfg.ForceDownload())
	assert.False(t, cfg.RomlistUpdate(), "nil overrides keep the configured value")
	assert.Equal(t, []scraper.Asset{scraper.AssetScreenshot, scraper.AssetWheel}, cfg.Assets())
}

func TestNewConfig_WritesDefaults(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, CfgFile))
	assert.Equal(t, ScraperScreenScraper, cfg.ScraperName())

	require.NoError(t, cfg.Save())
	require.NoError(t, cfg.Load())
	assert.Equal(t, []scraper.Asset{scraper.AssetScreenshot}, cfg.Assets())
}
