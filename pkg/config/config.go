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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/ZaparooProject/altscraper/pkg/helpers/syncutil"
	"github.com/ZaparooProject/altscraper/pkg/scraper"
	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "ALTSCRAPER_CFG"
	CfgFile       = "scraper.toml"
	AuthFile      = "auth.toml"
	LogFile       = "altscraper.log"

	ScraperScreenScraper = "screenscraper"
	ScraperHFSDB         = "hfsdb"
	ScraperTheGamesDB    = "thegamesdb"

	DefaultTimeoutSeconds = 30
)

type Values struct {
	Scraper      Scraper  `toml:"scraper"`
	Romlist      Romlist  `toml:"romlist"`
	Download     Download `toml:"download"`
	ConfigSchema int      `toml:"config_schema"`
	DebugLogging bool     `toml:"debug_logging"`
}

type Scraper struct {
	Name              string   `toml:"name" validate:"oneof=screenscraper hfsdb thegamesdb"`
	Language          string   `toml:"language" validate:"required"`
	RegionOrder       []string `toml:"region_order,omitempty" validate:"dive,required,lowercase"`
	RequestsPerSecond float64  `toml:"requests_per_second" validate:"gte=0"`
	TimeoutSeconds    int      `toml:"timeout_seconds" validate:"gte=0"`
}

type Download struct {
	Assets            []scraper.Asset `toml:"assets,omitempty"`
	ParallelDownloads int             `toml:"parallel_downloads" validate:"gte=1,lte=16"`
	Force             bool            `toml:"force"`
	VerifyHashes      bool            `toml:"verify_hashes"`
}

type Romlist struct {
	Dir string `toml:"dir,omitempty"`
	// Update merges scraped games into an existing romlist instead of
	// overwriting it.
	Update bool `toml:"update"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Scraper: Scraper{
		Name:              ScraperScreenScraper,
		Language:          "us",
		RequestsPerSecond: 1,
		TimeoutSeconds:    DefaultTimeoutSeconds,
	},
	Download: Download{
		Assets:            []scraper.Asset{scraper.AssetScreenshot},
		ParallelDownloads: 1,
	},
}

type Instance struct {
	cfgPath  string
	authPath string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

var authCfg atomic.Value

func GetAuthCfg() Auth {
	val := authCfg.Load()
	if val == nil {
		return Auth{}
	}
	auth, ok := val.(Auth)
	if !ok {
		return Auth{}
	}
	return auth
}

// SetAuthCfgForTesting sets the global auth config for testing purposes
func SetAuthCfgForTesting(auth Auth) {
	authCfg.Store(auth)
}

// NewConfig loads scraper.toml from configDir, writing a default one first
// if it doesn't exist. The ALTSCRAPER_CFG environment variable overrides the
// config file location.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		cfgPath:  cfgPath,
		authPath: filepath.Join(filepath.Dir(cfgPath), AuthFile),
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// fields not present in the file keep their default values
	newVals := c.defaults
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return errors.New("schema version mismatch")
	}

	c.vals = newVals

	if _, err := os.Stat(c.authPath); err == nil {
		log.Info().Msg("loading auth file")
		authData, err := os.ReadFile(c.authPath)
		if err != nil {
			return fmt.Errorf("failed to read auth file: %w", err)
		}

		authVals := Auth{Creds: LoadAuthFromData(authData)}
		log.Info().Msgf("loaded %d auth entries", len(authVals.Creds))
		authCfg.Store(authVals)
	}

	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateLanguage, Scraper{})
	return v
}

// validateLanguage checks the language against the configured region order.
func validateLanguage(sl validator.StructLevel) {
	s, ok := sl.Current().Interface().(Scraper)
	if !ok {
		return
	}
	order := scraper.Regions
	if len(s.RegionOrder) > 0 {
		order = s.RegionOrder
	}
	if s.Language != "" && !order.Known(s.Language) {
		sl.ReportError(s.Language, "Language", "language", "region", "")
	}
}

// Validate checks the loaded values. Configuration errors are fatal at
// start-up so they're all reported at once.
func (c *Instance) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := validate.Struct(c.vals); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]error, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Errorf("invalid %s: %v (%s)", fe.Namespace(), fe.Value(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %w", errors.Join(msgs...))
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// Overrides are values given on the command line. Nil fields keep the
// configured value.
type Overrides struct {
	ScraperName  *string
	Language     *string
	RomlistDir   *string
	Force        *bool
	Update       *bool
	DebugLogging *bool
	Assets       []scraper.Asset
}

// Apply sets every non-nil override. Assets are added to the configured
// ones.
//
//nolint:gocritic // overrides are built once by the cli
func (c *Instance) Apply(o Overrides) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if o.ScraperName != nil {
		c.vals.Scraper.Name = *o.ScraperName
	}
	if o.Language != nil {
		c.vals.Scraper.Language = *o.Language
	}
	if o.RomlistDir != nil {
		c.vals.Romlist.Dir = *o.RomlistDir
	}
	if o.Force != nil {
		c.vals.Download.Force = *o.Force
	}
	if o.Update != nil {
		c.vals.Romlist.Update = *o.Update
	}
	if o.DebugLogging != nil {
		c.vals.DebugLogging = *o.DebugLogging
	}
	for _, a := range o.Assets {
		if !slices.Contains(c.vals.Download.Assets, a) {
			c.vals.Download.Assets = append(c.vals.Download.Assets, a)
		}
	}
}

func (c *Instance) ScraperName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Scraper.Name
}

func (c *Instance) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Scraper.Language
}

// RegionOrder returns the configured fallback order, or the default one.
func (c *Instance) RegionOrder() scraper.RegionOrder {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.vals.Scraper.RegionOrder) == 0 {
		return scraper.Regions
	}
	return slices.Clone(c.vals.Scraper.RegionOrder)
}

func (c *Instance) RequestsPerSecond() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Scraper.RequestsPerSecond
}

func (c *Instance) Timeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Scraper.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.vals.Scraper.TimeoutSeconds) * time.Second
}

func (c *Instance) Assets() []scraper.Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.Download.Assets)
}

func (c *Instance) ParallelDownloads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return max(c.vals.Download.ParallelDownloads, 1)
}

func (c *Instance) ForceDownload() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Download.Force
}

func (c *Instance) VerifyHashes() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Download.VerifyHashes
}

func (c *Instance) RomlistDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Romlist.Dir
}

func (c *Instance) RomlistUpdate() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Romlist.Update
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}
