// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package springmap

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls pipeline behavior (§6). Defaults match the documented
// spec defaults: mipmap size 4, water enabled, skybox/resources disabled.
type Config struct {
	Verbose        bool     `yaml:"verbose"`
	MipmapSize     int      `yaml:"mipmapSize"`
	SkipSMT        bool     `yaml:"skipSmt"`
	Water          bool     `yaml:"water"`
	ParseResources bool     `yaml:"parseResources"`
	Resources      []string `yaml:"resources"`
	ParseSkybox    bool     `yaml:"parseSkybox"`

	WaterColor    [3]byte    `yaml:"-"`
	WaterModifier [3]float64 `yaml:"-"`
}

// Option configures a Config (functional-option idiom).
type Option func(*Config)

// DefaultConfig returns the documented default configuration.
func DefaultConfig() Config {
	return Config{
		MipmapSize:    4,
		Water:         true,
		WaterColor:    [3]byte{33, 35, 77},
		WaterModifier: [3]float64{1, 1.2, 1},
	}
}

// WithVerbose toggles progress logging on the diagnostic sink.
func WithVerbose(v bool) Option { return func(c *Config) { c.Verbose = v } }

// WithMipmapSize sets the per-tile mosaic resolution; must be one of 4,8,16,32.
func WithMipmapSize(size int) Option { return func(c *Config) { c.MipmapSize = size } }

// WithSkipSMT disables texture mosaic assembly entirely.
func WithSkipSMT(skip bool) Option { return func(c *Config) { c.SkipSMT = skip } }

// WithWater toggles the water overlay pass.
func WithWater(enabled bool) Option { return func(c *Config) { c.Water = enabled } }

// WithParseResources enables loading mapInfo.resources.* entries as rasters.
func WithParseResources(enabled bool) Option { return func(c *Config) { c.ParseResources = enabled } }

// WithResources sets an allowlist of resource keys to load; empty means all.
func WithResources(keys ...string) Option {
	return func(c *Config) { c.Resources = append([]string(nil), keys...) }
}

// WithParseSkybox enables DDS cubemap -> equirectangular reprojection.
func WithParseSkybox(enabled bool) Option { return func(c *Config) { c.ParseSkybox = enabled } }

// WithWaterColor overrides the base water tint color.
func WithWaterColor(r, g, b byte) Option {
	return func(c *Config) { c.WaterColor = [3]byte{r, g, b} }
}

// WithWaterModifier overrides the per-channel water tint modifier.
func WithWaterModifier(r, g, b float64) Option {
	return func(c *Config) { c.WaterModifier = [3]float64{r, g, b} }
}

// NewConfig builds a Config from the documented defaults plus options.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// validMipmapSizes enumerates the only legal mipmapSize values.
var validMipmapSizes = map[int]bool{4: true, 8: true, 16: true, 32: true}

// Validate checks Config invariants.
func (c Config) Validate() error {
	if !validMipmapSizes[c.MipmapSize] {
		return fmt.Errorf("springmap: mipmapSize must be one of 4,8,16,32, got %d", c.MipmapSize)
	}
	return nil
}

// LoadConfigFile reads a YAML document into a Config, starting from the
// documented defaults so a partial file only overrides what it sets.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("springmap: failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("springmap: failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
