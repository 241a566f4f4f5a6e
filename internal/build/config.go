// Package build drives generation for a whole package directory: it
// discovers marked schemas, runs the pipeline for each independently,
// and writes the generated files next to their schemas.
package build

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"

	"github.com/sumforge/uniongen/internal/generator/synth"
)

// ConfigFileName is the optional per-package configuration file.
const ConfigFileName = "uniongen.json"

// Config holds the per-package generation settings.
type Config struct {
	// Include restricts generation to host type names matching one of
	// the patterns (path.Match syntax). Empty means all marked types.
	Include []string `json:"include,omitempty"`
	// Exclude drops matching host type names after Include is applied.
	Exclude []string `json:"exclude,omitempty"`
	// OutputSuffix is appended to the snake-cased host type name to
	// form the generated file name.
	OutputSuffix string `json:"outputSuffix,omitempty"`
	// TagUnderlying is the integer type backing the tag enumeration.
	TagUnderlying string `json:"tagUnderlying,omitempty"`
	// Cache disables the skip cache when set to false.
	Cache *bool `json:"cache,omitempty"`
}

// DefaultConfig returns the configuration used when no uniongen.json is
// present.
func DefaultConfig() *Config {
	return &Config{
		OutputSuffix:  "_union.go",
		TagUnderlying: synth.DefaultTagUnderlying,
	}
}

// LoadConfig reads the configuration of a package directory, falling
// back to defaults when no file exists.
func LoadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
	}
	if cfg.OutputSuffix == "" {
		cfg.OutputSuffix = "_union.go"
	}
	if cfg.TagUnderlying == "" {
		cfg.TagUnderlying = synth.DefaultTagUnderlying
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigFileName, err)
	}
	return cfg, nil
}

// Validate checks the configuration fields individually so a broken
// file reports the exact setting at fault.
func (c *Config) Validate() error {
	if !strings.HasSuffix(c.OutputSuffix, ".go") {
		return fmt.Errorf("outputSuffix %q must end in .go", c.OutputSuffix)
	}
	ok := false
	for _, u := range synth.AllowedTagUnderlyings {
		if u == c.TagUnderlying {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("tagUnderlying %q is not one of %s",
			c.TagUnderlying, strings.Join(synth.AllowedTagUnderlyings, ", "))
	}
	for _, pattern := range append(append([]string{}, c.Include...), c.Exclude...) {
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// CacheEnabled reports whether the skip cache is active.
func (c *Config) CacheEnabled() bool {
	return c.Cache == nil || *c.Cache
}

// TypeEnabled reports whether a host type passes the include/exclude
// patterns.
func (c *Config) TypeEnabled(name string) bool {
	if len(c.Include) > 0 {
		matched := false
		for _, pattern := range c.Include {
			if ok, _ := path.Match(pattern, name); ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	for _, pattern := range c.Exclude {
		if ok, _ := path.Match(pattern, name); ok {
			return false
		}
	}
	return true
}
