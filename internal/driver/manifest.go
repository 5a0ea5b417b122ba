// Package driver glues the middle tier together: it loads the crate
// manifest, decodes astpacks, runs lowering and collection, and keeps
// the def-path disk cache that gives definitions their cross-run
// stability.
package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const manifestName = "rill.toml"

// Manifest is a loaded rill.toml plus where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Crate    CrateConfig    `toml:"crate"`
	Features FeaturesConfig `toml:"features"`
	Cache    CacheConfig    `toml:"cache"`
}

type CrateConfig struct {
	Name    string `toml:"name"`
	Edition string `toml:"edition"`
}

type FeaturesConfig struct {
	InBandLifetimes bool `toml:"in-band-lifetimes"`
}

type CacheConfig struct {
	Dir string `toml:"dir"`
}

// FindManifest walks up from startDir to locate rill.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("driver: resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("driver: stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest reads and validates one rill.toml.
func LoadManifest(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: parse TOML: %w", path, err)
	}
	if !meta.IsDefined("crate") {
		return nil, fmt.Errorf("%s: missing [crate]", path)
	}
	if !meta.IsDefined("crate", "name") || strings.TrimSpace(cfg.Crate.Name) == "" {
		return nil, fmt.Errorf("%s: missing [crate].name", path)
	}
	if cfg.Crate.Edition == "" {
		cfg.Crate.Edition = "2021"
	}
	root := filepath.Dir(path)
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = filepath.Join(root, ".rill-cache")
	} else if !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(root, cfg.Cache.Dir)
	}
	return &Manifest{Path: path, Root: root, Config: cfg}, nil
}

// LoadManifestFrom finds and loads the manifest governing startDir.
func LoadManifestFrom(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadManifest(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}
