// Package config loads mash runtime configuration. Precedence, lowest
// to highest: built-in defaults, an optional mash.toml file, MASH_*
// environment variables, CLI flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration for a mash run.
type Config struct {
	ManifestPath   string `mapstructure:"manifest_path"`
	JournalPath    string `mapstructure:"journal_path"`
	HomebrewPrefix string `mapstructure:"homebrew_prefix"`
	CargoHome      string `mapstructure:"cargo_home"`
	RustupHome     string `mapstructure:"rustup_home"`
	UVHome         string `mapstructure:"uv_home"`
	DryRun         bool   `mapstructure:"dry_run"`
	Verbose        bool   `mapstructure:"verbose"`
	Quiet          bool   `mapstructure:"quiet"`
	Unsafe         bool   `mapstructure:"unsafe"`
}

// fileConfig mirrors Config for the mash.toml file. Only keys present
// in the file participate; zero values never clobber anything.
type fileConfig struct {
	ManifestPath   string `toml:"manifest_path"`
	JournalPath    string `toml:"journal_path"`
	HomebrewPrefix string `toml:"homebrew_prefix"`
	CargoHome      string `toml:"cargo_home"`
	RustupHome     string `toml:"rustup_home"`
	UVHome         string `toml:"uv_home"`
	DryRun         bool   `toml:"dry_run"`
	Verbose        bool   `toml:"verbose"`
	Quiet          bool   `toml:"quiet"`
	Unsafe         bool   `toml:"unsafe"`
}

// Load reads configuration from viper, layering in the optional file at
// filePath (or the default search locations when empty). File values
// become viper defaults, so environment variables and bound flags still
// win.
func Load(filePath string) (Config, error) {
	viper.SetDefault("manifest_path", "")
	viper.SetDefault("journal_path", "")
	viper.SetDefault("homebrew_prefix", "")
	viper.SetDefault("cargo_home", "")
	viper.SetDefault("rustup_home", "")
	viper.SetDefault("uv_home", "")
	viper.SetDefault("dry_run", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("quiet", false)
	viper.SetDefault("unsafe", false)

	if err := applyFile(filePath); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// applyFile parses a mash.toml and registers its values as viper
// defaults. A missing default-location file is fine; an explicitly
// requested file must exist.
func applyFile(filePath string) error {
	explicit := filePath != ""
	if !explicit {
		filePath = findConfigFile()
		if filePath == "" {
			return nil
		}
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", filePath, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing %s: %w", filePath, err)
	}

	setIfNonZero("manifest_path", fc.ManifestPath)
	setIfNonZero("journal_path", fc.JournalPath)
	setIfNonZero("homebrew_prefix", fc.HomebrewPrefix)
	setIfNonZero("cargo_home", fc.CargoHome)
	setIfNonZero("rustup_home", fc.RustupHome)
	setIfNonZero("uv_home", fc.UVHome)
	if fc.DryRun {
		viper.SetDefault("dry_run", true)
	}
	if fc.Verbose {
		viper.SetDefault("verbose", true)
	}
	if fc.Quiet {
		viper.SetDefault("quiet", true)
	}
	if fc.Unsafe {
		viper.SetDefault("unsafe", true)
	}
	return nil
}

func setIfNonZero(key, value string) {
	if value != "" {
		viper.SetDefault(key, value)
	}
}

// findConfigFile returns the first existing default config location:
// ./mash.toml, then ~/.config/mash/mash.toml.
func findConfigFile() string {
	if _, err := os.Stat("mash.toml"); err == nil {
		return "mash.toml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".config", "mash", "mash.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
