package memo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"
)

// Config holds one memoizer's caching policy. It is passed explicitly to
// [New]; multiple memoizers with different policies can coexist.
//
// The zero value disables caching entirely: no memo path resolves for any
// source, and every open runs the real initialization.
type Config struct {
	// Directory is the cache root. Memo files are placed under it, mirroring
	// each source's directory chain. Empty means no mirrored caching.
	Directory string

	// InPlace stores memo files next to their sources instead of under
	// Directory.
	InPlace bool

	// MinInit is the minimum measured initialization duration before a memo
	// is persisted. Initializations faster than this are not worth the
	// write cost. Zero persists every cache-worthy result.
	MinInit time.Duration
}

// Enabled reports whether any memo location can resolve under this config.
func (c Config) Enabled() bool {
	return c.Directory != "" || c.InPlace
}

// ConfigFileName is the project-level config file name.
const ConfigFileName = ".bfmemo.json"

// ConfigSources tracks which config files were loaded (for diagnostics).
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// fileConfig is the JSONC shape of a config file. MinInit is a duration
// string ("250ms", "2s") so config files stay readable.
type fileConfig struct {
	Directory string `json:"directory,omitempty"`
	InPlace   bool   `json:"in_place,omitempty"`
	MinInit   string `json:"min_init,omitempty"`
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDir    string            // working directory; project config is looked up here
	ConfigPath string            // explicit config file; overrides the project default
	Overrides  Config            // CLI overrides, applied last
	HasMinInit bool              // whether Overrides.MinInit was explicitly set
	Env        map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults (caching disabled)
// 2. Global user config ($XDG_CONFIG_HOME/bfmemo/config.json or ~/.config/bfmemo/config.json)
// 3. Project config file (.bfmemo.json in the working directory)
// 4. Explicit config file via ConfigPath (if non-empty)
// 5. CLI overrides.
//
// A relative cache directory is resolved against the working directory.
func LoadConfig(input LoadConfigInput) (Config, ConfigSources, error) {
	workDir := input.WorkDir
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, ConfigSources{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Config{}

	var sources ConfigSources

	// Global config is optional.
	globalPath := globalConfigPath(input.Env)
	if globalPath != "" {
		loaded, ok, err := loadConfigFile(globalPath, false)
		if err != nil {
			return Config{}, ConfigSources{}, err
		}

		if ok {
			cfg = mergeConfig(cfg, loaded)
			sources.Global = globalPath
		}
	}

	// Project config, or an explicit file that must exist.
	projectPath := filepath.Join(workDir, ConfigFileName)
	mustExist := false

	if input.ConfigPath != "" {
		projectPath = input.ConfigPath
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(workDir, projectPath)
		}

		mustExist = true
	}

	loaded, ok, err := loadConfigFile(projectPath, mustExist)
	if err != nil {
		return Config{}, ConfigSources{}, err
	}

	if ok {
		cfg = mergeConfig(cfg, loaded)
		sources.Project = projectPath
	}

	// CLI overrides.
	if input.Overrides.Directory != "" {
		cfg.Directory = input.Overrides.Directory
	}

	if input.Overrides.InPlace {
		cfg.InPlace = true
	}

	if input.HasMinInit {
		cfg.MinInit = input.Overrides.MinInit
	}

	if cfg.MinInit < 0 {
		return Config{}, ConfigSources{}, ErrInvalidMinInit
	}

	if cfg.Directory != "" && !filepath.IsAbs(cfg.Directory) {
		cfg.Directory = filepath.Join(workDir, cfg.Directory)
	}

	return cfg, sources, nil
}

// globalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/bfmemo/config.json if set, otherwise
// ~/.config/bfmemo/config.json. Empty if no home can be determined.
func globalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "bfmemo", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "bfmemo", "config.json")
	}

	return ""
}

// loadConfigFile loads one config file. If mustExist is false, a missing file
// returns (zero, false, nil).
func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		if mustExist {
			return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}

		return Config{}, false, nil
	}

	cfg, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (Config, error) {
	// Standardize JSONC to JSON.
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var raw fileConfig

	unmarshalErr := json.Unmarshal(standardized, &raw)
	if unmarshalErr != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	cfg := Config{
		Directory: raw.Directory,
		InPlace:   raw.InPlace,
	}

	if raw.MinInit != "" {
		minInit, parseErr := time.ParseDuration(raw.MinInit)
		if parseErr != nil {
			return Config{}, fmt.Errorf("%w: %q", ErrInvalidMinInit, raw.MinInit)
		}

		if minInit < 0 {
			return Config{}, fmt.Errorf("%w: %q", ErrInvalidMinInit, raw.MinInit)
		}

		cfg.MinInit = minInit
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.Directory != "" {
		base.Directory = overlay.Directory
	}

	if overlay.InPlace {
		base.InPlace = true
	}

	if overlay.MinInit != 0 {
		base.MinInit = overlay.MinInit
	}

	return base
}

// FormatConfig renders a config as indented JSON for print-config.
func FormatConfig(cfg Config) (string, error) {
	out, err := json.MarshalIndent(fileConfig{
		Directory: cfg.Directory,
		InPlace:   cfg.InPlace,
		MinInit:   cfg.MinInit.String(),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("formatting config: %w", err)
	}

	return string(out), nil
}
