// Package runtimeconfig loads componentdemo's YAML configuration,
// grounded on the teacher's internal/config package (FindConfig,
// DefaultSearchPaths) but trimmed to the fields this runtime's demo CLI
// actually needs.
package runtimeconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds componentdemo's configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`

	// FrameTickMS, when non-zero, switches the demo's echo component from
	// the immediate snapshot-publish discipline to the rate-limited
	// frame-tick discipline at this period; the counter component keeps
	// the immediate discipline.
	FrameTickMS int `yaml:"frame_tick_ms"`

	// ThrottleMS overrides the default sliding-in throttle delay.
	ThrottleMS int `yaml:"throttle_ms"`

	Firehose FirehoseConfig `yaml:"firehose"`
}

// FirehoseConfig controls the demo's observability output.
type FirehoseConfig struct {
	Enabled bool `yaml:"enabled"`
	// Print, when true, logs every recorded firehose entry at debug level
	// through the demo's logger (stdout) as it arrives.
	Print bool `yaml:"print"`
}

// DefaultSearchPaths returns the config file search order: an explicit
// path is checked first by FindConfig; these are the fallbacks.
func DefaultSearchPaths() []string {
	paths := []string{"componentdemo.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "componentdemo", "config.yaml"))
	}

	paths = append(paths, "/etc/componentdemo/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must
// exist. Otherwise DefaultSearchPaths is searched in order and the first
// existing path wins. Returns ("", nil) if nothing was found and
// explicit was empty — componentdemo runs on built-in defaults in that
// case.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", nil
}

// Load reads and parses the YAML config at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Default returns componentdemo's built-in defaults, used when no
// config file is found.
func Default() Config {
	return Config{
		LogLevel: "info",
		Firehose: FirehoseConfig{Enabled: true},
	}
}
