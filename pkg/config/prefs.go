package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Prefs holds tool preferences that are not part of the fleet definition
type Prefs struct {
	Probe ProbeConfig `toml:"probe,omitempty"`
	Log   LogConfig   `toml:"log,omitempty"`
}

// ProbeConfig controls name-based application lookup. Suffixes is the
// deterministic ordered set of namespace suffixes probed after the bare
// name; the first non-error response wins.
type ProbeConfig struct {
	Suffixes []string `toml:"suffixes,omitempty"`
}

// LogConfig holds logging preferences
type LogConfig struct {
	Level string `toml:"level,omitempty"`
}

// GetPrefsPath returns the path to the preferences file
func GetPrefsPath() string {
	if path := os.Getenv("ARGOFLEET_PREFS"); path != "" {
		return path
	}

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, _ := os.UserHomeDir()
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "argofleet", "config.toml")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, "argofleet", "config.toml")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "argofleet", "config.toml")
	}
}

// DefaultPrefs returns preferences with sensible defaults
func DefaultPrefs() *Prefs {
	return &Prefs{
		Probe: ProbeConfig{
			// bare name first, then environment-suffixed variants
			Suffixes: []string{"", "-nonprod", "-prod"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadPrefs loads the preferences file with fallback to defaults
func LoadPrefs() (*Prefs, error) {
	path := GetPrefsPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultPrefs(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prefs from %s: %w", path, err)
	}

	var prefs Prefs
	if err := toml.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("failed to parse prefs: %w", err)
	}

	if len(prefs.Probe.Suffixes) == 0 {
		prefs.Probe.Suffixes = DefaultPrefs().Probe.Suffixes
	}
	if prefs.Log.Level == "" {
		prefs.Log.Level = "info"
	}

	return &prefs, nil
}

// SavePrefs writes the preferences to the preferences file
func SavePrefs(prefs *Prefs) error {
	path := GetPrefsPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create prefs directory: %w", err)
	}

	data, err := toml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write prefs to %s: %w", path, err)
	}
	return nil
}

// ProbeNames returns the ordered candidate names probed for a name query
func (p *Prefs) ProbeNames(name string) []string {
	out := make([]string, 0, len(p.Probe.Suffixes))
	seen := map[string]bool{}
	for _, suffix := range p.Probe.Suffixes {
		candidate := name + strings.TrimSpace(suffix)
		if seen[candidate] {
			continue
		}
		seen[candidate] = true
		out = append(out, candidate)
	}
	return out
}
