package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFilename is the config file looked up when --config is not
// given.
const DefaultConfigFilename = ".dropsort.yaml"

// Duration wraps time.Duration so YAML values can be written as strings
// like "3s" or "500ms".
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return err
	}
	*d = Duration(n)
	return nil
}

// Config holds the static daemon options loaded once at startup. The hot
// operational settings (running flag, watch directory, hashing) live in a
// separate resource that is re-read every cycle; see internal/settings.
type Config struct {
	Root          string   `yaml:"root"`          // directory the watch dir and destinations live under
	LogLevel      string   `yaml:"log_level"`     // debug, info, warn, error
	SettingsPath  string   `yaml:"settings"`      // hot settings resource
	PrefixesPath  string   `yaml:"prefixes"`      // prefix list resource
	LedgerPath    string   `yaml:"ledger"`        // digest ledger resource
	Interval      Duration `yaml:"interval"`      // pause between polling cycles
	StartupDelay  Duration `yaml:"startup_delay"` // one-time pause before the first cycle
	Exclude       []string `yaml:"exclude"`       // glob patterns to skip in the watch directory
	DryRun        bool     `yaml:"dry_run"`       // log moves without performing them
	Daemonize     bool     `yaml:"daemonize"`     // fork into the background
	Notifications bool     `yaml:"notifications"` // send desktop notifications
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Root:         ".",
		LogLevel:     "info",
		SettingsPath: "settings.toml",
		PrefixesPath: "filePaths.json",
		LedgerPath:   "fileHashes.json",
		Interval:     Duration(3 * time.Second),
		StartupDelay: Duration(2 * time.Second),
	}
}

// Load reads a YAML configuration file. Fields absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration back to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ExpandTilde will resolve a leading ~ to the user's home directory.
func ExpandTilde(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// Resolve joins a resource path to root unless it is already absolute.
func Resolve(root, path string) string {
	path = ExpandTilde(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
