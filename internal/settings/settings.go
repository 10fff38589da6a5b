// Package settings manages the hot operational settings resource. Unlike
// the static daemon configuration, this file is re-read at the top of every
// polling cycle so external edits take effect without a restart.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// ErrMalformed reports a settings file that exists but cannot be parsed
// into a complete Settings value. A malformed file is never repaired.
var ErrMalformed = errors.New("malformed settings")

// Settings is an immutable snapshot of the operational settings for one
// polling cycle.
type Settings struct {
	Running     bool   // continue polling
	HashEnabled bool   // digest moved files
	HashMethod  string // digest algorithm name, e.g. "MD5"
	WatchDir    string // directory scanned each cycle
}

// fileSettings mirrors the on-disk layout: a single [settings] table with
// string values. Booleans are kept as strings so hand edits like "true"
// round-trip unchanged.
type fileSettings struct {
	Settings struct {
		IsRunning       string `toml:"isRunning"`
		GetHashes       string `toml:"getHashes"`
		HashMethod      string `toml:"hashMethod"`
		CurrentPathName string `toml:"currentPathName"`
	} `toml:"settings"`
}

func defaultFileSettings() fileSettings {
	var fc fileSettings
	fc.Settings.IsRunning = "true"
	fc.Settings.GetHashes = "true"
	fc.Settings.HashMethod = "MD5"
	fc.Settings.CurrentPathName = "Images"
	return fc
}

// Store loads Settings from a single file path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the settings resource.
func (s *Store) Path() string { return s.path }

// Load returns a fresh snapshot of the settings. If the file does not
// exist it is first created with defaults. A present but incomplete or
// unparsable file is an error wrapping ErrMalformed.
func (s *Store) Load() (Settings, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		if err := s.writeDefaults(); err != nil {
			return Settings{}, fmt.Errorf("bootstrap settings: %w", err)
		}
	} else if err != nil {
		return Settings{}, fmt.Errorf("stat settings: %w", err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	var fc fileSettings
	if err := toml.Unmarshal(data, &fc); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	running, err := parseBool("isRunning", fc.Settings.IsRunning)
	if err != nil {
		return Settings{}, err
	}
	hashes, err := parseBool("getHashes", fc.Settings.GetHashes)
	if err != nil {
		return Settings{}, err
	}
	if fc.Settings.HashMethod == "" {
		return Settings{}, fmt.Errorf("%w: missing key hashMethod", ErrMalformed)
	}
	if fc.Settings.CurrentPathName == "" {
		return Settings{}, fmt.Errorf("%w: missing key currentPathName", ErrMalformed)
	}

	return Settings{
		Running:     running,
		HashEnabled: hashes,
		HashMethod:  fc.Settings.HashMethod,
		WatchDir:    fc.Settings.CurrentPathName,
	}, nil
}

func (s *Store) writeDefaults() error {
	data, err := toml.Marshal(defaultFileSettings())
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

func parseBool(key, value string) (bool, error) {
	if value == "" {
		return false, fmt.Errorf("%w: missing key %s", ErrMalformed, key)
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: key %s: %q is not a boolean", ErrMalformed, key, value)
	}
	return b, nil
}
