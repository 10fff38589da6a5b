// Package registry manages the set of recognized filename prefixes. Each
// prefix names the destination subdirectory that matching files are moved
// into. The list is persisted as a JSON array of strings and loaded once
// at startup; edits require a restart, unlike the settings resource.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrMalformed reports a prefix list that exists but is not a JSON array
// of strings.
var ErrMalformed = errors.New("malformed prefix list")

// defaultPrefixes is written when no prefix list exists yet. "empty" is a
// placeholder the user is expected to replace.
var defaultPrefixes = []string{"empty"}

// Registry loads the prefix list from a single file path.
type Registry struct {
	path string
}

func New(path string) *Registry {
	return &Registry{path: path}
}

// Path returns the location of the prefix list resource.
func (r *Registry) Path() string { return r.path }

// Load returns the ordered prefix list. If the file does not exist it is
// first created with a single placeholder entry. A present but unparsable
// file is an error wrapping ErrMalformed.
func (r *Registry) Load() ([]string, error) {
	if _, err := os.Stat(r.path); errors.Is(err, fs.ErrNotExist) {
		if err := r.writeDefaults(); err != nil {
			return nil, fmt.Errorf("bootstrap prefix list: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat prefix list: %w", err)
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read prefix list: %w", err)
	}

	var prefixes []string
	if err := json.Unmarshal(data, &prefixes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return prefixes, nil
}

func (r *Registry) writeDefaults() error {
	data, err := json.MarshalIndent(defaultPrefixes, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0644)
}

// EnsureDirectories creates the destination directory for every prefix
// under root. Existing directories are left alone; a non-directory file
// occupying a destination path is an error.
func EnsureDirectories(root string, prefixes []string) error {
	for _, prefix := range prefixes {
		dir := filepath.Join(root, prefix)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create destination %s: %w", dir, err)
		}
	}
	return nil
}
