// Package ledger persists digests of moved files. The ledger is a single
// JSON object mapping "<prefix> | <name>" to a lowercase hex digest and is
// rewritten whole on every record.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// Ledger accumulates digest entries in memory for the process lifetime
// and mirrors them to disk on every record. The on-disk file is created
// lazily, when the first digest is about to be recorded.
type Ledger struct {
	path string

	mu      sync.Mutex
	entries map[string]string
}

func New(path string) *Ledger {
	return &Ledger{
		path:    path,
		entries: make(map[string]string),
	}
}

// Path returns the location of the ledger resource.
func (l *Ledger) Path() string { return l.path }

// Key builds the composite ledger key for a destination and final
// filename.
func Key(prefix, name string) string {
	return prefix + " | " + name
}

// Record inserts or overwrites the entry for (prefix, name) and rewrites
// the ledger file. A later move of a file with the same destination and
// name replaces the earlier digest.
func (l *Ledger) Record(prefix, name, hexDigest string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.bootstrapLocked(); err != nil {
		return fmt.Errorf("bootstrap ledger: %w", err)
	}
	l.entries[Key(prefix, name)] = hexDigest

	data, err := json.MarshalIndent(l.entries, "", "    ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}

// Get returns the recorded digest for (prefix, name), if any.
func (l *Ledger) Get(prefix, name string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	digest, ok := l.entries[Key(prefix, name)]
	return digest, ok
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Ledger) bootstrapLocked() error {
	_, err := os.Stat(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		return f.Close()
	}
	return err
}

// Load reads a persisted ledger file back into a map. Used to inspect a
// ledger written by a previous run.
func Load(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	entries := make(map[string]string)
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode ledger: %w", err)
	}
	return entries, nil
}
