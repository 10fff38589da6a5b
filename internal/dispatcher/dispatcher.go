// Package dispatcher implements the polling loop: list the watch
// directory, match filenames against the registered prefixes, move
// matching files into their destination directories, and record digests.
package dispatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dropsort/internal/digest"
	"dropsort/internal/excluder"
	"dropsort/internal/ledger"
	"dropsort/internal/notify"
	"dropsort/internal/settings"

	log "github.com/sirupsen/logrus"
)

// Options wires the dispatcher's collaborators and static behavior.
type Options struct {
	Store         *settings.Store    // hot settings, re-read every cycle
	Prefixes      []string           // registered prefixes, in match order
	Ledger        *ledger.Ledger     // digest ledger
	Excluder      *excluder.Excluder // skip list for watch-directory entries
	Root          string             // destinations and a relative watch dir live under here
	Interval      time.Duration      // pause between cycles
	StartupDelay  time.Duration      // one-time pause before the first cycle
	DryRun        bool               // log intended moves without performing them
	Notifications bool               // desktop notifications on moves and failures
}

// Dispatcher drives the move-and-digest pipeline.
type Dispatcher struct {
	opts Options
}

func New(opts Options) *Dispatcher {
	if opts.Excluder == nil {
		opts.Excluder, _ = excluder.New(nil)
	}
	return &Dispatcher{opts: opts}
}

// Result records the outcome of processing one matched file within a
// cycle.
type Result struct {
	Name   string // original name in the watch directory
	Prefix string // matched prefix
	Dest   string // destination path
	Digest string // hex digest, empty when digesting is off or failed
	Err    error  // move or digest failure for this file only
}

// Run executes polling cycles until the settings report not running or
// ctx is cancelled. A cycle in flight always completes; the running flag
// is only consulted at cycle boundaries. Once stopped, Run returns and
// does not poll for reactivation.
func (d *Dispatcher) Run(ctx context.Context) error {
	if d.opts.StartupDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.opts.StartupDelay):
		}
	}

	for {
		snap, err := d.opts.Store.Load()
		if err != nil {
			return fmt.Errorf("reload settings: %w", err)
		}
		if !snap.Running {
			log.Info("Settings report not running, stopping")
			return nil
		}

		d.summarize(d.Cycle(snap))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d.opts.Interval):
		}
	}
}

// Cycle processes every candidate currently in the watch directory using
// one immutable settings snapshot and returns one Result per matched
// file. A failure on one file never stops the rest of the cycle.
func (d *Dispatcher) Cycle(snap settings.Settings) []Result {
	watchDir := d.watchPath(snap)

	entries, err := os.ReadDir(watchDir)
	if err != nil {
		log.Errorf("List watch directory %s: %v", watchDir, err)
		return nil
	}

	var results []Result
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if d.opts.Excluder.IsExcluded(name) {
			log.Debugf("Excluded: %s", name)
			continue
		}

		prefix, ok := d.match(name)
		if !ok {
			continue
		}

		res := d.relocate(watchDir, name, prefix, snap)
		results = append(results, res)
		d.report(res)
	}
	return results
}

// watchPath resolves the snapshot's watch directory against the root.
func (d *Dispatcher) watchPath(snap settings.Settings) string {
	if filepath.IsAbs(snap.WatchDir) {
		return snap.WatchDir
	}
	return filepath.Join(d.opts.Root, snap.WatchDir)
}

// match returns the first registered prefix the name starts with.
// Registration order decides ties; later prefixes are never consulted
// once one matches.
func (d *Dispatcher) match(name string) (string, bool) {
	for _, p := range d.opts.Prefixes {
		if strings.HasPrefix(name, p) {
			return p, true
		}
	}
	return "", false
}

// stripPrefix removes the leading "<prefix> " token from a filename. A
// name that starts with the prefix but lacks the separating space keeps
// its name unchanged.
func stripPrefix(name, prefix string) string {
	if rest, ok := strings.CutPrefix(name, prefix+" "); ok && rest != "" {
		return rest
	}
	return name
}

// relocate moves one file into its destination directory and, when
// enabled, digests it at the new location and records the ledger entry.
// A file that moved but failed to digest stays moved and unrecorded.
func (d *Dispatcher) relocate(watchDir, name, prefix string, snap settings.Settings) Result {
	res := Result{Name: name, Prefix: prefix}

	stripped := stripPrefix(name, prefix)
	src := filepath.Join(watchDir, name)
	res.Dest = filepath.Join(d.opts.Root, prefix, stripped)

	if d.opts.DryRun {
		log.Infof("[dry run] Would move %s -> %s", prettyPath(src), prettyPath(res.Dest))
		return res
	}

	// Refuse to clobber: an earlier drop with the same stripped name wins.
	if _, err := os.Lstat(res.Dest); err == nil {
		res.Err = fmt.Errorf("move %s: destination %s already exists", name, res.Dest)
		return res
	}

	if err := os.Rename(src, res.Dest); err != nil {
		res.Err = fmt.Errorf("move %s: %w", name, err)
		return res
	}

	if !snap.HashEnabled {
		return res
	}

	sum, err := digest.File(res.Dest, digest.ParseAlgorithm(snap.HashMethod))
	if err != nil {
		res.Err = fmt.Errorf("digest %s: %w", res.Dest, err)
		return res
	}
	res.Digest = sum

	if err := d.opts.Ledger.Record(prefix, stripped, sum); err != nil {
		res.Err = fmt.Errorf("record %s: %w", res.Dest, err)
	}
	return res
}

// report logs and optionally notifies the outcome for one file.
func (d *Dispatcher) report(res Result) {
	if res.Err != nil {
		out := res.Err.Error()
		log.Error(out)
		notify.Send(d.opts.Notifications, "dropsort", out)
		return
	}
	if d.opts.DryRun {
		return
	}
	out := fmt.Sprintf("Moved %s -> %s", res.Name, prettyPath(res.Dest))
	log.Info(out)
	notify.Send(d.opts.Notifications, "dropsort", out)
}

// summarize logs per-cycle counts so a failed file is visible without
// stopping the loop.
func (d *Dispatcher) summarize(results []Result) {
	if len(results) == 0 {
		log.Debug("Cycle complete: nothing to do")
		return
	}
	var moved, failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
		} else {
			moved++
		}
	}
	log.Infof("Cycle complete: %d moved, %d failed", moved, failed)
}

func prettyPath(path string) string {
	return filepath.ToSlash(path)
}
