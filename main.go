package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"dropsort/internal/config"
	"dropsort/internal/dispatcher"
	"dropsort/internal/excluder"
	"dropsort/internal/ledger"
	"dropsort/internal/registry"
	"dropsort/internal/settings"

	"github.com/sevlyar/go-daemon"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

// Set at build time: go build -ldflags "-X main.version=1.2.3"
var version = "dev"

func init() {
	// Configure logger to include timestamp and caller (file:line)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
		},
	})
	log.SetReportCaller(true)
}

func main() {
	app := &cli.Command{
		Name:    "dropsort",
		Usage:   "prefix-sorting drop directory daemon",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("DROPSORT_CONFIG"),
				Value:   config.DefaultConfigFilename,
			},
			&cli.StringFlag{
				Name:    "root",
				Usage:   "directory the watch dir and destinations live under",
				Sources: cli.EnvVars("DROPSORT_ROOT"),
			},
			&cli.StringFlag{
				Name:    "settings",
				Usage:   "path to the hot settings resource",
				Sources: cli.EnvVars("DROPSORT_SETTINGS"),
			},
			&cli.StringFlag{
				Name:    "prefixes",
				Usage:   "path to the prefix list resource",
				Sources: cli.EnvVars("DROPSORT_PREFIXES"),
			},
			&cli.StringFlag{
				Name:    "ledger",
				Usage:   "path to the digest ledger resource",
				Sources: cli.EnvVars("DROPSORT_LEDGER"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "logging level: debug, info, warn, error",
				Sources: cli.EnvVars("DROPSORT_LOG_LEVEL"),
			},
			&cli.DurationFlag{
				Name:    "interval",
				Usage:   "pause between polling cycles",
				Sources: cli.EnvVars("DROPSORT_INTERVAL"),
			},
			&cli.DurationFlag{
				Name:    "startup-delay",
				Usage:   "one-time pause before the first cycle",
				Sources: cli.EnvVars("DROPSORT_STARTUP_DELAY"),
			},
			&cli.BoolFlag{
				Name:    "daemonize",
				Usage:   "run as daemon",
				Sources: cli.EnvVars("DROPSORT_DAEMONIZE"),
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Usage:   "dry run mode",
				Sources: cli.EnvVars("DROPSORT_DRY_RUN"),
			},
			&cli.StringSliceFlag{
				Name:    "exclude",
				Usage:   "glob patterns to exclude (repeat or comma-separated)",
				Sources: cli.EnvVars("DROPSORT_EXCLUDE"),
			},
			&cli.BoolFlag{
				Name:    "notifications",
				Usage:   "send desktop notifications",
				Sources: cli.EnvVars("DROPSORT_NOTIFICATIONS"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var cfg *config.Config
			configPath := cmd.String("config")

			// Only load config if the file exists
			if _, err := os.Stat(configPath); err == nil {
				cfg, err = config.Load(configPath)
				if err != nil {
					log.Fatalf("Failed to load config: %v", err)
				}
			} else {
				// Use defaults if no config file
				cfg = config.Default()
			}

			// Override config with flags if set
			if cmd.IsSet("root") {
				cfg.Root = cmd.String("root")
			}
			if cmd.IsSet("settings") {
				cfg.SettingsPath = cmd.String("settings")
			}
			if cmd.IsSet("prefixes") {
				cfg.PrefixesPath = cmd.String("prefixes")
			}
			if cmd.IsSet("ledger") {
				cfg.LedgerPath = cmd.String("ledger")
			}
			if cmd.IsSet("log-level") {
				cfg.LogLevel = cmd.String("log-level")
			}
			if cmd.IsSet("interval") {
				cfg.Interval = config.Duration(cmd.Duration("interval"))
			}
			if cmd.IsSet("startup-delay") {
				cfg.StartupDelay = config.Duration(cmd.Duration("startup-delay"))
			}
			if cmd.IsSet("daemonize") {
				cfg.Daemonize = cmd.Bool("daemonize")
			}
			if cmd.IsSet("dry-run") {
				cfg.DryRun = cmd.Bool("dry-run")
			}
			if cmd.IsSet("exclude") {
				exclude := cmd.StringSlice("exclude")
				var merged []string
				for _, e := range exclude {
					merged = append(merged, strings.Split(e, ",")...)
				}
				cfg.Exclude = merged
			}
			if cmd.IsSet("notifications") {
				cfg.Notifications = cmd.Bool("notifications")
			}

			// Set log level from config
			switch cfg.LogLevel {
			case "debug":
				log.SetLevel(log.DebugLevel)
			case "info":
				log.SetLevel(log.InfoLevel)
			case "warn":
				log.SetLevel(log.WarnLevel)
			case "error":
				log.SetLevel(log.ErrorLevel)
			default:
				log.SetLevel(log.InfoLevel)
			}

			// Only daemonize if config says so
			if cfg.Daemonize {
				daemonCtx := &daemon.Context{
					PidFileName: "dropsort.pid",
					PidFilePerm: 0644,
					LogFileName: "dropsort.log",
					LogFilePerm: 0640,
					WorkDir:     "./",
					Umask:       027,
					Args:        []string{"[dropsort-daemon]"},
				}

				d, err := daemonCtx.Reborn()
				if err != nil {
					log.Fatalf("Unable to run: %s", err)
				}
				if d != nil {
					return nil // Parent process exits
				}
				defer daemonCtx.Release()
				log.Info("Daemon started")
			} else {
				log.Info("Running in foreground (not daemonized)")
			}

			root := config.ExpandTilde(cfg.Root)

			store := settings.NewStore(config.Resolve(root, cfg.SettingsPath))
			snap, err := store.Load()
			if err != nil {
				log.Fatalf("Failed to load settings: %v", err)
			}

			prefixes, err := registry.New(config.Resolve(root, cfg.PrefixesPath)).Load()
			if err != nil {
				log.Fatalf("Failed to load prefix list: %v", err)
			}
			if err := registry.EnsureDirectories(root, prefixes); err != nil {
				log.Fatalf("Failed to create destination directories: %v", err)
			}

			// Ensure the directory we're monitoring exists
			watchDir := snap.WatchDir
			if !filepath.IsAbs(watchDir) {
				watchDir = filepath.Join(root, watchDir)
			}
			if err := os.MkdirAll(watchDir, 0755); err != nil {
				log.Fatalf("Failed to create watch directory: %v", err)
			}

			ex, err := excluder.New(cfg.Exclude)
			if err != nil {
				log.Fatalf("Failed to compile exclude patterns: %v", err)
			}

			// Signal handling for graceful shutdown; an in-flight cycle
			// completes before the loop exits.
			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				sig := <-signals
				log.Infof("Received signal: %s, shutting down...", sig)
				cancel()
			}()

			d := dispatcher.New(dispatcher.Options{
				Store:         store,
				Prefixes:      prefixes,
				Ledger:        ledger.New(config.Resolve(root, cfg.LedgerPath)),
				Excluder:      ex,
				Root:          root,
				Interval:      time.Duration(cfg.Interval),
				StartupDelay:  time.Duration(cfg.StartupDelay),
				DryRun:        cfg.DryRun,
				Notifications: cfg.Notifications,
			})

			log.Infof("Watching %s every %s", watchDir, cfg.Interval)
			err = d.Run(runCtx)
			if errors.Is(err, context.Canceled) {
				err = nil
			}

			if cfg.Daemonize {
				if rmErr := os.Remove("dropsort.pid"); rmErr != nil && !os.IsNotExist(rmErr) {
					log.Warnf("Error removing PID file: %v", rmErr)
				}
			}

			log.Info("Cleanup complete. Exiting.")
			return err
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
