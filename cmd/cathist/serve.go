package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cathist/cathist/internal/api"
	"github.com/cathist/cathist/internal/clipboard"
	"github.com/cathist/cathist/internal/config"
	"github.com/cathist/cathist/internal/events"
	"github.com/cathist/cathist/internal/history"
	"github.com/cathist/cathist/internal/ipc"
)

func newServeCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the clipboard history daemon",
		Long: `Starts the cathist daemon: watches the system clipboard, persists every
new text or file-list copy into the local history database, and serves the
query API on a local socket for the other sub-commands.

Config file search order:
  /etc/cathist/cathist.toml
  $HOME/.config/cathist/cathist.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → CATHIST_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runServe(v) },
	}

	f := cmd.Flags()
	f.String("data-dir", defaultDataDir(), "directory for the history database and settings")
	f.Duration("poll-interval", clipboard.DefaultPollInterval, "clipboard poll interval")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runServe(v *viper.Viper) error {
	setupLogging(v)

	dataDir := v.GetString("data-dir")
	pollInterval := v.GetDuration("poll-interval")

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	settings, err := config.Load(filepath.Join(dataDir, "settings.json"))
	if err != nil {
		return err
	}

	store, err := history.Open(filepath.Join(dataDir, "history.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	device := clipboard.New()
	defer device.Close()

	slog.Info("cathist daemon starting",
		"version", Version,
		"data_dir", dataDir,
		"clipboard", device.Name(),
		"poll_interval", pollInterval,
		"max_items", settings.Current().MaxHistoryItems,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	broker := events.New()

	snapshots := make(chan clipboard.Snapshot, 16)
	monitor := clipboard.NewMonitor(device, pollInterval, snapshots)
	go monitor.Run()
	defer monitor.Close()

	go persistLoop(ctx, store, settings, broker, snapshots)

	ln, err := ipc.Listen()
	if err != nil {
		return fmt.Errorf("ipc listen: %w", err)
	}
	slog.Info("listening", "socket", ipc.SocketPath())

	server := api.NewServer(store, broker, settings, device, Version)
	if err := server.Serve(ctx, ln); err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	slog.Info("cathist daemon stopped")
	return nil
}

// persistLoop stores each accepted snapshot, re-applies the capacity bound
// and announces the new item to event subscribers.
func persistLoop(ctx context.Context, store *history.Store, settings *config.Manager, broker *events.Broker, snapshots <-chan clipboard.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-snapshots:
			persist(ctx, store, settings, broker, snap)
		}
	}
}

func persist(ctx context.Context, store *history.Store, settings *config.Manager, broker *events.Broker, snap clipboard.Snapshot) {
	start := time.Now()

	id, err := store.AddItem(ctx, string(snap.Type), snap.Content, snap.Preview)
	if err != nil {
		slog.Error("persist snapshot", "error", err)
		return
	}
	if err := store.MaintainLimit(ctx, settings.Current().MaxHistoryItems); err != nil {
		slog.Error("maintain history limit", "error", err)
	}

	item, err := store.GetItem(ctx, id)
	if err != nil {
		// The item may already have been evicted by a tiny limit.
		slog.Debug("new item gone before publish", "item", id)
		return
	}

	broker.Publish(events.Update{
		ID:          item.ID,
		ContentType: item.ContentType,
		Preview:     item.Preview,
		CreatedAt:   item.CreatedAt,
	})
	slog.Debug("snapshot persisted",
		"item", id,
		"type", snap.Type,
		"took", time.Since(start).Round(time.Microsecond),
	)
}
