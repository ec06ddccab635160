package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliplog/internal/clip"
	"go.klb.dev/cliplog/internal/control"
	"go.klb.dev/cliplog/internal/guard"
	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/hub"
	"go.klb.dev/cliplog/internal/ipc"
	"go.klb.dev/cliplog/internal/monitor"
	"go.klb.dev/cliplog/internal/persist"
	"go.klb.dev/cliplog/internal/poller"
	"go.klb.dev/cliplog/internal/queue"
)

func newDaemonCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Watch the clipboard and record its history",
		Long: `Samples the system clipboard, records every new non-blank text in the
history file and serves the other cliplog commands over the IPC socket.
Only one daemon can run per history; a second one exits with an error.

Config file search order:
  /etc/cliplog/cliplog.toml
  $HOME/.config/cliplog/cliplog.toml
  path supplied via --config

Precedence (lowest → highest): defaults → config file → CLIPLOG_* env vars → flags`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runDaemon(v) },
	}

	f := cmd.Flags()
	f.Duration("poll-interval", poller.DefaultInterval, "how often the clipboard is sampled")
	f.Duration("drain-interval", monitor.DefaultDrainInterval, "how often new clipboard values are moved into the history")
	addStorageFlags(cmd)
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(v *viper.Viper) error {
	setupLogging(v)
	p := resolvePaths(v)

	g, err := guard.Acquire(p.lock)
	if err != nil {
		return err
	}
	defer func() {
		if err := g.Release(); err != nil {
			slog.Warn("release lock failed", "path", g.Path(), "err", err)
		}
	}()

	slog.Info("cliplog daemon starting",
		"version", Version,
		"history", p.history,
		"lock", g.Path(),
	)

	// IPC socket for list/search/recopy/... CLI commands. A socket another
	// daemon still answers on means both would poll one clipboard.
	ln, err := ipc.Listen(p.socket)
	if errors.Is(err, ipc.ErrInUse) {
		return err
	}
	if err != nil {
		slog.Warn("IPC socket unavailable, CLI commands will use the history file", "err", err)
	}

	backend := clip.New()
	defer backend.Close()
	slog.Info("clipboard backend", "name", backend.Name())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	q := queue.New()
	h := hub.New()
	pl := poller.New(backend, q, v.GetDuration("poll-interval"))
	mon := monitor.New(monitor.Config{
		Store:         history.Open(persist.NewFile(p.history)),
		Queue:         q,
		Hub:           h,
		Clipboard:     backend,
		Poller:        pl,
		DrainInterval: v.GetDuration("drain-interval"),
	})

	var wg sync.WaitGroup

	if ln != nil {
		slog.Info("IPC socket listening", "path", p.socket)
		srv := control.NewServer(control.NewHandler(mon, p.history), h)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Serve(ctx, ln); err != nil {
				slog.Error("IPC server stopped", "err", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		pl.Run(ctx)
	}()

	err = mon.Run(ctx)
	wg.Wait()
	slog.Info("cliplog daemon stopped")
	return err
}
