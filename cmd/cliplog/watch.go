package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliplog/internal/control"
	"go.klb.dev/cliplog/internal/hub"
	"go.klb.dev/cliplog/internal/ipc"
	"go.klb.dev/cliplog/internal/message"
)

func newWatchCmd() *cobra.Command {
	return newClientCmd(&cobra.Command{
		Use:   "watch",
		Short: "Stream history changes from the running daemon",
		Args:  cobra.NoArgs,
	}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, _ []string) error {
		p := resolvePaths(v)
		if !ipc.IsRunning(p.socket) {
			return control.ErrNoDaemon
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		w := cmd.OutOrStdout()
		return control.NewClient(p.socket).ForHistory(p.history).Watch(ctx, func(m *message.Message) error {
			if m.Entry == nil {
				return nil
			}
			e, err := control.FromMessage(*m.Entry)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "%s  %-7s  %s  %s\n",
				time.Now().Format("15:04:05"),
				m.Event,
				e.Ref()[:shortRefLen],
				hub.Preview(e.Content, previewLen),
			)
			return err
		})
	})
}
