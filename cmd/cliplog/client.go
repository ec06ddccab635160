package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliplog/internal/clip"
	"go.klb.dev/cliplog/internal/control"
	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/ipc"
	"go.klb.dev/cliplog/internal/message"
)

// newClientCmd builds a one-shot command that talks to the daemon or, when
// none is running, to the history file.
func newClientCmd(
	cmd *cobra.Command,
	run func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, args []string) error,
) *cobra.Command {
	v := viper.New()
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := bindViper(cmd, v); err != nil {
			return err
		}
		setupClientLogging(v)
		return nil
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), cmd, v, args)
	}
	addClientFlags(cmd)
	return cmd
}

// request sends req to the daemon if one answers on the socket, and
// otherwise runs it against the history file in this process. A daemon
// serving another history file is refused rather than used.
func request(ctx context.Context, v *viper.Viper, req *message.Message) (*message.Message, error) {
	p := resolvePaths(v)
	if ipc.IsRunning(p.socket) {
		return control.NewClient(p.socket).ForHistory(p.history).Do(req)
	}
	return control.Local{
		HistoryPath: p.history,
		LockPath:    p.lock,
		Clipboard:   clip.New,
	}.Do(ctx, req)
}

// requestEntry runs a request answered with a single ENTRY.
func requestEntry(ctx context.Context, v *viper.Viper, req *message.Message) (history.Entry, error) {
	resp, err := request(ctx, v, req)
	if err != nil {
		return history.Entry{}, err
	}
	if resp.Entry == nil {
		return history.Entry{}, fmt.Errorf("%s: empty response", req.Type)
	}
	return control.FromMessage(*resp.Entry)
}

// requestEntries runs a request answered with ENTRIES.
func requestEntries(ctx context.Context, v *viper.Viper, req *message.Message) ([]history.Entry, error) {
	resp, err := request(ctx, v, req)
	if err != nil {
		return nil, err
	}
	return control.Entries(resp)
}
