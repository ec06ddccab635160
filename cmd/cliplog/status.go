package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliplog/internal/control"
	"go.klb.dev/cliplog/internal/message"
)

func newStatusCmd() *cobra.Command {
	cmd := newClientCmd(&cobra.Command{
		Use:   "status",
		Short: "Show the state of the running daemon",
		Args:  cobra.NoArgs,
	}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, _ []string) error {
		return runStatus(ctx, cmd, v)
	})
	cmd.Flags().Bool("json", false, "output raw JSON")
	return cmd
}

func runStatus(ctx context.Context, cmd *cobra.Command, v *viper.Viper) error {
	w := cmd.OutOrStdout()
	resp, err := request(ctx, v, &message.Message{Type: message.TypeStatus})
	if errors.Is(err, control.ErrNoDaemon) {
		p := resolvePaths(v)
		fmt.Fprintf(w, "cliplog daemon is not running\nHistory: %s\n", p.history)
		return nil
	}
	if err != nil {
		return err
	}

	if v.GetBool("json") {
		enc, _ := json.MarshalIndent(resp.Status, "", "  ")
		fmt.Fprintln(w, string(enc))
		return nil
	}
	printStatus(w, resp.Status)
	return nil
}

func printStatus(out io.Writer, st *message.Status) {
	w := tabwriter.NewWriter(out, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "PID:\t%d\n", st.PID)
	fmt.Fprintf(w, "Backend:\t%s\n", st.Backend)
	fmt.Fprintf(w, "History:\t%s\n", st.HistoryPath)
	fmt.Fprintf(w, "Started:\t%s (%s ago)\n", st.StartedAt.Local().Format(time.RFC3339), fmtAge(st.StartedAt))
	fmt.Fprintf(w, "Entries:\t%d\n", st.Entries)
	fmt.Fprintf(w, "Favorites:\t%d\n", st.Favorites)
	fmt.Fprintf(w, "Pending:\t%d\n", st.Pending)
	fmt.Fprintf(w, "Watchers:\t%d\n", st.Watchers)
	if st.Dirty {
		fmt.Fprintf(w, "Unsaved:\tyes (%s)\n", st.SaveError)
	}
	_ = w.Flush()
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm", int(age.Minutes()))
	}
	return age.String()
}
