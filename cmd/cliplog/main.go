// cliplog: clipboard history monitor.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cliplog",
		Short: "Clipboard history monitor",
		Long: `cliplog records every distinct text that passes through the system
clipboard and keeps it in a searchable, persistent history.

Run "cliplog daemon" once per login session. The other commands talk to the
daemon over a local socket; when no daemon is running they read (and, under
the single-instance lock, edit) the history file directly.

Entries are addressed by REF, a hex identifier shown by "cliplog list". Any
unique prefix of at least 4 characters works.

Config file search order (first found wins):
  /etc/cliplog/cliplog.toml
  $HOME/.config/cliplog/cliplog.toml
  path supplied via --config

All flags can be set via CLIPLOG_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newDaemonCmd(),
		newListCmd(),
		newSearchCmd(),
		newFavoritesCmd(),
		newShowCmd(),
		newRecopyCmd(),
		newFavCmd(true),
		newFavCmd(false),
		newNameCmd(),
		newNoteCmd(),
		newDeleteCmd(),
		newExportCmd(),
		newWatchCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cliplog %s\n", Version)
		},
	}
}
