package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliplog/internal/export"
	"go.klb.dev/cliplog/internal/message"
)

func newExportCmd() *cobra.Command {
	cmd := newClientCmd(&cobra.Command{
		Use:   "export --out FILE REF...",
		Short: "Write entries to a spreadsheet (.xlsx) or CSV file",
		Long: `Writes the given entries, in the order given, with the columns
Timestamp (last copied), Content, Name and Note.

The format follows the extension of --out: .xlsx or .csv. Use "-" to write
CSV to stdout.`,
		Args: cobra.MinimumNArgs(1),
	}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, args []string) error {
		out := v.GetString("out")
		if out == "" {
			return fmt.Errorf("--out is required")
		}
		es, err := requestEntries(ctx, v, &message.Message{Type: message.TypeGet, Refs: args})
		if err != nil {
			return err
		}
		if err := export.ToFile(out, es, cmd.OutOrStdout()); err != nil {
			return err
		}
		if out != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d entries to %s\n", len(es), out)
		}
		return nil
	})
	cmd.Flags().StringP("out", "o", "", "output file (.xlsx, .csv, or - for stdout)")
	return cmd
}
