package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/hub"
	"go.klb.dev/cliplog/internal/message"
)

const (
	shortRefLen   = 8
	previewLen    = 60
	listTimestamp = "2006-01-02 15:04"
)

func newListCmd() *cobra.Command {
	cmd := newClientCmd(&cobra.Command{
		Use:   "list",
		Short: "List the clipboard history, newest first",
		Args:  cobra.NoArgs,
	}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, _ []string) error {
		return runList(ctx, cmd, v, &message.Message{
			Type:      message.TypeList,
			Favorites: v.GetBool("favorites"),
		})
	})
	addListFlags(cmd, true)
	return cmd
}

func newSearchCmd() *cobra.Command {
	cmd := newClientCmd(&cobra.Command{
		Use:   "search TERM",
		Short: "List entries whose content contains TERM (case-insensitive)",
		Args:  cobra.ExactArgs(1),
	}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, args []string) error {
		return runList(ctx, cmd, v, &message.Message{
			Type:      message.TypeSearch,
			Term:      args[0],
			Favorites: v.GetBool("favorites"),
		})
	})
	addListFlags(cmd, true)
	return cmd
}

func newFavoritesCmd() *cobra.Command {
	cmd := newClientCmd(&cobra.Command{
		Use:   "favorites",
		Short: "List favorite entries",
		Args:  cobra.NoArgs,
	}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, _ []string) error {
		return runList(ctx, cmd, v, &message.Message{Type: message.TypeList, Favorites: true})
	})
	addListFlags(cmd, false)
	return cmd
}

func newShowCmd() *cobra.Command {
	return newClientCmd(&cobra.Command{
		Use:   "show REF",
		Short: "Print the full content of an entry",
		Args:  cobra.ExactArgs(1),
	}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, args []string) error {
		es, err := requestEntries(ctx, v, &message.Message{Type: message.TypeGet, Refs: args})
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), es[0].Content)
		return err
	})
}

func addListFlags(cmd *cobra.Command, favorites bool) {
	if favorites {
		cmd.Flags().Bool("favorites", false, "only favorites")
	}
	cmd.Flags().Bool("json", false, "output raw JSON")
}

func runList(ctx context.Context, cmd *cobra.Command, v *viper.Viper, req *message.Message) error {
	es, err := requestEntries(ctx, v, req)
	if err != nil {
		return err
	}
	if v.GetBool("json") {
		return printJSON(cmd.OutOrStdout(), es)
	}
	if len(es) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No entries.")
		return nil
	}
	return printEntries(cmd.OutOrStdout(), es)
}

type jsonEntry struct {
	Ref          string    `json:"ref"`
	Content      string    `json:"content"`
	FirstSeenAt  time.Time `json:"first_seen_at"`
	LastCopiedAt time.Time `json:"last_copied_at"`
	CopyCount    int       `json:"copy_count"`
	Favorite     bool      `json:"favorite"`
	Name         string    `json:"name,omitempty"`
	Note         string    `json:"note,omitempty"`
}

func printJSON(w io.Writer, es []history.Entry) error {
	out := make([]jsonEntry, len(es))
	for i, e := range es {
		out[i] = jsonEntry{
			Ref:          e.Ref(),
			Content:      e.Content,
			FirstSeenAt:  e.FirstSeenAt,
			LastCopiedAt: e.LastCopiedAt,
			CopyCount:    e.CopyCount,
			Favorite:     e.Favorite,
			Name:         e.Name,
			Note:         e.Note,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printEntries(w io.Writer, es []history.Entry) error {
	tw := tabwriter.NewWriter(w, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "REF\tFIRST SEEN\tLAST COPIED\tCOPIES\tFAV\tNAME\tNOTE\tCONTENT\n")
	for _, e := range es {
		fav := ""
		if e.Favorite {
			fav = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			e.Ref()[:shortRefLen],
			e.FirstSeenAt.Local().Format(listTimestamp),
			e.LastCopiedAt.Local().Format(listTimestamp),
			e.CopyCount,
			fav,
			cell(e.Name),
			cell(e.Note),
			cell(hub.Preview(e.Content, previewLen)),
		)
	}
	return tw.Flush()
}

// cell keeps a value on one tabwriter line.
func cell(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}
