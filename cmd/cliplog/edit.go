package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/cliplog/internal/message"
)

func newRecopyCmd() *cobra.Command {
	return newClientCmd(&cobra.Command{
		Use:   "recopy REF",
		Short: "Put an entry back on the clipboard and count the copy",
		Args:  cobra.ExactArgs(1),
	}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, args []string) error {
		e, err := requestEntry(ctx, v, &message.Message{Type: message.TypeRecopy, Ref: args[0]})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "copied %s (%d copies)\n", e.Ref()[:shortRefLen], e.CopyCount)
		return nil
	})
}

func newFavCmd(favorite bool) *cobra.Command {
	use, short, verb := "fav REF", "Mark an entry as a favorite", "favorited"
	if !favorite {
		use, short, verb = "unfav REF", "Remove an entry from the favorites", "unfavorited"
	}
	return newClientCmd(&cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
	}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, args []string) error {
		e, err := requestEntry(ctx, v, &message.Message{Type: message.TypeFavorite, Ref: args[0], Favorite: favorite})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, e.Ref()[:shortRefLen])
		return nil
	})
}

func newNameCmd() *cobra.Command {
	return newClientCmd(&cobra.Command{
		Use:   "name REF VALUE",
		Short: `Set the name of an entry ("" clears it)`,
		Args:  cobra.ExactArgs(2),
	}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, args []string) error {
		return runSetText(ctx, cmd, v, message.TypeName, args)
	})
}

func newNoteCmd() *cobra.Command {
	return newClientCmd(&cobra.Command{
		Use:   "note REF VALUE",
		Short: `Set the note of an entry ("" clears it)`,
		Args:  cobra.ExactArgs(2),
	}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, args []string) error {
		return runSetText(ctx, cmd, v, message.TypeNote, args)
	})
}

func runSetText(ctx context.Context, cmd *cobra.Command, v *viper.Viper, typ message.Type, args []string) error {
	e, err := requestEntry(ctx, v, &message.Message{Type: typ, Ref: args[0], Value: args[1]})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", e.Ref()[:shortRefLen])
	return nil
}

func newDeleteCmd() *cobra.Command {
	return newClientCmd(&cobra.Command{
		Use:   "delete REF",
		Short: "Remove an entry from the history",
		Args:  cobra.ExactArgs(1),
	}, func(ctx context.Context, cmd *cobra.Command, v *viper.Viper, args []string) error {
		resp, err := request(ctx, v, &message.Message{Type: message.TypeDelete, Ref: args[0]})
		if err != nil {
			return err
		}
		if !resp.Removed {
			fmt.Fprintf(cmd.OutOrStdout(), "no entry matches %s\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	})
}
