package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func bookmarkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmark <object-id> <seconds>",
		Short: "Store a playback position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			seconds, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || seconds < 0 {
				return fmt.Errorf("seconds must be a non-negative integer")
			}

			if err := app.client.SetBookmark(ctx, app.resolveObject(args[0]), seconds); err != nil {
				return err
			}
			if !app.quiet {
				return app.printer.Print("ok")
			}
			return nil
		},
	}

	return cmd
}
