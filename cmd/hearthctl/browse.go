package main

import (
	"context"

	"github.com/spf13/cobra"
)

func browseCommand() *cobra.Command {
	var (
		metadata bool
		start    int64
		count    int64
	)

	cmd := &cobra.Command{
		Use:   "browse [object-id]",
		Short: "Browse a container",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			objectID := "0"
			if len(args) == 1 {
				objectID = app.resolveObject(args[0])
			}
			flag := "BrowseDirectChildren"
			if metadata {
				flag = "BrowseMetadata"
			}

			result, err := app.client.Browse(ctx, objectID, flag, start, count)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}

	cmd.Flags().BoolVar(&metadata, "metadata", false, "fetch object metadata instead of children")
	cmd.Flags().Int64Var(&start, "start", 0, "starting index")
	cmd.Flags().Int64Var(&count, "count", 0, "requested count (0 = all)")

	return cmd
}
