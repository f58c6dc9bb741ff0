package main

import (
	"context"

	"github.com/spf13/cobra"
)

func searchCommand() *cobra.Command {
	var (
		container string
		start     int64
		count     int64
	)

	cmd := &cobra.Command{
		Use:   "search <criteria>",
		Short: "Search a container subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			result, err := app.client.Search(ctx, app.resolveObject(container), args[0], start, count)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}

	cmd.Flags().StringVar(&container, "container", "0", "container to search under")
	cmd.Flags().Int64Var(&start, "start", 0, "starting index")
	cmd.Flags().Int64Var(&count, "count", 0, "requested count (0 = all)")

	return cmd
}
