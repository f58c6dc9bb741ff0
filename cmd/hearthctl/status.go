package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hearthcast/hearthcast/internal/adapters/output"
)

func statusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server update counter",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			id, err := app.client.SystemUpdateID(ctx)
			if err != nil {
				return err
			}
			return app.printer.Print(output.StatusOutput{
				Endpoint: app.endpoint,
				UpdateID: id,
			})
		},
	}

	return cmd
}
