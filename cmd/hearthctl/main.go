package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearthcast/hearthcast/internal/adapters/cdclient"
	"github.com/hearthcast/hearthcast/internal/adapters/config"
	"github.com/hearthcast/hearthcast/internal/adapters/output"
)

type app struct {
	client   *cdclient.Client
	printer  output.Printer
	endpoint string
	aliases  map[string]string
	quiet    bool
	json     bool
	timeout  time.Duration
}

func main() {
	root := &cobra.Command{
		Use:   "hearthctl",
		Short: "Hearthcast CLI",
	}

	var (
		endpoint string
		timeout  time.Duration
		quiet    bool
		jsonOut  bool
	)

	root.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "control endpoint URL")
	root.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 5*time.Second, "command timeout")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	root.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output json")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if endpoint == "" {
			endpoint = cfg.Endpoint
		}
		if endpoint == "" {
			return errors.New("endpoint is required (set --endpoint or config)")
		}
		if !cmd.Flags().Changed("timeout") && cfg.TimeoutMS > 0 {
			timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
		}

		client, err := cdclient.New(cdclient.Options{
			Endpoint: endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			return err
		}

		var printer output.Printer
		if jsonOut {
			printer = output.JSONPrinter{}
		} else {
			printer = output.HumanPrinter{}
		}

		cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, &app{
			client:   client,
			printer:  printer,
			endpoint: endpoint,
			aliases:  cfg.Aliases,
			quiet:    quiet,
			json:     jsonOut,
			timeout:  timeout,
		}))
		return nil
	}

	root.AddCommand(browseCommand())
	root.AddCommand(searchCommand())
	root.AddCommand(bookmarkCommand())
	root.AddCommand(statusCommand())

	if err := root.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

type appKey struct{}

func fromContext(cmd *cobra.Command) *app {
	val := cmd.Context().Value(appKey{})
	if val == nil {
		return nil
	}
	return val.(*app)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// resolveObject maps a configured alias to its object id, or returns the
// argument unchanged.
func (a *app) resolveObject(arg string) string {
	if id, ok := a.aliases[arg]; ok {
		return id
	}
	return arg
}
